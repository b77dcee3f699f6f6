// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package definitions holds the glossary behind defined-term tooltips.
package definitions

import (
	_ "embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Fallback is shown when a term has no entry and no override
const Fallback = "Definition not available"

//go:embed definitions.yaml
var rawTable []byte

// table is loaded once and never written afterwards
var table = mustLoad(rawTable)

func mustLoad(data []byte) map[string]string {
	t, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse decodes a term -> text mapping from YAML
func Parse(data []byte) (map[string]string, error) {
	t := map[string]string{}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse definitions: %w", err)
	}
	return t, nil
}

// Lookup returns the glossary text for term
func Lookup(term string) (string, bool) {
	text, ok := table[term]
	return text, ok
}

// Define picks the override, then the glossary entry, then Fallback
func Define(term, override string) string {
	if override != "" {
		return override
	}
	if text, ok := Lookup(term); ok && text != "" {
		return text
	}
	return Fallback
}

// Terms returns all glossary keys in sorted order
func Terms() []string {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
