// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package siteurl resolves the absolute base URL used for links and redirects.
package siteurl

import (
	"net/http"
	"os"
	"strings"
)

const (
	// EnvVar names the configured public base URL
	EnvVar = "SITE_URL"

	// DefaultURL is used outside a request when nothing is configured
	DefaultURL = "http://localhost:3000"
)

// Resolver reads the configured URL on every call; nothing is cached.
type Resolver struct {
	Getenv func(string) string
}

// New returns a Resolver backed by the process environment
func New() Resolver {
	return Resolver{Getenv: os.Getenv}
}

// Resolve returns the site base URL without a trailing slash.
// r is nil when called outside a request (startup, background work).
func (res Resolver) Resolve(r *http.Request) string {
	if res.Getenv != nil {
		if configured := strings.TrimSpace(res.Getenv(EnvVar)); configured != "" {
			return strings.TrimRight(configured, "/")
		}
	}

	if r == nil {
		return DefaultURL
	}
	return Origin(r)
}

// URL joins the resolved base with an absolute path
func (res Resolver) URL(r *http.Request, path string) string {
	return res.Resolve(r) + "/" + strings.TrimLeft(path, "/")
}

// Origin returns scheme://host[:port] as seen by the client
func Origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = firstValue(proto)
	}

	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
		host = firstValue(fwd)
	}
	if host == "" {
		return DefaultURL
	}

	return scheme + "://" + host
}

// firstValue takes the first entry of a comma separated proxy header
func firstValue(v string) string {
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	return strings.TrimSpace(v)
}
