// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package notes models per-section free-text notes.
//
// The mapping is owned by the caller. An Editor only reads it and proposes
// full-text replacements through its OnChange callback.
package notes

// State maps a section key to its note text
type State map[string]string

// Value returns the note for section, or "" when there is none
func (s State) Value(section string) string {
	return s[section]
}

// Editor edits the notes of one section
type Editor struct {
	Notes    State
	Section  string
	OnChange func(section, text string)
}

// Value is the text shown for the current section
func (e Editor) Value() string {
	return e.Notes.Value(e.Section)
}

// Edit proposes text as the complete new note for the current section
func (e Editor) Edit(text string) {
	if e.OnChange == nil {
		return
	}
	e.OnChange(e.Section, text)
}

// SwitchTo returns an editor for another section of the same notes
func (e Editor) SwitchTo(section string) Editor {
	return Editor{Notes: e.Notes, Section: section, OnChange: e.OnChange}
}
