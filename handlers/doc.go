// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the scorecard API.

# Handler Types

Each handler is a struct with database and config dependencies:

  - AccountHandler: Sign-up, sign-in, sign-out, password reset
  - SettingsHandler: Profile and password changes
  - ScorecardHandler: Scorecard lifecycle, sections, attachments, review
  - PageHandler: HTML list and scorecard pages

Handlers are created via constructor functions that accept *sql.DB and Config:

	scorecardHandler := handlers.NewScorecardHandler(db, cfg)

# Sessions

Requests authenticate with "Authorization: Bearer <token>" or the session
cookie. Tokens are stored as HMAC hashes; see CreateSession and SessionUser.

# Scorecard Lifecycle

Scorecards move through: draft → submitted → approved | returned

	POST /scorecards              → CreateScorecard
	PUT  /scorecards/{id}/notes/… → UpdateNotes (draft or returned only)
	POST /scorecards/{id}/submit  → SubmitScorecard (409 with issues when not ready)
	POST /scorecards/{id}/review  → ReviewScorecard (reviewer or admin)

A returned scorecard can be edited and submitted again.

# Store Helpers

store.go holds the queries shared by the JSON and HTML handlers:

	sc, err := LoadScorecard(db, id)
	entries, err := LoadSections(db, sc)
	readiness := Readiness(sc, entries)
*/
package handlers
