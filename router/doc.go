// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the scorecard API and pages.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(db, cfg)

# Endpoints

Health:

	GET /health

Accounts (public):

	POST /auth/sign-up                - Create account and session
	POST /auth/sign-in                - Start a session
	POST /auth/sign-out               - End the current session
	POST /auth/password-reset         - Request a reset link
	POST /auth/password-reset/confirm - Set a new password with a reset token

Settings (session required):

	GET  /settings          - Current user
	PUT  /settings          - Change display name
	POST /settings/password - Change password

Scorecards (session required):

	POST /scorecards                          - Create draft
	GET  /scorecards                          - List with filters
	GET  /scorecards/{id}                     - Scorecard details
	PUT  /scorecards/{id}                     - Edit metadata (draft/returned)
	GET  /scorecards/{id}/sections            - Sections with notes and scores
	PUT  /scorecards/{id}/notes/{section}     - Replace section notes
	PUT  /scorecards/{id}/scores/{section}    - Set section score
	GET  /scorecards/{id}/readiness           - Submission issues
	POST /scorecards/{id}/submit              - Submit for review
	POST /scorecards/{id}/review              - Approve or return (reviewers)
	POST /scorecards/{id}/attachments         - Record attachment metadata
	GET  /scorecards/{id}/attachments         - List attachments

Glossary (public):

	GET /definitions        - All terms
	GET /definitions/{term} - One term

Pages (session cookie):

	GET  /app/scorecards               - Filterable list
	GET  /app/scorecards/{id}          - Scorecard with notes editor
	POST /app/scorecards/{id}/notes    - Save notes form
	POST /app/scorecards/{id}/submit   - Submit form

All handlers receive the database connection and configuration.
*/
package router
