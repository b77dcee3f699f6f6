// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the scorecard server.

Policy analysts fill in scorecards for AI policy bills and government
accountability measures, section by section, then submit them for review.
Reviewers approve or return submitted scorecards.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=scorecards.db SESSION_SECRET=... go run .

Or with flags:

	go run . serve -p 3318 -t postgres -d "postgres://..."

Create the schema without serving:

	go run . migrate -d scorecards.db

# Configuration

Settings are read from flags, then the environment, then a .env file.

Required settings:

  - DATABASE_URL (-d): SQLite path or PostgreSQL connection string
  - SESSION_SECRET (--session-secret): Secret for session token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - SESSION_TTL, RESET_TTL: Session and reset link lifetimes
  - SITE_URL: Public origin used in password reset links
  - USE_EMULATORS: Echo reset links in API responses for local development

# Architecture

  - handlers: HTTP request handlers (accounts, settings, scorecards, pages)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, sessions, JSON helpers
  - views: HTML templates for the scorecard pages
  - models: Request/response types and the section catalogue
  - format, siteurl, definitions, submission, notes: display and workflow helpers
  - auth: Password hashing and token generation
  - db: Connections and schema creation
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
