// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the document store and creates its schema.

# Connecting

Open picks the driver from the configured database type:

	conn, err := db.Open("postgres", "postgres://...") // github.com/lib/pq
	conn, err := db.Open("sqlite", "file:dev.db")      // modernc.org/sqlite

SQLite connections are limited to one open connection with foreign keys on.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The DDL avoids database-side defaults for timestamps so it runs unchanged on
both drivers. Queries use $N placeholders, which both drivers accept.

# Tables

  - app_user: accounts, bcrypt hashes, roles
  - session: hashed session tokens with expiry
  - password_reset: hashed single-use reset tokens
  - scorecard: assessment metadata and lifecycle state
  - section_entry: notes and score per (scorecard, section)
  - attachment: file metadata
  - review: reviewer decisions

# Relationships

	app_user 1──* session
	app_user 1──* password_reset
	app_user 1──* scorecard
	scorecard 1──* section_entry
	scorecard 1──* attachment
	scorecard 1──* review

# Errors

IsUniqueViolation recognizes duplicate-key errors from either driver.
*/
package db
