// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Open connects to the configured database and verifies the connection.
// dbType is "postgres" or "sqlite".
func Open(dbType, url string) (*sql.DB, error) {
	driver := "sqlite"
	if dbType == "postgres" {
		driver = "postgres"
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dbType, err)
	}

	if driver == "sqlite" {
		// A single connection keeps in-memory databases and foreign key
		// pragmas consistent across queries
		conn.SetMaxOpenConns(1)
		if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dbType, err)
	}

	return conn, nil
}

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	// Run statements one at a time; not every driver accepts a batch
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return nil
}

// IsUniqueViolation reports whether err is a unique constraint failure
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// Extended codes disabled
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}

	return false
}

// Timestamps are always written by the application, never defaulted by the
// database, so the same DDL works for PostgreSQL and SQLite.
const schema = `
-- Accounts
CREATE TABLE IF NOT EXISTS app_user (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    display_name TEXT NOT NULL,
    role TEXT NOT NULL DEFAULT 'policy_analyst' CHECK (role IN ('policy_analyst', 'reviewer', 'admin')),
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL
);

-- Sessions (token is stored as an HMAC hash)
CREATE TABLE IF NOT EXISTS session (
    token_hash TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_session_user_id ON session(user_id);

-- Password reset links
CREATE TABLE IF NOT EXISTS password_reset (
    token_hash TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    created_at TIMESTAMP NOT NULL,
    expires_at TIMESTAMP NOT NULL,
    used_at TIMESTAMP
);

-- Scorecards
CREATE TABLE IF NOT EXISTS scorecard (
    id TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL REFERENCES app_user(id) ON DELETE CASCADE,
    kind TEXT NOT NULL CHECK (kind IN ('ai_policy', 'government_accountability')),
    title TEXT NOT NULL DEFAULT '',
    state TEXT NOT NULL DEFAULT '',
    bill_number TEXT NOT NULL DEFAULT '',
    period_start TEXT,
    period_end TEXT,
    status TEXT NOT NULL DEFAULT 'draft' CHECK (status IN ('draft', 'submitted', 'approved', 'returned')),
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    submitted_at TIMESTAMP,
    reviewed_at TIMESTAMP,
    review_comment TEXT
);

CREATE INDEX IF NOT EXISTS idx_scorecard_owner_id ON scorecard(owner_id);
CREATE INDEX IF NOT EXISTS idx_scorecard_status ON scorecard(status);

-- Per-section notes and scores
CREATE TABLE IF NOT EXISTS section_entry (
    scorecard_id TEXT NOT NULL REFERENCES scorecard(id) ON DELETE CASCADE,
    section_key TEXT NOT NULL,
    notes TEXT NOT NULL DEFAULT '',
    score INTEGER CHECK (score IS NULL OR (score >= 1 AND score <= 5)),
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (scorecard_id, section_key)
);

-- Attachment metadata
CREATE TABLE IF NOT EXISTS attachment (
    id TEXT PRIMARY KEY,
    scorecard_id TEXT NOT NULL REFERENCES scorecard(id) ON DELETE CASCADE,
    file_name TEXT NOT NULL,
    size_bytes BIGINT NOT NULL CHECK (size_bytes >= 0),
    content_type TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attachment_scorecard_id ON attachment(scorecard_id);

-- Reviews
CREATE TABLE IF NOT EXISTS review (
    id TEXT PRIMARY KEY,
    scorecard_id TEXT NOT NULL REFERENCES scorecard(id) ON DELETE CASCADE,
    reviewer_id TEXT NOT NULL REFERENCES app_user(id),
    decision TEXT NOT NULL CHECK (decision IN ('approve', 'return')),
    comment TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_review_scorecard_id ON review(scorecard_id);
`
