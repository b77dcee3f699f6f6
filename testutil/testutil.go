// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Timfon/cntr-webapp-sub001/auth"
	"github.com/Timfon/cntr-webapp-sub001/cliparse"
	"github.com/Timfon/cntr-webapp-sub001/db"
	"github.com/Timfon/cntr-webapp-sub001/models"
)

// TestDBURL is an in-memory SQLite database; every SetupTestDB call gets a fresh one
const TestDBURL = "file::memory:"

// TestPassword is the password of every user made by CreateTestUser
const TestPassword = "correct-horse-battery"

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open("sqlite", TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   TestDBURL,
		DatabaseType:  "sqlite",
		SessionSecret: "test-session-secret",
		SessionTTL:    time.Hour,
		ResetTTL:      30 * time.Minute,
	}
}

// CreateTestUser inserts a user with TestPassword and returns its ID
func CreateTestUser(t *testing.T, conn *sql.DB, email, role string) string {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	userID := auth.NewID()
	now := time.Now().UTC()
	_, err = conn.Exec(`
		INSERT INTO app_user (id, email, password_hash, display_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, userID, email, hash, "Test User", role, now, now)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID
}

// CreateTestSession stores a session for userID and returns the raw token
func CreateTestSession(t *testing.T, conn *sql.DB, cfg cliparse.Config, userID string) string {
	t.Helper()

	token, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	now := time.Now().UTC()
	_, err = conn.Exec(`
		INSERT INTO session (token_hash, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, auth.HashToken(token, cfg.SessionSecret), userID, now, now.Add(cfg.SessionTTL))
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}

	return token
}

// CreateTestScorecard inserts a scorecard owned by ownerID with complete
// metadata and returns its ID. status should be one of the models.Status* values.
func CreateTestScorecard(t *testing.T, conn *sql.DB, ownerID, kind, status string) string {
	t.Helper()

	id := auth.NewID()
	now := time.Now().UTC()

	var submittedAt *time.Time
	if status != models.StatusDraft {
		submittedAt = &now
	}

	_, err := conn.Exec(`
		INSERT INTO scorecard (id, owner_id, kind, title, state, bill_number,
			period_start, period_end, status, created_at, updated_at, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, id, ownerID, kind, "Test Scorecard", "CA", "SB 1047", "2024-01-01", "2024-12-31",
		status, now, now, submittedAt)
	if err != nil {
		t.Fatalf("Failed to create test scorecard: %v", err)
	}

	return id
}

// FillTestSections writes notes and a score for every required section,
// replacing whatever those sections held
func FillTestSections(t *testing.T, conn *sql.DB, scorecardID, kind string) {
	t.Helper()

	now := time.Now().UTC()
	for _, s := range models.SectionsFor(kind) {
		if !s.Required {
			continue
		}
		_, err := conn.Exec(`
			INSERT INTO section_entry (scorecard_id, section_key, notes, score, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (scorecard_id, section_key) DO UPDATE
			SET notes = EXCLUDED.notes, score = EXCLUDED.score
		`, scorecardID, s.Key, "Notes for "+s.Title, 3, now)
		if err != nil {
			t.Fatalf("Failed to fill section %s: %v", s.Key, err)
		}
	}
}

// BearerHeaders returns request headers carrying a session token
func BearerHeaders(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
