// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Timfon/cntr-webapp-sub001/auth"
	"github.com/Timfon/cntr-webapp-sub001/cliparse"
	"github.com/Timfon/cntr-webapp-sub001/format"
	"github.com/Timfon/cntr-webapp-sub001/middleware"
	"github.com/Timfon/cntr-webapp-sub001/models"
)

// CreateSession stores a new session for userID and returns the raw token
func CreateSession(db *sql.DB, cfg cliparse.Config, userID string) (string, time.Time, error) {
	token, err := auth.GenerateToken()
	if err != nil {
		return "", time.Time{}, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(cfg.SessionTTL)
	_, err = db.Exec(`
		INSERT INTO session (token_hash, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, auth.HashToken(token, cfg.SessionSecret), userID, now, expiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to store session: %w", err)
	}

	return token, expiresAt, nil
}

// SessionUser resolves the user behind the request's session token
func SessionUser(db *sql.DB, cfg cliparse.Config, r *http.Request) (models.User, error) {
	token := middleware.SessionToken(r)
	if token == "" {
		return models.User{}, auth.ErrInvalidToken
	}

	var user models.User
	var expiresAt time.Time
	err := db.QueryRow(`
		SELECT u.id, u.email, u.display_name, u.role, u.created_at, s.expires_at
		FROM session s
		JOIN app_user u ON u.id = s.user_id
		WHERE s.token_hash = $1
	`, auth.HashToken(token, cfg.SessionSecret)).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.Role, &user.CreatedAt, &expiresAt,
	)
	if err == sql.ErrNoRows {
		return models.User{}, auth.ErrInvalidToken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to query session: %w", err)
	}

	if !time.Now().Before(expiresAt) {
		return models.User{}, auth.ErrExpiredToken
	}

	user.DisplayRole = format.FormatRole(user.Role)
	return user, nil
}

// requireUser writes a 401 (or 500) and returns false when the request has no valid session
func requireUser(w http.ResponseWriter, r *http.Request, db *sql.DB, cfg cliparse.Config) (models.User, bool) {
	user, err := SessionUser(db, cfg, r)
	switch {
	case err == nil:
		return user, true
	case errors.Is(err, auth.ErrInvalidToken):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Sign in required")
	case errors.Is(err, auth.ErrExpiredToken):
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Session expired")
	default:
		slog.Error("failed to resolve session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
	}
	return models.User{}, false
}

func isReviewer(user models.User) bool {
	return user.Role == models.RoleReviewer || user.Role == models.RoleAdmin
}
