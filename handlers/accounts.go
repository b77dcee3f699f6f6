// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Timfon/cntr-webapp-sub001/auth"
	"github.com/Timfon/cntr-webapp-sub001/cliparse"
	"github.com/Timfon/cntr-webapp-sub001/db"
	"github.com/Timfon/cntr-webapp-sub001/format"
	"github.com/Timfon/cntr-webapp-sub001/middleware"
	"github.com/Timfon/cntr-webapp-sub001/models"
	"github.com/Timfon/cntr-webapp-sub001/siteurl"
)

// resetRequestedMessage is returned whether or not the address has an account
const resetRequestedMessage = "If an account exists for that address, a reset link has been sent"

type AccountHandler struct {
	db   *sql.DB
	cfg  cliparse.Config
	site siteurl.Resolver
}

func NewAccountHandler(db *sql.DB, cfg cliparse.Config, site siteurl.Resolver) *AccountHandler {
	return &AccountHandler{db: db, cfg: cfg, site: site}
}

// SignUp handles POST /auth/sign-up
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req models.SignUpRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "display_name is required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if errors.Is(err, auth.ErrWeakPassword) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	userID := auth.NewID()
	now := time.Now().UTC()
	_, err = h.db.Exec(`
		INSERT INTO app_user (id, email, password_hash, display_name, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, userID, email, hash, displayName, models.RolePolicyAnalyst, now, now)

	if db.IsUniqueViolation(err) {
		middleware.ErrorResponse(w, http.StatusConflict, "An account with that email already exists")
		return
	}
	if err != nil {
		slog.Error("failed to insert user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	token, expiresAt, err := CreateSession(h.db, h.cfg, userID)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user_id", userID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	slog.Info("account created", "user_id", userID)

	middleware.SetSessionCookie(w, r, token, expiresAt)
	middleware.JSONResponse(w, http.StatusCreated, models.SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User: models.User{
			ID:          userID,
			Email:       email,
			DisplayName: displayName,
			Role:        models.RolePolicyAnalyst,
			DisplayRole: format.FormatRole(models.RolePolicyAnalyst),
			CreatedAt:   now,
		},
	})
}

// SignIn handles POST /auth/sign-in
func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ipHash := auth.HashIP(middleware.GetClientIP(r), h.cfg.SessionSecret)

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	var user models.User
	var hash string
	err = h.db.QueryRow(`
		SELECT id, email, display_name, role, created_at, password_hash
		FROM app_user
		WHERE email = $1
	`, email).Scan(&user.ID, &user.Email, &user.DisplayName, &user.Role, &user.CreatedAt, &hash)

	if err == sql.ErrNoRows {
		slog.Warn("sign-in failed", "reason", "unknown email", "ip_hash", ipHash)
		middleware.ErrorResponse(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.CheckPassword(hash, req.Password); err != nil {
		slog.Warn("sign-in failed", "reason", "wrong password", "user_id", user.ID, "ip_hash", ipHash)
		middleware.ErrorResponse(w, http.StatusUnauthorized, err.Error())
		return
	}

	token, expiresAt, err := CreateSession(h.db, h.cfg, user.ID)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	slog.Info("signed in", "user_id", user.ID, "ip_hash", ipHash)

	user.DisplayRole = format.FormatRole(user.Role)
	middleware.SetSessionCookie(w, r, token, expiresAt)
	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

// SignOut handles POST /auth/sign-out
func (h *AccountHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.SessionToken(r)
	if token == "" {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Sign in required")
		return
	}

	_, err := h.db.Exec(`DELETE FROM session WHERE token_hash = $1`, auth.HashToken(token, h.cfg.SessionSecret))
	if err != nil {
		slog.Error("failed to delete session", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to sign out")
		return
	}

	middleware.ClearSessionCookie(w)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Signed out"})
}

// RequestPasswordReset handles POST /auth/password-reset
// Always answers 202 so the endpoint cannot be used to probe for accounts
func (h *AccountHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	resp := models.PasswordResetResponse{Message: resetRequestedMessage}

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var userID string
	err = h.db.QueryRow(`SELECT id FROM app_user WHERE email = $1`, email).Scan(&userID)
	if err == sql.ErrNoRows {
		middleware.JSONResponse(w, http.StatusAccepted, resp)
		return
	}
	if err != nil {
		slog.Error("failed to query user", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	token, err := auth.GenerateToken()
	if err != nil {
		slog.Error("failed to generate reset token", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to request reset")
		return
	}

	now := time.Now().UTC()
	_, err = h.db.Exec(`
		INSERT INTO password_reset (token_hash, user_id, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, auth.HashToken(token, h.cfg.SessionSecret), userID, now, now.Add(h.cfg.ResetTTL))
	if err != nil {
		slog.Error("failed to insert password reset", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to request reset")
		return
	}

	resetURL := h.site.URL(r, "/reset-password?token="+url.QueryEscape(token))

	// Mail delivery lives outside this service; the link is handed off via the log
	slog.Info("password reset requested", "user_id", userID, "reset_url", resetURL)

	if h.cfg.UseEmulators {
		resp.ResetURL = resetURL
	}
	middleware.JSONResponse(w, http.StatusAccepted, resp)
}

// ConfirmPasswordReset handles POST /auth/password-reset/confirm
func (h *AccountHandler) ConfirmPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req models.PasswordResetConfirmRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Token == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "token is required")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if errors.Is(err, auth.ErrWeakPassword) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	tokenHash := auth.HashToken(req.Token, h.cfg.SessionSecret)

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	var userID string
	var expiresAt time.Time
	var usedAt *time.Time
	err = tx.QueryRow(`
		SELECT user_id, expires_at, used_at FROM password_reset WHERE token_hash = $1
	`, tokenHash).Scan(&userID, &expiresAt, &usedAt)
	if err == sql.ErrNoRows || (err == nil && usedAt != nil) {
		middleware.ErrorResponse(w, http.StatusBadRequest, auth.ErrInvalidToken.Error())
		return
	}
	if err != nil {
		slog.Error("failed to query password reset", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if !time.Now().Before(expiresAt) {
		middleware.ErrorResponse(w, http.StatusBadRequest, auth.ErrExpiredToken.Error())
		return
	}

	now := time.Now().UTC()
	res, err := tx.Exec(`
		UPDATE password_reset SET used_at = $1 WHERE token_hash = $2 AND used_at IS NULL
	`, now, tokenHash)
	if err != nil {
		slog.Error("failed to mark reset used", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	// Another confirm claimed the token first
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, auth.ErrInvalidToken.Error())
		return
	}
	if _, err := tx.Exec(`UPDATE app_user SET password_hash = $1, updated_at = $2 WHERE id = $3`, hash, now, userID); err != nil {
		slog.Error("failed to update password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}
	// Existing sessions end with the old password
	if _, err := tx.Exec(`DELETE FROM session WHERE user_id = $1`, userID); err != nil {
		slog.Error("failed to delete sessions", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to reset password")
		return
	}

	slog.Info("password reset", "user_id", userID)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Password updated"})
}
