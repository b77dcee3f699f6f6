// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Timfon/cntr-webapp-sub001/auth"
	"github.com/Timfon/cntr-webapp-sub001/cliparse"
	"github.com/Timfon/cntr-webapp-sub001/middleware"
	"github.com/Timfon/cntr-webapp-sub001/models"
)

type SettingsHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewSettingsHandler(db *sql.DB, cfg cliparse.Config) *SettingsHandler {
	return &SettingsHandler{db: db, cfg: cfg}
}

// GetSettings handles GET /settings
func (h *SettingsHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, user)
}

// UpdateSettings handles PUT /settings
func (h *SettingsHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	var req models.UpdateSettingsRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "display_name is required")
		return
	}

	_, err := h.db.Exec(`
		UPDATE app_user SET display_name = $1, updated_at = $2 WHERE id = $3
	`, displayName, time.Now().UTC(), user.ID)
	if err != nil {
		slog.Error("failed to update settings", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save settings")
		return
	}

	user.DisplayName = displayName
	middleware.JSONResponse(w, http.StatusOK, user)
}

// ChangePassword handles POST /settings/password
func (h *SettingsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	var req models.ChangePasswordRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var current string
	err := h.db.QueryRow(`SELECT password_hash FROM app_user WHERE id = $1`, user.ID).Scan(&current)
	if err != nil {
		slog.Error("failed to query password", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.CheckPassword(current, req.CurrentPassword); err != nil {
		middleware.ErrorResponse(w, http.StatusForbidden, "Current password is incorrect")
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if errors.Is(err, auth.ErrWeakPassword) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	_, err = h.db.Exec(`
		UPDATE app_user SET password_hash = $1, updated_at = $2 WHERE id = $3
	`, hash, time.Now().UTC(), user.ID)
	if err != nil {
		slog.Error("failed to update password", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to change password")
		return
	}

	slog.Info("password changed", "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Password updated"})
}
