// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/Timfon/cntr-webapp-sub001/cliparse"
	"github.com/Timfon/cntr-webapp-sub001/handlers"
	"github.com/Timfon/cntr-webapp-sub001/middleware"
	"github.com/Timfon/cntr-webapp-sub001/siteurl"
)

func NewRouter(db *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	accountHandler := handlers.NewAccountHandler(db, cfg, siteurl.New())
	settingsHandler := handlers.NewSettingsHandler(db, cfg)
	scorecardHandler := handlers.NewScorecardHandler(db, cfg)
	pageHandler := handlers.NewPageHandler(db, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Accounts
	mux.HandleFunc("POST /auth/sign-up", middleware.WithLogging(accountHandler.SignUp))
	mux.HandleFunc("POST /auth/sign-in", middleware.WithLogging(accountHandler.SignIn))
	mux.HandleFunc("POST /auth/sign-out", middleware.WithLogging(accountHandler.SignOut))
	mux.HandleFunc("POST /auth/password-reset", middleware.WithLogging(accountHandler.RequestPasswordReset))
	mux.HandleFunc("POST /auth/password-reset/confirm", middleware.WithLogging(accountHandler.ConfirmPasswordReset))

	// Settings
	mux.HandleFunc("GET /settings", middleware.WithLogging(settingsHandler.GetSettings))
	mux.HandleFunc("PUT /settings", middleware.WithLogging(settingsHandler.UpdateSettings))
	mux.HandleFunc("POST /settings/password", middleware.WithLogging(settingsHandler.ChangePassword))

	// Scorecards
	mux.HandleFunc("POST /scorecards", middleware.WithLogging(scorecardHandler.CreateScorecard))
	mux.HandleFunc("GET /scorecards", middleware.WithLogging(scorecardHandler.ListScorecards))
	mux.HandleFunc("GET /scorecards/{id}", middleware.WithLogging(scorecardHandler.GetScorecard))
	mux.HandleFunc("PUT /scorecards/{id}", middleware.WithLogging(scorecardHandler.UpdateScorecard))
	mux.HandleFunc("GET /scorecards/{id}/sections", middleware.WithLogging(scorecardHandler.GetSections))
	mux.HandleFunc("PUT /scorecards/{id}/notes/{section}", middleware.WithLogging(scorecardHandler.UpdateNotes))
	mux.HandleFunc("PUT /scorecards/{id}/scores/{section}", middleware.WithLogging(scorecardHandler.UpdateScore))
	mux.HandleFunc("GET /scorecards/{id}/readiness", middleware.WithLogging(scorecardHandler.GetReadiness))
	mux.HandleFunc("POST /scorecards/{id}/submit", middleware.WithLogging(scorecardHandler.SubmitScorecard))
	mux.HandleFunc("POST /scorecards/{id}/review", middleware.WithLogging(scorecardHandler.ReviewScorecard))
	mux.HandleFunc("POST /scorecards/{id}/attachments", middleware.WithLogging(scorecardHandler.AddAttachment))
	mux.HandleFunc("GET /scorecards/{id}/attachments", middleware.WithLogging(scorecardHandler.ListAttachments))

	// Glossary (public)
	mux.HandleFunc("GET /definitions", middleware.WithLogging(handlers.ListDefinitions))
	mux.HandleFunc("GET /definitions/{term}", middleware.WithLogging(handlers.GetDefinition))

	// HTML pages
	mux.HandleFunc("GET /app/scorecards", middleware.WithLogging(pageHandler.ListPage))
	mux.HandleFunc("GET /app/scorecards/{id}", middleware.WithLogging(pageHandler.ScorecardPage))
	mux.HandleFunc("POST /app/scorecards/{id}/notes", middleware.WithLogging(pageHandler.SaveNotesForm))
	mux.HandleFunc("POST /app/scorecards/{id}/submit", middleware.WithLogging(pageHandler.SubmitForm))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("scorecards API v1"))
	})

	return mux
}
