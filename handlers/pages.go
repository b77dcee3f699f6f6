// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Timfon/cntr-webapp-sub001/auth"
	"github.com/Timfon/cntr-webapp-sub001/cliparse"
	"github.com/Timfon/cntr-webapp-sub001/models"
	"github.com/Timfon/cntr-webapp-sub001/views"
)

// PageHandler serves the HTML views
type PageHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewPageHandler(db *sql.DB, cfg cliparse.Config) *PageHandler {
	return &PageHandler{db: db, cfg: cfg}
}

// ListPage handles GET /app/scorecards
func (h *PageHandler) ListPage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.pageUser(w, r)
	if !ok {
		return
	}

	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !isReviewer(user) {
		filter.OwnerID = user.ID
	}

	summaries, err := ListScorecards(h.db, filter)
	if err != nil {
		slog.Error("failed to list scorecards", "error", err, "user_id", user.ID)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	render(w, func(buf *bytes.Buffer) error {
		return views.RenderList(buf, views.ListPage{
			User: user,
			Filter: views.Filter{
				Status: filter.Status,
				Kind:   filter.Kind,
				State:  filter.State,
				From:   filter.From,
				To:     filter.To,
				Query:  filter.Query,
			},
			DateRange:  filter.DateRange(),
			Scorecards: summaries,
		})
	})
}

// ScorecardPage handles GET /app/scorecards/{id}
// The ?section= parameter picks the section shown in the notes editor.
func (h *PageHandler) ScorecardPage(w http.ResponseWriter, r *http.Request) {
	user, sc, ok := h.pageScorecard(w, r)
	if !ok {
		return
	}

	var entries []models.SectionEntry
	var attachments []models.Attachment
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		entries, err = LoadSections(h.db, sc)
		return err
	})
	g.Go(func() error {
		var err error
		attachments, err = LoadAttachments(h.db, sc.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		slog.Error("failed to load scorecard page", "error", err, "scorecard_id", sc.ID)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	readiness := Readiness(sc, entries)
	owner := sc.OwnerID == user.ID
	editor := sectionEditor(entries, r.URL.Query().Get("section"), nil)
	page := views.ScorecardPage{
		User:           user,
		Scorecard:      sc,
		Sections:       entries,
		Current:        currentSection(entries, editor.Section),
		Notes:          editor.Value(),
		SubmitDisabled: readiness.ButtonDisabled(),
		Owner:          owner,
		Editable:       owner && isEditable(sc),
		Attachments:    attachments,
		Notice:         noticeText(r.URL.Query().Get("notice")),
	}
	if owner && isEditable(sc) {
		page.Banner = readiness.Banner()
	}

	render(w, func(buf *bytes.Buffer) error {
		return views.RenderScorecard(buf, page)
	})
}

// SaveNotesForm handles POST /app/scorecards/{id}/notes
func (h *PageHandler) SaveNotesForm(w http.ResponseWriter, r *http.Request) {
	user, sc, ok := h.pageScorecard(w, r)
	if !ok {
		return
	}
	if sc.OwnerID != user.ID || !isEditable(sc) {
		http.Error(w, "Scorecard cannot be edited", http.StatusForbidden)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form", http.StatusBadRequest)
		return
	}

	section := r.PostFormValue("section")
	if _, found := models.FindSection(sc.Kind, section); !found {
		http.Error(w, "Unknown section", http.StatusBadRequest)
		return
	}

	err := editNotes(h.db, sc, section, r.PostFormValue("notes"))
	if errors.Is(err, ErrScorecardLocked) {
		http.Error(w, "Scorecard is no longer editable", http.StatusConflict)
		return
	}
	if err != nil {
		slog.Error("failed to save notes", "error", err, "scorecard_id", sc.ID, "section", section)
		http.Error(w, "Failed to save notes", http.StatusInternalServerError)
		return
	}

	if raw := strings.TrimSpace(r.PostFormValue("score")); raw != "" {
		score, err := parseScore(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		err = SaveScore(h.db, sc.ID, section, score)
		if errors.Is(err, ErrScorecardLocked) {
			http.Error(w, "Scorecard is no longer editable", http.StatusConflict)
			return
		}
		if err != nil {
			slog.Error("failed to save score", "error", err, "scorecard_id", sc.ID, "section", section)
			http.Error(w, "Failed to save score", http.StatusInternalServerError)
			return
		}
	}

	redirectToScorecard(w, r, sc.ID, section, "saved")
}

// SubmitForm handles POST /app/scorecards/{id}/submit
func (h *PageHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	user, sc, ok := h.pageScorecard(w, r)
	if !ok {
		return
	}
	if sc.OwnerID != user.ID {
		http.Error(w, "Not your scorecard", http.StatusForbidden)
		return
	}

	entries, err := LoadSections(h.db, sc)
	if err != nil {
		slog.Error("failed to load sections", "error", err, "scorecard_id", sc.ID)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}

	submitted, err := Readiness(sc, entries).Dispatch(func() error {
		return submitScorecard(h.db, sc.ID, time.Now().UTC())
	})
	if err != nil && !errors.Is(err, errStatusChanged) {
		slog.Error("failed to submit scorecard", "error", err, "scorecard_id", sc.ID)
		http.Error(w, "Failed to submit scorecard", http.StatusInternalServerError)
		return
	}

	notice := "blocked"
	if submitted && err == nil {
		notice = "submitted"
		slog.Info("scorecard submitted", "scorecard_id", sc.ID, "user_id", user.ID)
	}
	redirectToScorecard(w, r, sc.ID, "", notice)
}

// pageUser resolves the session for an HTML request
func (h *PageHandler) pageUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	user, err := SessionUser(h.db, h.cfg, r)
	switch {
	case err == nil:
		return user, true
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrExpiredToken):
		http.Error(w, "Sign in required", http.StatusUnauthorized)
	default:
		slog.Error("failed to resolve session", "error", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
	}
	return models.User{}, false
}

func (h *PageHandler) pageScorecard(w http.ResponseWriter, r *http.Request) (models.User, models.Scorecard, bool) {
	user, ok := h.pageUser(w, r)
	if !ok {
		return models.User{}, models.Scorecard{}, false
	}

	sc, err := LoadScorecard(h.db, r.PathValue("id"))
	if errors.Is(err, ErrScorecardNotFound) {
		http.NotFound(w, r)
		return models.User{}, models.Scorecard{}, false
	}
	if err != nil {
		slog.Error("failed to load scorecard", "error", err)
		http.Error(w, "Database error", http.StatusInternalServerError)
		return models.User{}, models.Scorecard{}, false
	}
	if !canView(user, sc) {
		http.Error(w, "Not your scorecard", http.StatusForbidden)
		return models.User{}, models.Scorecard{}, false
	}
	return user, sc, true
}

// currentSection returns the entry for key
func currentSection(entries []models.SectionEntry, key string) models.SectionEntry {
	for _, e := range entries {
		if e.SectionKey == key {
			return e
		}
	}
	return models.SectionEntry{}
}

func noticeText(code string) string {
	switch code {
	case "saved":
		return "Notes saved."
	case "submitted":
		return "Scorecard submitted for review."
	case "blocked":
		return "Scorecard was not submitted."
	}
	return ""
}

func redirectToScorecard(w http.ResponseWriter, r *http.Request, id, section, notice string) {
	q := url.Values{}
	if section != "" {
		q.Set("section", section)
	}
	if notice != "" {
		q.Set("notice", notice)
	}
	target := "/app/scorecards/" + url.PathEscape(id)
	if len(q) > 0 {
		target += "?" + q.Encode()
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// render buffers the page so template errors can still become a 500
func render(w http.ResponseWriter, exec func(buf *bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := exec(&buf); err != nil {
		slog.Error("template error", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
