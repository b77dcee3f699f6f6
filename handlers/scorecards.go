// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Timfon/cntr-webapp-sub001/auth"
	"github.com/Timfon/cntr-webapp-sub001/cliparse"
	"github.com/Timfon/cntr-webapp-sub001/format"
	"github.com/Timfon/cntr-webapp-sub001/middleware"
	"github.com/Timfon/cntr-webapp-sub001/models"
)

var errStatusChanged = errors.New("scorecard status changed")

type ScorecardHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewScorecardHandler(db *sql.DB, cfg cliparse.Config) *ScorecardHandler {
	return &ScorecardHandler{db: db, cfg: cfg}
}

// CreateScorecard handles POST /scorecards
func (h *ScorecardHandler) CreateScorecard(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	var req models.CreateScorecardRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if !models.IsValidKind(req.Kind) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "kind must be ai_policy or government_accountability")
		return
	}

	id := auth.NewID()
	now := time.Now().UTC()
	_, err := h.db.Exec(`
		INSERT INTO scorecard (id, owner_id, kind, title, state, bill_number,
			period_start, period_end, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`, id, user.ID, req.Kind, strings.TrimSpace(req.Title), normalizeState(req.State),
		strings.TrimSpace(req.BillNumber), nullIfEmpty(req.PeriodStart), nullIfEmpty(req.PeriodEnd),
		models.StatusDraft, now)
	if err != nil {
		slog.Error("failed to create scorecard", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create scorecard")
		return
	}

	slog.Info("scorecard created", "scorecard_id", id, "kind", req.Kind, "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusCreated, models.CreateScorecardResponse{ScorecardID: id})
}

// ListScorecards handles GET /scorecards
// Analysts see their own scorecards; reviewers and admins see all.
func (h *ScorecardHandler) ListScorecards(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}

	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if !isReviewer(user) {
		filter.OwnerID = user.ID
	}

	summaries, err := ListScorecards(h.db, filter)
	if err != nil {
		slog.Error("failed to list scorecards", "error", err, "user_id", user.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ListScorecardsResponse{
		Scorecards: summaries,
		DateRange:  filter.DateRange(),
	})
}

// GetScorecard handles GET /scorecards/{id}
func (h *ScorecardHandler) GetScorecard(w http.ResponseWriter, r *http.Request) {
	_, sc, ok := h.viewable(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, http.StatusOK, sc)
}

// UpdateScorecard handles PUT /scorecards/{id}
func (h *ScorecardHandler) UpdateScorecard(w http.ResponseWriter, r *http.Request) {
	user, sc, ok := h.editable(w, r)
	if !ok {
		return
	}

	var req models.UpdateScorecardRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	res, err := h.db.Exec(`
		UPDATE scorecard
		SET title = $1, state = $2, bill_number = $3, period_start = $4, period_end = $5, updated_at = $6
		WHERE id = $7 AND status IN ($8, $9)
	`, strings.TrimSpace(req.Title), normalizeState(req.State), strings.TrimSpace(req.BillNumber),
		nullIfEmpty(req.PeriodStart), nullIfEmpty(req.PeriodEnd), time.Now().UTC(), sc.ID,
		models.StatusDraft, models.StatusReturned)
	if err != nil {
		slog.Error("failed to update scorecard", "error", err, "scorecard_id", sc.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update scorecard")
		return
	}
	if n, err := res.RowsAffected(); err != nil || n == 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Scorecard is no longer editable")
		return
	}

	updated, err := LoadScorecard(h.db, sc.ID)
	if err != nil {
		slog.Error("failed to reload scorecard", "error", err, "scorecard_id", sc.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	slog.Info("scorecard updated", "scorecard_id", sc.ID, "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, updated)
}

// GetSections handles GET /scorecards/{id}/sections
func (h *ScorecardHandler) GetSections(w http.ResponseWriter, r *http.Request) {
	_, sc, ok := h.viewable(w, r)
	if !ok {
		return
	}

	entries, err := LoadSections(h.db, sc)
	if err != nil {
		slog.Error("failed to load sections", "error", err, "scorecard_id", sc.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, entries)
}

// UpdateNotes handles PUT /scorecards/{id}/notes/{section}
// The body carries the full replacement text for the section.
func (h *ScorecardHandler) UpdateNotes(w http.ResponseWriter, r *http.Request) {
	_, sc, ok := h.editable(w, r)
	if !ok {
		return
	}

	section := r.PathValue("section")
	if _, found := models.FindSection(sc.Kind, section); !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown section")
		return
	}

	var req models.UpdateNotesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	err := editNotes(h.db, sc, section, req.Notes)
	if errors.Is(err, ErrScorecardLocked) {
		middleware.ErrorResponse(w, http.StatusConflict, "Scorecard is no longer editable")
		return
	}
	if err != nil {
		slog.Error("failed to save notes", "error", err, "scorecard_id", sc.ID, "section", section)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save notes")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Notes saved"})
}

// editNotes routes a notes edit through an Editor over the stored notes
// whose change callback writes to the store
func editNotes(db *sql.DB, sc models.Scorecard, section, text string) error {
	entries, err := LoadSections(db, sc)
	if err != nil {
		return err
	}

	var saveErr error
	editor := sectionEditor(entries, section, func(section, text string) {
		saveErr = SaveNotes(db, sc.ID, section, text)
	})
	if editor.Section != section {
		return fmt.Errorf("unknown section %q", section)
	}
	editor.Edit(text)
	return saveErr
}

// UpdateScore handles PUT /scorecards/{id}/scores/{section}
func (h *ScorecardHandler) UpdateScore(w http.ResponseWriter, r *http.Request) {
	_, sc, ok := h.editable(w, r)
	if !ok {
		return
	}

	section := r.PathValue("section")
	if _, found := models.FindSection(sc.Kind, section); !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "Unknown section")
		return
	}

	var req models.UpdateScoreRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Score < models.MinScore || req.Score > models.MaxScore {
		middleware.ErrorResponse(w, http.StatusBadRequest, "score must be between 1 and 5")
		return
	}

	err := SaveScore(h.db, sc.ID, section, req.Score)
	if errors.Is(err, ErrScorecardLocked) {
		middleware.ErrorResponse(w, http.StatusConflict, "Scorecard is no longer editable")
		return
	}
	if err != nil {
		slog.Error("failed to save score", "error", err, "scorecard_id", sc.ID, "section", section)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to save score")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "Score saved"})
}

// GetReadiness handles GET /scorecards/{id}/readiness
func (h *ScorecardHandler) GetReadiness(w http.ResponseWriter, r *http.Request) {
	_, sc, ok := h.viewable(w, r)
	if !ok {
		return
	}

	entries, err := LoadSections(h.db, sc)
	if err != nil {
		slog.Error("failed to load sections", "error", err, "scorecard_id", sc.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, Readiness(sc, entries))
}

// SubmitScorecard handles POST /scorecards/{id}/submit
func (h *ScorecardHandler) SubmitScorecard(w http.ResponseWriter, r *http.Request) {
	user, sc, ok := h.owned(w, r)
	if !ok {
		return
	}

	entries, err := LoadSections(h.db, sc)
	if err != nil {
		slog.Error("failed to load sections", "error", err, "scorecard_id", sc.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	readiness := Readiness(sc, entries)
	now := time.Now().UTC()
	submitted, err := readiness.Dispatch(func() error {
		return submitScorecard(h.db, sc.ID, now)
	})
	if errors.Is(err, errStatusChanged) {
		middleware.ErrorResponse(w, http.StatusConflict, "Scorecard was changed by another request")
		return
	}
	if err != nil {
		slog.Error("failed to submit scorecard", "error", err, "scorecard_id", sc.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to submit scorecard")
		return
	}
	if !submitted {
		middleware.IssuesResponse(w, http.StatusConflict, "Scorecard cannot be submitted", readiness.Issues)
		return
	}

	slog.Info("scorecard submitted", "scorecard_id", sc.ID, "user_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.SubmitResponse{
		Status:      models.StatusSubmitted,
		SubmittedAt: now,
	})
}

func submitScorecard(db *sql.DB, id string, now time.Time) error {
	res, err := db.Exec(`
		UPDATE scorecard
		SET status = $1, submitted_at = $2, updated_at = $2
		WHERE id = $3 AND status IN ($4, $5)
	`, models.StatusSubmitted, now, id, models.StatusDraft, models.StatusReturned)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errStatusChanged
	}
	return nil
}

// ReviewScorecard handles POST /scorecards/{id}/review
func (h *ScorecardHandler) ReviewScorecard(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return
	}
	if !isReviewer(user) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Reviewer role required")
		return
	}

	sc, ok := h.load(w, r)
	if !ok {
		return
	}

	var req models.ReviewRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	var status string
	comment := strings.TrimSpace(req.Comment)
	switch req.Decision {
	case models.DecisionApprove:
		status = models.StatusApproved
	case models.DecisionReturn:
		status = models.StatusReturned
		if comment == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "A comment is required when returning a scorecard")
			return
		}
	default:
		middleware.ErrorResponse(w, http.StatusBadRequest, "decision must be approve or return")
		return
	}

	if sc.Status != models.StatusSubmitted {
		middleware.ErrorResponse(w, http.StatusConflict, "Only submitted scorecards can be reviewed")
		return
	}

	tx, err := h.db.Begin()
	if err != nil {
		slog.Error("failed to begin transaction", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.Exec(`
		UPDATE scorecard
		SET status = $1, reviewed_at = $2, review_comment = $3, updated_at = $2
		WHERE id = $4 AND status = $5
	`, status, now, nullIfEmpty(comment), sc.ID, models.StatusSubmitted)
	if err != nil {
		slog.Error("failed to update scorecard", "error", err, "scorecard_id", sc.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record review")
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		middleware.ErrorResponse(w, http.StatusConflict, "Scorecard was changed by another request")
		return
	}

	reviewID := auth.NewID()
	_, err = tx.Exec(`
		INSERT INTO review (id, scorecard_id, reviewer_id, decision, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, reviewID, sc.ID, user.ID, req.Decision, comment, now)
	if err != nil {
		slog.Error("failed to insert review", "error", err, "scorecard_id", sc.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record review")
		return
	}

	if err := tx.Commit(); err != nil {
		slog.Error("failed to commit review", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to record review")
		return
	}

	slog.Info("scorecard reviewed", "scorecard_id", sc.ID, "decision", req.Decision, "reviewer_id", user.ID)
	middleware.JSONResponse(w, http.StatusOK, models.ReviewResponse{ReviewID: reviewID, Status: status})
}

// AddAttachment handles POST /scorecards/{id}/attachments
func (h *ScorecardHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	_, sc, ok := h.editable(w, r)
	if !ok {
		return
	}

	var req models.AddAttachmentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.FileName)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "file_name is required")
		return
	}
	if req.SizeBytes < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "size_bytes must not be negative")
		return
	}

	a := models.Attachment{
		ID:          auth.NewID(),
		ScorecardID: sc.ID,
		FileName:    name,
		SizeBytes:   req.SizeBytes,
		ContentType: strings.TrimSpace(req.ContentType),
	}
	err := editSection(h.db, sc.ID, func(tx *sql.Tx, now time.Time) error {
		a.CreatedAt = now
		_, err := tx.Exec(`
			INSERT INTO attachment (id, scorecard_id, file_name, size_bytes, content_type, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, a.ID, a.ScorecardID, a.FileName, a.SizeBytes, a.ContentType, a.CreatedAt)
		return err
	})
	if errors.Is(err, ErrScorecardLocked) {
		middleware.ErrorResponse(w, http.StatusConflict, "Scorecard is no longer editable")
		return
	}
	if err != nil {
		slog.Error("failed to add attachment", "error", err, "scorecard_id", sc.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to add attachment")
		return
	}

	a.SizeDisplay = format.FormatFileSize(a.SizeBytes)
	middleware.JSONResponse(w, http.StatusCreated, a)
}

// ListAttachments handles GET /scorecards/{id}/attachments
func (h *ScorecardHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	_, sc, ok := h.viewable(w, r)
	if !ok {
		return
	}

	attachments, err := LoadAttachments(h.db, sc.ID)
	if err != nil {
		slog.Error("failed to load attachments", "error", err, "scorecard_id", sc.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AttachmentListResponse{Attachments: attachments})
}

// load fetches the scorecard named by the {id} path value
func (h *ScorecardHandler) load(w http.ResponseWriter, r *http.Request) (models.Scorecard, bool) {
	sc, err := LoadScorecard(h.db, r.PathValue("id"))
	if errors.Is(err, ErrScorecardNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Scorecard not found")
		return models.Scorecard{}, false
	}
	if err != nil {
		slog.Error("failed to load scorecard", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return models.Scorecard{}, false
	}
	return sc, true
}

func (h *ScorecardHandler) viewable(w http.ResponseWriter, r *http.Request) (models.User, models.Scorecard, bool) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return models.User{}, models.Scorecard{}, false
	}
	sc, ok := h.load(w, r)
	if !ok {
		return models.User{}, models.Scorecard{}, false
	}
	if !canView(user, sc) {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not your scorecard")
		return models.User{}, models.Scorecard{}, false
	}
	return user, sc, true
}

func (h *ScorecardHandler) owned(w http.ResponseWriter, r *http.Request) (models.User, models.Scorecard, bool) {
	user, ok := requireUser(w, r, h.db, h.cfg)
	if !ok {
		return models.User{}, models.Scorecard{}, false
	}
	sc, ok := h.load(w, r)
	if !ok {
		return models.User{}, models.Scorecard{}, false
	}
	if sc.OwnerID != user.ID {
		middleware.ErrorResponse(w, http.StatusForbidden, "Not your scorecard")
		return models.User{}, models.Scorecard{}, false
	}
	return user, sc, true
}

func (h *ScorecardHandler) editable(w http.ResponseWriter, r *http.Request) (models.User, models.Scorecard, bool) {
	user, sc, ok := h.owned(w, r)
	if !ok {
		return models.User{}, models.Scorecard{}, false
	}
	if !isEditable(sc) {
		middleware.ErrorResponse(w, http.StatusConflict, "Scorecard is "+sc.Status+" and cannot be edited")
		return models.User{}, models.Scorecard{}, false
	}
	return user, sc, true
}

func normalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func nullIfEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
