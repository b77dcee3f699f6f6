// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Timfon/cntr-webapp-sub001/definitions"
	"github.com/Timfon/cntr-webapp-sub001/format"
	"github.com/Timfon/cntr-webapp-sub001/models"
	"github.com/Timfon/cntr-webapp-sub001/notes"
	"github.com/Timfon/cntr-webapp-sub001/submission"
)

var (
	ErrScorecardNotFound = errors.New("scorecard not found")
	ErrInvalidFilter     = errors.New("invalid filter")
	ErrScorecardLocked   = errors.New("scorecard is not editable")
)

// ScorecardFilter narrows a scorecard listing. Empty fields match everything.
type ScorecardFilter struct {
	OwnerID string
	Status  string
	Kind    string
	State   string
	From    string // YYYY-MM-DD, inclusive, on updated_at
	To      string // YYYY-MM-DD, inclusive, on updated_at
	Query   string // case-insensitive title substring
}

// ParseFilter reads filter fields from query parameters
func ParseFilter(q url.Values) (ScorecardFilter, error) {
	f := ScorecardFilter{
		Status: q.Get("status"),
		Kind:   q.Get("kind"),
		State:  strings.ToUpper(strings.TrimSpace(q.Get("state"))),
		From:   q.Get("from"),
		To:     q.Get("to"),
		Query:  strings.TrimSpace(q.Get("q")),
	}

	switch f.Status {
	case "", models.StatusDraft, models.StatusSubmitted, models.StatusApproved, models.StatusReturned:
	default:
		return ScorecardFilter{}, fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, f.Status)
	}
	if f.Kind != "" && !models.IsValidKind(f.Kind) {
		return ScorecardFilter{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidFilter, f.Kind)
	}
	for _, d := range []string{f.From, f.To} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return ScorecardFilter{}, fmt.Errorf("%w: dates must be YYYY-MM-DD", ErrInvalidFilter)
		}
	}

	return f, nil
}

// DateRange is the label shown for the filter's date range
func (f ScorecardFilter) DateRange() string {
	return format.FormatDateRange(f.From, f.To)
}

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

const scorecardColumns = `
	id, owner_id, kind, title, state, bill_number, period_start, period_end,
	status, created_at, updated_at, submitted_at, reviewed_at, review_comment`

func scanScorecard(s scanner) (models.Scorecard, error) {
	var sc models.Scorecard
	err := s.Scan(
		&sc.ID, &sc.OwnerID, &sc.Kind, &sc.Title, &sc.State, &sc.BillNumber,
		&sc.PeriodStart, &sc.PeriodEnd, &sc.Status, &sc.CreatedAt, &sc.UpdatedAt,
		&sc.SubmittedAt, &sc.ReviewedAt, &sc.ReviewComment,
	)
	if err != nil {
		return models.Scorecard{}, err
	}
	sc.BillID = format.FormatBillID(format.Bill{State: sc.State, BillNumber: sc.BillNumber})
	return sc, nil
}

// LoadScorecard fetches one scorecard by ID
func LoadScorecard(db *sql.DB, id string) (models.Scorecard, error) {
	sc, err := scanScorecard(db.QueryRow(`SELECT `+scorecardColumns+` FROM scorecard WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return models.Scorecard{}, ErrScorecardNotFound
	}
	if err != nil {
		return models.Scorecard{}, fmt.Errorf("failed to query scorecard: %w", err)
	}
	return sc, nil
}

// ListScorecards returns scorecards matching f, most recently updated first
func ListScorecards(db *sql.DB, f ScorecardFilter) ([]models.ScorecardSummary, error) {
	var where []string
	var args []any
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if f.OwnerID != "" {
		add("owner_id = $%d", f.OwnerID)
	}
	if f.Status != "" {
		add("status = $%d", f.Status)
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.State != "" {
		add("state = $%d", f.State)
	}
	if f.From != "" {
		from, _ := time.Parse("2006-01-02", f.From)
		add("updated_at >= $%d", from.UTC())
	}
	if f.To != "" {
		to, _ := time.Parse("2006-01-02", f.To)
		add("updated_at < $%d", to.AddDate(0, 0, 1).UTC())
	}
	if f.Query != "" {
		add(`LOWER(title) LIKE $%d ESCAPE '\'`, "%"+escapeLike(strings.ToLower(f.Query))+"%")
	}

	query := `SELECT ` + scorecardColumns + ` FROM scorecard`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, id"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query scorecards: %w", err)
	}
	defer rows.Close()

	summaries := []models.ScorecardSummary{}
	for rows.Next() {
		sc, err := scanScorecard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scorecard: %w", err)
		}
		summaries = append(summaries, Summarize(sc))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read scorecards: %w", err)
	}

	return summaries, nil
}

// likeEscaper makes LIKE wildcards in user input match literally
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Summarize builds the list row for a scorecard
func Summarize(sc models.Scorecard) models.ScorecardSummary {
	var start, end string
	if sc.PeriodStart != nil {
		start = *sc.PeriodStart
	}
	if sc.PeriodEnd != nil {
		end = *sc.PeriodEnd
	}
	return models.ScorecardSummary{
		ID:          sc.ID,
		Kind:        sc.Kind,
		Title:       sc.Title,
		BillID:      sc.BillID,
		Status:      sc.Status,
		Period:      format.FormatDateRange(start, end),
		UpdatedAt:   sc.UpdatedAt,
		UpdatedDate: format.FormatTime(&sc.UpdatedAt),
	}
}

// LoadSections returns every catalog section of the scorecard's kind with
// its stored notes and score. Sections never written come back empty.
func LoadSections(db *sql.DB, sc models.Scorecard) ([]models.SectionEntry, error) {
	rows, err := db.Query(`
		SELECT section_key, notes, score, updated_at
		FROM section_entry
		WHERE scorecard_id = $1
	`, sc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	stored := map[string]models.SectionEntry{}
	for rows.Next() {
		var e models.SectionEntry
		var score sql.NullInt64
		if err := rows.Scan(&e.SectionKey, &e.Notes, &score, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			e.Score = &v
		}
		stored[e.SectionKey] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sections: %w", err)
	}

	sections := models.SectionsFor(sc.Kind)
	entries := make([]models.SectionEntry, 0, len(sections))
	for _, s := range sections {
		e := stored[s.Key]
		e.SectionKey = s.Key
		e.Title = s.Title
		e.Term = s.Term
		e.Definition = definitions.Define(s.Term, "")
		e.Required = s.Required
		entries = append(entries, e)
	}
	return entries, nil
}

// NotesState collects the notes of every section into a keyed map
func NotesState(entries []models.SectionEntry) notes.State {
	state := notes.State{}
	for _, e := range entries {
		if e.Notes != "" {
			state[e.SectionKey] = e.Notes
		}
	}
	return state
}

// sectionEditor opens a notes editor over the stored notes. It starts on
// key when that names a section and on the first section otherwise.
func sectionEditor(entries []models.SectionEntry, key string, onChange func(section, text string)) notes.Editor {
	editor := notes.Editor{Notes: NotesState(entries), OnChange: onChange}
	if len(entries) > 0 {
		editor.Section = entries[0].SectionKey
	}
	for _, e := range entries {
		if e.SectionKey == key {
			return editor.SwitchTo(key)
		}
	}
	return editor
}

// Readiness evaluates whether sc can be submitted given its sections
func Readiness(sc models.Scorecard, entries []models.SectionEntry) submission.Readiness {
	in := submission.Input{
		Kind:       sc.Kind,
		Title:      sc.Title,
		State:      sc.State,
		BillNumber: sc.BillNumber,
		Entries:    make(map[string]submission.Entry, len(entries)),
	}
	if sc.PeriodStart != nil {
		in.PeriodStart = *sc.PeriodStart
	}
	if sc.PeriodEnd != nil {
		in.PeriodEnd = *sc.PeriodEnd
	}
	for _, e := range entries {
		in.Entries[e.SectionKey] = submission.Entry{Notes: e.Notes, Score: e.Score}
	}

	r := submission.Evaluate(in)
	if sc.Status != models.StatusDraft && sc.Status != models.StatusReturned {
		// Only one submission per review cycle
		return submission.Blocked("Scorecard is already " + sc.Status)
	}
	return r
}

// SaveNotes replaces the notes of one section
func SaveNotes(db *sql.DB, scorecardID, section, text string) error {
	return editSection(db, scorecardID, func(tx *sql.Tx, now time.Time) error {
		_, err := tx.Exec(`
			INSERT INTO section_entry (scorecard_id, section_key, notes, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (scorecard_id, section_key) DO UPDATE
			SET notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
		`, scorecardID, section, text, now)
		if err != nil {
			return fmt.Errorf("failed to save notes: %w", err)
		}
		return nil
	})
}

// SaveScore sets the score of one section
func SaveScore(db *sql.DB, scorecardID, section string, score int) error {
	return editSection(db, scorecardID, func(tx *sql.Tx, now time.Time) error {
		_, err := tx.Exec(`
			INSERT INTO section_entry (scorecard_id, section_key, score, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (scorecard_id, section_key) DO UPDATE
			SET score = EXCLUDED.score, updated_at = EXCLUDED.updated_at
		`, scorecardID, section, score, now)
		if err != nil {
			return fmt.Errorf("failed to save score: %w", err)
		}
		return nil
	})
}

// editSection runs write in the same transaction as a touch of the
// scorecard that only matches while it is draft or returned
func editSection(db *sql.DB, scorecardID string, write func(tx *sql.Tx, now time.Time) error) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.Exec(`
		UPDATE scorecard SET updated_at = $1
		WHERE id = $2 AND status IN ($3, $4)
	`, now, scorecardID, models.StatusDraft, models.StatusReturned)
	if err != nil {
		return fmt.Errorf("failed to update scorecard: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update scorecard: %w", err)
	}
	if n == 0 {
		return ErrScorecardLocked
	}

	if err := write(tx, now); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadAttachments lists attachment metadata for a scorecard, oldest first
func LoadAttachments(db *sql.DB, scorecardID string) ([]models.Attachment, error) {
	rows, err := db.Query(`
		SELECT id, scorecard_id, file_name, size_bytes, content_type, created_at
		FROM attachment
		WHERE scorecard_id = $1
		ORDER BY created_at, id
	`, scorecardID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attachments: %w", err)
	}
	defer rows.Close()

	attachments := []models.Attachment{}
	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.ScorecardID, &a.FileName, &a.SizeBytes, &a.ContentType, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		a.SizeDisplay = format.FormatFileSize(a.SizeBytes)
		attachments = append(attachments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attachments: %w", err)
	}
	return attachments, nil
}

// canView reports whether user may read sc
func canView(user models.User, sc models.Scorecard) bool {
	return sc.OwnerID == user.ID || isReviewer(user)
}

// isEditable reports whether sc still accepts changes from its owner
func isEditable(sc models.Scorecard) bool {
	return sc.Status == models.StatusDraft || sc.Status == models.StatusReturned
}

func parseScore(v string) (int, error) {
	score, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || score < models.MinScore || score > models.MaxScore {
		return 0, fmt.Errorf("score must be between %d and %d", models.MinScore, models.MaxScore)
	}
	return score, nil
}
