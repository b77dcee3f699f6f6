// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package views

import (
	"embed"
	"html/template"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/Timfon/cntr-webapp-sub001/definitions"
	"github.com/Timfon/cntr-webapp-sub001/format"
	"github.com/Timfon/cntr-webapp-sub001/models"
	"github.com/Timfon/cntr-webapp-sub001/submission"
)

//go:embed templates/*.html
var files embed.FS

var templates = template.Must(template.New("").Funcs(Funcs()).ParseFS(files, "templates/*.html"))

// Funcs returns the helpers available to every page template
func Funcs() template.FuncMap {
	return template.FuncMap{
		"formatDate": format.FormatDatePtr,
		"formatTime": format.FormatTime,
		"truncate":   format.Truncate,
		"fileSize":   format.FormatFileSize,
		"role":       format.FormatRole,
		"definition": definitions.Define,
		"ago":        humanize.Time,
		"plural":     english.Plural,
		"deref": func(p *int) int {
			if p == nil {
				return 0
			}
			return *p
		},
		"scores": func() []int {
			s := make([]int, 0, models.MaxScore-models.MinScore+1)
			for n := models.MinScore; n <= models.MaxScore; n++ {
				s = append(s, n)
			}
			return s
		},
		"statuses": func() []string {
			return []string{models.StatusDraft, models.StatusSubmitted, models.StatusApproved, models.StatusReturned}
		},
		"kinds": func() []string {
			return []string{models.KindAIPolicy, models.KindGovernmentAccountability}
		},
	}
}

// Filter echoes the list filters back into the form
type Filter struct {
	Status string
	Kind   string
	State  string
	From   string
	To     string
	Query  string
}

// ListPage is the data for list.html
type ListPage struct {
	Title      string
	User       models.User
	Filter     Filter
	DateRange  string
	Scorecards []models.ScorecardSummary
}

// ScorecardPage is the data for scorecard.html
type ScorecardPage struct {
	Title          string
	User           models.User
	Scorecard      models.Scorecard
	Sections       []models.SectionEntry
	Current        models.SectionEntry
	Notes          string
	Banner         *submission.Banner
	SubmitDisabled bool
	Owner          bool
	Editable       bool
	Attachments    []models.Attachment
	Notice         string
}

// RenderList writes the scorecard list page
func RenderList(w io.Writer, page ListPage) error {
	if page.Title == "" {
		page.Title = "Scorecards"
	}
	return templates.ExecuteTemplate(w, "list.html", page)
}

// RenderScorecard writes the single scorecard page
func RenderScorecard(w io.Writer, page ScorecardPage) error {
	if page.Title == "" {
		page.Title = format.Truncate(page.Scorecard.Title)
	}
	return templates.ExecuteTemplate(w, "scorecard.html", page)
}
