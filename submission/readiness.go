// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package submission

import (
	"fmt"
	"strings"
	"time"

	"github.com/Timfon/cntr-webapp-sub001/models"
)

// BannerHeader opens the warning shown while a scorecard is blocked
const BannerHeader = "This scorecard cannot be submitted yet. Please resolve the following issues:"

// Readiness says whether a scorecard may be submitted and, if not, why.
type Readiness struct {
	CanSubmit bool     `json:"can_submit"`
	Issues    []string `json:"submission_issues"`
}

// Banner is the warning rendered for a blocked submission.
// It has no dismiss action.
type Banner struct {
	Header string
	Issues []string
}

// Entry is the stored notes and score for one section
type Entry struct {
	Notes string
	Score *int
}

// Input is everything Evaluate looks at
type Input struct {
	Kind        string
	Title       string
	State       string
	BillNumber  string
	PeriodStart string
	PeriodEnd   string
	Entries     map[string]Entry
}

// Evaluate checks a scorecard and lists blocking issues in a fixed order:
// metadata first, then each required section in catalog order.
func Evaluate(in Input) Readiness {
	issues := []string{}

	if strings.TrimSpace(in.Title) == "" {
		issues = append(issues, "Title is required")
	}
	if strings.TrimSpace(in.State) == "" {
		issues = append(issues, "State is required")
	}
	if in.Kind == models.KindGovernmentAccountability && strings.TrimSpace(in.BillNumber) == "" {
		issues = append(issues, "Bill number is required")
	}

	if in.PeriodStart == "" || in.PeriodEnd == "" {
		issues = append(issues, "Assessment period is required")
	} else {
		start, errStart := time.Parse("2006-01-02", in.PeriodStart)
		end, errEnd := time.Parse("2006-01-02", in.PeriodEnd)
		switch {
		case errStart != nil || errEnd != nil:
			issues = append(issues, "Assessment period dates must be YYYY-MM-DD")
		case end.Before(start):
			issues = append(issues, "Assessment period end must not be before its start")
		}
	}

	for _, section := range models.SectionsFor(in.Kind) {
		if !section.Required {
			continue
		}
		entry := in.Entries[section.Key]
		if strings.TrimSpace(entry.Notes) == "" {
			issues = append(issues, fmt.Sprintf("Section %q needs notes", section.Title))
		}
		if entry.Score == nil {
			issues = append(issues, fmt.Sprintf("Section %q needs a score", section.Title))
		}
	}

	return Readiness{
		CanSubmit: len(issues) == 0,
		Issues:    issues,
	}
}

// Blocked builds a Readiness that refuses submission for the given reasons
func Blocked(issues ...string) Readiness {
	return Readiness{CanSubmit: false, Issues: issues}
}

// Banner returns nil when submission is allowed, whatever Issues holds.
// Otherwise the issues are kept verbatim and in order.
func (r Readiness) Banner() *Banner {
	if r.CanSubmit {
		return nil
	}
	issues := make([]string, len(r.Issues))
	copy(issues, r.Issues)
	return &Banner{Header: BannerHeader, Issues: issues}
}

// ButtonDisabled reports whether the submit control is disabled
func (r Readiness) ButtonDisabled() bool {
	return !r.CanSubmit
}

// Dispatch runs submit only when submission is allowed.
// A blocked call returns (false, nil) and never invokes submit.
func (r Readiness) Dispatch(submit func() error) (bool, error) {
	if !r.CanSubmit || submit == nil {
		return false, nil
	}
	return true, submit()
}
