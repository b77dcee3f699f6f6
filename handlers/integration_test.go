// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Timfon/cntr-webapp-sub001/models"
	"github.com/Timfon/cntr-webapp-sub001/testutil"
)

// newTestMux wires the handlers the way the router does
func newTestMux(t *testing.T) (*http.ServeMux, func(method, path string, body interface{}, token string) *httptest.ResponseRecorder) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	accounts := NewAccountHandler(db, cfg, noSiteURL)
	scorecards := NewScorecardHandler(db, cfg)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/sign-up", accounts.SignUp)
	mux.HandleFunc("POST /auth/sign-in", accounts.SignIn)
	mux.HandleFunc("POST /scorecards", scorecards.CreateScorecard)
	mux.HandleFunc("GET /scorecards/{id}", scorecards.GetScorecard)
	mux.HandleFunc("PUT /scorecards/{id}", scorecards.UpdateScorecard)
	mux.HandleFunc("PUT /scorecards/{id}/notes/{section}", scorecards.UpdateNotes)
	mux.HandleFunc("PUT /scorecards/{id}/scores/{section}", scorecards.UpdateScore)
	mux.HandleFunc("GET /scorecards/{id}/readiness", scorecards.GetReadiness)
	mux.HandleFunc("POST /scorecards/{id}/submit", scorecards.SubmitScorecard)
	mux.HandleFunc("POST /scorecards/{id}/review", scorecards.ReviewScorecard)

	// Reviewers are provisioned directly; sign-up only creates analysts
	testutil.CreateTestUser(t, db, "reviewer@example.com", models.RoleReviewer)

	do := func(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
		headers := map[string]string{}
		if token != "" {
			headers["Authorization"] = "Bearer " + token
		}
		req := testutil.MakeRequest(method, path, body, headers)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}
	return mux, do
}

func TestFullScorecardWorkflow(t *testing.T) {
	_, do := newTestMux(t)

	// Step 1: Analyst signs up
	w := do("POST", "/auth/sign-up", models.SignUpRequest{
		Email:       "analyst@example.com",
		Password:    "long-enough-password",
		DisplayName: "Analyst",
	}, "")
	testutil.AssertStatus(t, w, http.StatusCreated)
	var analyst models.SessionResponse
	testutil.AssertJSON(t, w, &analyst)

	// Step 2: Reviewer signs in
	w = do("POST", "/auth/sign-in", models.SignInRequest{
		Email:    "reviewer@example.com",
		Password: testutil.TestPassword,
	}, "")
	testutil.AssertStatus(t, w, http.StatusOK)
	var reviewer models.SessionResponse
	testutil.AssertJSON(t, w, &reviewer)

	// Step 3: Create a scorecard
	w = do("POST", "/scorecards", models.CreateScorecardRequest{
		Kind:        models.KindAIPolicy,
		Title:       "Colorado AI Act",
		State:       "CO",
		BillNumber:  "SB 205",
		PeriodStart: "2024-05-01",
		PeriodEnd:   "2024-04-01",
	}, analyst.Token)
	testutil.AssertStatus(t, w, http.StatusCreated)
	var created models.CreateScorecardResponse
	testutil.AssertJSON(t, w, &created)
	base := "/scorecards/" + created.ScorecardID

	// Step 4: Submission is blocked
	w = do("POST", base+"/submit", nil, analyst.Token)
	testutil.AssertStatus(t, w, http.StatusConflict)
	var blocked models.ErrorResponse
	testutil.AssertJSON(t, w, &blocked)
	if len(blocked.Issues) == 0 || blocked.Issues[0] != "Assessment period end must not be before its start" {
		t.Fatalf("Expected period order issue first, got %v", blocked.Issues)
	}

	// Step 5: Fix the period and fill every required section
	w = do("PUT", base, models.UpdateScorecardRequest{
		Title:       "Colorado AI Act",
		State:       "CO",
		BillNumber:  "SB 205",
		PeriodStart: "2024-04-01",
		PeriodEnd:   "2024-05-01",
	}, analyst.Token)
	testutil.AssertStatus(t, w, http.StatusOK)

	for _, s := range models.SectionsFor(models.KindAIPolicy) {
		if !s.Required {
			continue
		}
		w = do("PUT", base+"/notes/"+s.Key, models.UpdateNotesRequest{Notes: "Assessed " + s.Title}, analyst.Token)
		testutil.AssertStatus(t, w, http.StatusOK)
		w = do("PUT", base+"/scores/"+s.Key, models.UpdateScoreRequest{Score: 4}, analyst.Token)
		testutil.AssertStatus(t, w, http.StatusOK)
	}

	w = do("GET", base+"/readiness", nil, analyst.Token)
	testutil.AssertStatus(t, w, http.StatusOK)
	var ready struct {
		CanSubmit bool     `json:"can_submit"`
		Issues    []string `json:"submission_issues"`
	}
	testutil.AssertJSON(t, w, &ready)
	if !ready.CanSubmit {
		t.Fatalf("Expected scorecard to be ready, issues: %v", ready.Issues)
	}

	// Step 6: Submit
	w = do("POST", base+"/submit", nil, analyst.Token)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Step 7: Edits are locked while under review
	w = do("PUT", base+"/notes/transparency", models.UpdateNotesRequest{Notes: "late"}, analyst.Token)
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Step 8: Reviewer returns it
	w = do("POST", base+"/review", models.ReviewRequest{
		Decision: models.DecisionReturn,
		Comment:  "Expand the transparency section",
	}, reviewer.Token)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Step 9: Analyst revises and resubmits
	w = do("PUT", base+"/notes/transparency", models.UpdateNotesRequest{Notes: "Disclosure duties in 6-1-1702"}, analyst.Token)
	testutil.AssertStatus(t, w, http.StatusOK)
	w = do("POST", base+"/submit", nil, analyst.Token)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Step 10: Reviewer approves
	w = do("POST", base+"/review", models.ReviewRequest{Decision: models.DecisionApprove}, reviewer.Token)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = do("GET", base, nil, analyst.Token)
	testutil.AssertStatus(t, w, http.StatusOK)
	var sc models.Scorecard
	testutil.AssertJSON(t, w, &sc)
	if sc.Status != models.StatusApproved {
		t.Errorf("Expected final status 'approved', got %q", sc.Status)
	}
	if sc.SubmittedAt == nil || sc.ReviewedAt == nil {
		t.Error("Expected submitted_at and reviewed_at to be set")
	}

	// Approved scorecards stay locked
	w = do("POST", base+"/submit", nil, analyst.Token)
	testutil.AssertStatus(t, w, http.StatusConflict)
}
