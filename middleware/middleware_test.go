// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Timfon/cntr-webapp-sub001/models"
)

// captureLogs routes slog output to a buffer for the rest of the test
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

// logLines decodes every JSON log record written so far
func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("Bad log line %q: %v", line, err)
		}
		lines = append(lines, rec)
	}
	return lines
}

func TestWithLogging(t *testing.T) {
	buf := captureLogs(t)

	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		IssuesResponse(w, http.StatusConflict, "Scorecard cannot be submitted", []string{"Title is required"})
	})

	req := httptest.NewRequest("POST", "/scorecards/sc-1/submit", nil)
	req.RemoteAddr = "203.0.113.7:4242"
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Title is required") {
		t.Errorf("Expected handler body to pass through, got %s", w.Body.String())
	}

	lines := logLines(t, buf)
	if len(lines) != 2 {
		t.Fatalf("Expected start and completion records, got %d", len(lines))
	}

	started, completed := lines[0], lines[1]
	if started["msg"] != "request started" || started["remote"] != "203.0.113.7:4242" {
		t.Errorf("Unexpected start record: %v", started)
	}
	if completed["msg"] != "request completed" || completed["path"] != "/scorecards/sc-1/submit" {
		t.Errorf("Unexpected completion record: %v", completed)
	}
	if completed["status"] != float64(http.StatusConflict) {
		t.Errorf("Expected status 409 in log, got %v", completed["status"])
	}
	if _, ok := completed["duration_ms"]; !ok {
		t.Error("Expected duration_ms in completion record")
	}
}

func TestWithLogging_DefaultStatus(t *testing.T) {
	buf := captureLogs(t)

	// Handlers that only write a body get an implicit 200
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html></html>"))
	})

	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest("GET", "/app/scorecards", nil))

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	lines := logLines(t, buf)
	if got := lines[len(lines)-1]["status"]; got != float64(http.StatusOK) {
		t.Errorf("Expected logged status 200, got %v", got)
	}
}

func TestWithLogging_RecordsStatus(t *testing.T) {
	buf := captureLogs(t)

	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest("GET", "/scorecards", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusTeapot {
		t.Errorf("Expected status 418, got %d", w.Code)
	}
	if !strings.Contains(buf.String(), `"status":418`) {
		t.Errorf("Expected completion log to carry status, got %s", buf.String())
	}
}

func TestJSONResponse(t *testing.T) {
	submittedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		statusCode int
		data       interface{}
		expected   string
	}{
		{
			name:       "created scorecard",
			statusCode: http.StatusCreated,
			data:       models.CreateScorecardResponse{ScorecardID: "sc-1"},
			expected:   `{"scorecard_id":"sc-1"}`,
		},
		{
			name:       "submitted",
			statusCode: http.StatusOK,
			data:       models.SubmitResponse{Status: models.StatusSubmitted, SubmittedAt: submittedAt},
			expected:   `{"status":"submitted","submitted_at":"2024-05-01T12:00:00Z"}`,
		},
		{
			name:       "empty listing keeps the array",
			statusCode: http.StatusOK,
			data:       models.ListScorecardsResponse{Scorecards: []models.ScorecardSummary{}, DateRange: "Select Date Range"},
			expected:   `{"scorecards":[],"date_range":"Select Date Range"}`,
		},
		{
			name:       "glossary entry",
			statusCode: http.StatusOK,
			data:       models.DefinitionResponse{Term: "transparency", Definition: "Openness"},
			expected:   `{"term":"transparency","definition":"Openness"}`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			JSONResponse(w, tc.statusCode, tc.data)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}
			if ct := w.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type 'application/json', got '%s'", ct)
			}
			if body := strings.TrimSpace(w.Body.String()); body != tc.expected {
				t.Errorf("Expected body '%s', got '%s'", tc.expected, body)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	testCases := []struct {
		statusCode int
		message    string
		expected   string
	}{
		{http.StatusBadRequest, "score must be between 1 and 5", "Bad Request"},
		{http.StatusUnauthorized, "session expired", "Unauthorized"},
		{http.StatusForbidden, "Not your scorecard", "Forbidden"},
		{http.StatusConflict, "Scorecard is no longer editable", "Conflict"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			w := httptest.NewRecorder()

			ErrorResponse(w, tc.statusCode, tc.message)

			if w.Code != tc.statusCode {
				t.Errorf("Expected status %d, got %d", tc.statusCode, w.Code)
			}

			body := w.Body.String()
			if strings.Contains(body, "submission_issues") {
				t.Errorf("Expected no submission_issues on a plain error, got %s", body)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(strings.NewReader(body)).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if resp.Error != tc.expected || resp.Message != tc.message {
				t.Errorf("Unexpected error response: %+v", resp)
			}
		})
	}
}

func TestIssuesResponse(t *testing.T) {
	w := httptest.NewRecorder()
	IssuesResponse(w, http.StatusConflict, "not ready", []string{"Title is required", "State is required"})

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}

	expected := `{"error":"Conflict","message":"not ready","submission_issues":["Title is required","State is required"]}`
	if body := strings.TrimSpace(w.Body.String()); body != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, body)
	}
}

func TestIssuesResponse_KeepsOrder(t *testing.T) {
	// Metadata issues come first, then sections in catalog order
	issues := []string{
		"Bill number is required",
		"Assessment period is required",
		`Section "Bill Status" needs notes`,
		`Section "Bill Status" needs a score`,
		`Section "Accountability" needs notes`,
		`Section "Audits" needs a score`,
	}

	w := httptest.NewRecorder()
	IssuesResponse(w, http.StatusConflict, "Scorecard cannot be submitted", issues)

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Issues) != len(issues) {
		t.Fatalf("Expected %d issues, got %d", len(issues), len(resp.Issues))
	}
	for i := range issues {
		if resp.Issues[i] != issues[i] {
			t.Errorf("Issue %d: expected %q, got %q", i, issues[i], resp.Issues[i])
		}
	}
}

func TestParseJSONBody(t *testing.T) {
	t.Run("notes text is kept verbatim", func(t *testing.T) {
		text := "Line one\n\n  • indented bullet\t\"quoted\""
		raw, _ := json.Marshal(models.UpdateNotesRequest{Notes: text})
		req := httptest.NewRequest("PUT", "/scorecards/sc-1/notes/transparency", bytes.NewReader(raw))

		var parsed models.UpdateNotesRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.Notes != text {
			t.Errorf("Expected notes %q, got %q", text, parsed.Notes)
		}
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		body := `{"decision":"return","comment":"Cite the statute","reviewer_id":"ignored"}`
		req := httptest.NewRequest("POST", "/scorecards/sc-1/review", strings.NewReader(body))

		var parsed models.ReviewRequest
		if err := ParseJSONBody(req, &parsed); err != nil {
			t.Fatalf("Expected no error, got: %v", err)
		}
		if parsed.Decision != models.DecisionReturn || parsed.Comment != "Cite the statute" {
			t.Errorf("Unexpected review request: %+v", parsed)
		}
	})

	t.Run("score of the wrong type", func(t *testing.T) {
		req := httptest.NewRequest("PUT", "/scorecards/sc-1/scores/audits", strings.NewReader(`{"score":"four"}`))

		var parsed models.UpdateScoreRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for non-numeric score")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/scorecards", strings.NewReader(""))

		var parsed models.CreateScorecardRequest
		if err := ParseJSONBody(req, &parsed); err == nil {
			t.Error("Expected error for empty body")
		}
	})
}

func TestCORS(t *testing.T) {
	// next echoes the session token it sees
	var reached bool
	corsHandler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.Write([]byte(SessionToken(r)))
	}))

	t.Run("preflight never reaches the handler", func(t *testing.T) {
		reached = false
		req := httptest.NewRequest("OPTIONS", "/scorecards/sc-1/notes/transparency", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "PUT")
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-token"})
		w := httptest.NewRecorder()

		corsHandler.ServeHTTP(w, req)

		if reached {
			t.Error("Expected preflight to stop before the handler")
		}
		if w.Code != http.StatusOK || w.Body.Len() != 0 {
			t.Errorf("Expected empty 200, got %d %q", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PUT") {
			t.Error("Expected PUT in allowed methods for notes edits")
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Headers"), "Authorization") {
			t.Error("Expected Authorization in allowed headers")
		}
	})

	t.Run("credentialed request keeps its session", func(t *testing.T) {
		testCases := []struct {
			name     string
			header   string
			cookie   string
			expected string
		}{
			{"bearer wins over cookie", "Bearer header-token", "cookie-token", "header-token"},
			{"cookie only", "", "cookie-token", "cookie-token"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				req := httptest.NewRequest("GET", "/scorecards", nil)
				req.Header.Set("Origin", "https://scorecards.example.org")
				if tc.header != "" {
					req.Header.Set("Authorization", tc.header)
				}
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tc.cookie})
				w := httptest.NewRecorder()

				corsHandler.ServeHTTP(w, req)

				if w.Body.String() != tc.expected {
					t.Errorf("Expected handler to see token %q, got %q", tc.expected, w.Body.String())
				}
				if w.Header().Get("Access-Control-Allow-Origin") != "https://scorecards.example.org" {
					t.Error("Expected the origin to be reflected")
				}
				if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
					t.Error("Expected credentials to be allowed for cookie sessions")
				}
			})
		}
	})

	t.Run("no origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		corsHandler.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

		if w.Header().Get("Access-Control-Allow-Origin") != "*" {
			t.Error("Expected Access-Control-Allow-Origin to default to '*'")
		}
	})
}

func TestGetClientIP(t *testing.T) {
	testCases := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		expectedIP string
	}{
		{"proxy chain keeps the client", map[string]string{"X-Forwarded-For": "198.51.100.23, 10.0.0.2"}, "10.0.0.2:443", "198.51.100.23"},
		{"forwarded beats real-ip", map[string]string{"X-Forwarded-For": "198.51.100.23", "X-Real-IP": "203.0.113.9"}, "10.0.0.2:443", "198.51.100.23"},
		{"real-ip from nginx", map[string]string{"X-Real-IP": "203.0.113.9"}, "10.0.0.2:443", "203.0.113.9"},
		{"direct connection", nil, "192.0.2.44:51000", "192.0.2.44"},
		{"direct IPv6 connection", nil, "[2001:db8::5]:51000", "[2001:db8::5]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/auth/password-reset", nil)
			req.RemoteAddr = tc.remoteAddr
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			if got := GetClientIP(req); got != tc.expectedIP {
				t.Errorf("Expected IP '%s', got '%s'", tc.expectedIP, got)
			}
		})
	}
}

func TestSessionToken(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		cookie   string
		expected string
	}{
		{"bearer header", "Bearer abc123", "", "abc123"},
		{"header wins over cookie", "Bearer abc123", "cookie-token", "abc123"},
		{"cookie fallback", "", "cookie-token", "cookie-token"},
		{"non-bearer header falls back to cookie", "Basic dXNlcjpwYXNz", "cookie-token", "cookie-token"},
		{"non-bearer header ignored", "Basic dXNlcjpwYXNz", "", ""},
		{"nothing", "", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/settings", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tc.cookie})
			}

			if got := SessionToken(req); got != tc.expected {
				t.Errorf("Expected token '%s', got '%s'", tc.expected, got)
			}
		})
	}
}

func TestSessionCookie(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/auth/sign-in", nil)
	SetSessionCookie(w, req, "tok", time.Now().Add(time.Hour))

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || cookies[0].Value != "tok" || !cookies[0].HttpOnly {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
	if cookies[0].SameSite != http.SameSiteLaxMode {
		t.Errorf("Expected SameSite=Lax, got %v", cookies[0].SameSite)
	}

	w = httptest.NewRecorder()
	ClearSessionCookie(w)
	cookies = w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Fatalf("expected expiring cookie, got %+v", cookies)
	}
}
