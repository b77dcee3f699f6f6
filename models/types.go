package models

import "time"

// Scorecard status constants
const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusReturned  = "returned"
)

// User role constants
const (
	RolePolicyAnalyst = "policy_analyst"
	RoleReviewer      = "reviewer"
	RoleAdmin         = "admin"
)

// Review decision constants
const (
	DecisionApprove = "approve"
	DecisionReturn  = "return"
)

// Score bounds for a section
const (
	MinScore = 1
	MaxScore = 5
)

// Request types

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type PasswordResetRequest struct {
	Email string `json:"email"`
}

type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type UpdateSettingsRequest struct {
	DisplayName string `json:"display_name"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type CreateScorecardRequest struct {
	Kind        string `json:"kind"`
	Title       string `json:"title"`
	State       string `json:"state"`
	BillNumber  string `json:"bill_number"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

// UpdateScorecardRequest replaces the editable metadata of a scorecard
type UpdateScorecardRequest struct {
	Title       string `json:"title"`
	State       string `json:"state"`
	BillNumber  string `json:"bill_number"`
	PeriodStart string `json:"period_start"`
	PeriodEnd   string `json:"period_end"`
}

// UpdateNotesRequest carries the full replacement text for one section
type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

type UpdateScoreRequest struct {
	Score int `json:"score"`
}

type ReviewRequest struct {
	Decision string `json:"decision"`
	Comment  string `json:"comment"`
}

type AddAttachmentRequest struct {
	FileName    string `json:"file_name"`
	SizeBytes   int64  `json:"size_bytes"`
	ContentType string `json:"content_type"`
}

// Response types

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type PasswordResetResponse struct {
	Message string `json:"message"`
	// ResetURL is only filled in when emulators are enabled
	ResetURL string `json:"reset_url,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CreateScorecardResponse struct {
	ScorecardID string `json:"scorecard_id"`
}

type ListScorecardsResponse struct {
	Scorecards []ScorecardSummary `json:"scorecards"`
	DateRange  string             `json:"date_range"`
}

type SubmitResponse struct {
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type ReviewResponse struct {
	ReviewID string `json:"review_id"`
	Status   string `json:"status"`
}

type AttachmentListResponse struct {
	Attachments []Attachment `json:"attachments"`
}

type DefinitionResponse struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Domain types

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	DisplayRole string    `json:"display_role"`
	CreatedAt   time.Time `json:"created_at"`
}

type Scorecard struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	Kind          string     `json:"kind"`
	Title         string     `json:"title"`
	State         string     `json:"state"`
	BillNumber    string     `json:"bill_number,omitempty"`
	BillID        string     `json:"bill_id"`
	PeriodStart   *string    `json:"period_start,omitempty"`
	PeriodEnd     *string    `json:"period_end,omitempty"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	ReviewComment *string    `json:"review_comment,omitempty"`
}

// ScorecardSummary is a list row with display strings filled in
type ScorecardSummary struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	BillID      string    `json:"bill_id"`
	Status      string    `json:"status"`
	Period      string    `json:"period"`
	UpdatedAt   time.Time `json:"updated_at"`
	UpdatedDate string    `json:"updated_date"`
}

// SectionEntry is the stored state of one section of a scorecard
type SectionEntry struct {
	SectionKey string    `json:"section_key"`
	Title      string    `json:"title"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Required   bool      `json:"required"`
	Notes      string    `json:"notes"`
	Score      *int      `json:"score,omitempty"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

type Attachment struct {
	ID          string    `json:"id"`
	ScorecardID string    `json:"scorecard_id"`
	FileName    string    `json:"file_name"`
	SizeBytes   int64     `json:"size_bytes"`
	SizeDisplay string    `json:"size_display"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type Review struct {
	ID          string    `json:"id"`
	ScorecardID string    `json:"scorecard_id"`
	ReviewerID  string    `json:"reviewer_id"`
	Decision    string    `json:"decision"`
	Comment     string    `json:"comment"`
	CreatedAt   time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	// Issues lists blocking reasons when a submission is refused
	Issues []string `json:"submission_issues,omitempty"`
}
