// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SignUpRequest, SignInRequest: email, password
  - PasswordResetRequest, PasswordResetConfirmRequest
  - UpdateSettingsRequest, ChangePasswordRequest
  - CreateScorecardRequest, UpdateScorecardRequest
  - UpdateNotesRequest: full replacement text for one section
  - UpdateScoreRequest: score (1-5)
  - ReviewRequest: decision, comment
  - AddAttachmentRequest: file_name, size_bytes, content_type

# Response Types

  - SessionResponse: token, expires_at, user
  - ListScorecardsResponse: scorecards, date_range
  - SubmitResponse, ReviewResponse
  - ErrorResponse: error, message, submission_issues

# Domain Types

  - User: account with role and display_role
  - Scorecard: assessment record and lifecycle state
  - SectionEntry: notes and score for one section
  - Attachment: file metadata
  - Review: reviewer decision

# Sections

Each scorecard kind has an ordered section catalog:

	sections := models.SectionsFor(models.KindAIPolicy)

# Constants

Status values:

	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusApproved  = "approved"
	StatusReturned  = "returned"

Roles:

	RolePolicyAnalyst = "policy_analyst"
	RoleReviewer      = "reviewer"
	RoleAdmin         = "admin"
*/
package models
