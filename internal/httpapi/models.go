// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package httpapi

import (
	"time"

	"github.com/tickethub/tickethub/internal/auth"
	"github.com/tickethub/tickethub/internal/ticket"
)

// ErrorResponse is the JSON body for all error replies.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the freshly issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	SubjectID string    `json:"subject_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LogoutResponse reports whether a live session was actually terminated.
type LogoutResponse struct {
	Removed bool `json:"removed"`
}

// SubjectResponse is the external projection of a subject.
type SubjectResponse = auth.RedactedSubject

// UpdateProfileRequest is the body for PATCH /subjects/{subjectID}.
// Nil fields are left unchanged.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Email       *string `json:"email"`
}

// ChangePasswordRequest is the body for POST /subjects/{subjectID}/password.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// CreateTicketRequest is the body for POST /tickets. The reporter is always
// the authenticated subject.
type CreateTicketRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	AssigneeID  *string `json:"assignee_id"`
	StateID     string  `json:"state_id"`
}

// UpdateTicketRequest is the body for PATCH /tickets/{ticketID}.
// Nil fields are left unchanged; ClearAssignee unassigns the ticket.
type UpdateTicketRequest struct {
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	AssigneeID    *string `json:"assignee_id"`
	ClearAssignee bool    `json:"clear_assignee"`
	StateID       *string `json:"state_id"`
}

// TicketResponse is the external projection of a ticket.
type TicketResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ReporterID  string    `json:"reporter_id"`
	AssigneeID  *string   `json:"assignee_id"`
	StateID     string    `json:"state_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ticketToAPI(t *ticket.Ticket) TicketResponse {
	resp := TicketResponse{
		ID:          t.ID.String(),
		Name:        t.Name,
		Description: t.Description,
		ReporterID:  t.ReporterID.String(),
		StateID:     t.StateID.String(),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssigneeID != nil {
		s := t.AssigneeID.String()
		resp.AssigneeID = &s
	}
	return resp
}

func ticketsToAPI(tickets []*ticket.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ticketToAPI(t))
	}
	return out
}

// StateRequest is the body for POST /states and PATCH /states/{stateID}.
type StateRequest struct {
	Name string `json:"name"`
}

// StateResponse is the external projection of a workflow state.
type StateResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func stateToAPI(s *ticket.State) StateResponse {
	return StateResponse{
		ID:        s.ID.String(),
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
	}
}

func statesToAPI(states []*ticket.State) []StateResponse {
	out := make([]StateResponse, 0, len(states))
	for _, s := range states {
		out = append(out, stateToAPI(s))
	}
	return out
}

func subjectsToAPI(subjects []*auth.Subject) []SubjectResponse {
	out := make([]SubjectResponse, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, s.Redacted())
	}
	return out
}
