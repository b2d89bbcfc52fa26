// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

// Package ticket provides the ticket and workflow-state domain of TicketHub.
package ticket

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Ticket name constraint.
const MaxTicketNameLength = 120

// Sentinel errors for the ticket domain.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStateNameTaken is returned when a state with the name already exists.
	ErrStateNameTaken = errors.New("state name already in use")

	// ErrStateInUse is returned when deleting a state that tickets reference.
	ErrStateInUse = errors.New("state is referenced by tickets")
)

// Ticket is a work item reported by a subject, optionally assigned to one,
// and always in exactly one workflow state.
type Ticket struct {
	ID          ulid.ULID
	Name        string
	Description string
	ReporterID  ulid.ULID
	AssigneeID  *ulid.ULID // nil when unassigned
	StateID     ulid.ULID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTicket creates a validated Ticket instance.
func NewTicket(name, description string, reporterID ulid.ULID, assigneeID *ulid.ULID, stateID ulid.ULID) (*Ticket, error) {
	if err := ValidateTicketName(name); err != nil {
		return nil, err
	}
	if reporterID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("TICKET_INVALID_REPORTER").Errorf("reporter id cannot be zero")
	}
	if stateID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("TICKET_INVALID_STATE").Errorf("state id cannot be zero")
	}

	now := time.Now()
	return &Ticket{
		ID:          ulid.Make(),
		Name:        strings.TrimSpace(name),
		Description: description,
		ReporterID:  reporterID,
		AssigneeID:  assigneeID,
		StateID:     stateID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// ValidateTicketName validates a ticket name.
func ValidateTicketName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return oops.Code("TICKET_INVALID_NAME").Errorf("ticket name cannot be empty")
	}
	if len(trimmed) > MaxTicketNameLength {
		return oops.Code("TICKET_INVALID_NAME").
			With("max", MaxTicketNameLength).
			Errorf("ticket name must be at most %d characters", MaxTicketNameLength)
	}
	return nil
}

// TicketRepository manages ticket persistence.
type TicketRepository interface {
	// Create stores a new ticket.
	Create(ctx context.Context, t *Ticket) error

	// GetByID retrieves a ticket by id.
	GetByID(ctx context.Context, id ulid.ULID) (*Ticket, error)

	// List returns tickets, newest first.
	List(ctx context.Context, limit, offset int) ([]*Ticket, error)

	// ListByReporter returns tickets reported by a subject, newest first.
	ListByReporter(ctx context.Context, subjectID ulid.ULID) ([]*Ticket, error)

	// ListByState returns tickets in a workflow state, newest first.
	ListByState(ctx context.Context, stateID ulid.ULID) ([]*Ticket, error)

	// Update updates an existing ticket.
	Update(ctx context.Context, t *Ticket) error

	// Delete removes a ticket.
	Delete(ctx context.Context, id ulid.ULID) error
}
