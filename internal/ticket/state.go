// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package ticket

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// State name constraint.
const MaxStateNameLength = 40

// State is a workflow state a ticket can be in ("open", "in progress", ...).
// State names are unique (case-insensitive).
type State struct {
	ID        ulid.ULID
	Name      string
	CreatedAt time.Time
}

// NewState creates a validated State instance.
func NewState(name string) (*State, error) {
	if err := ValidateStateName(name); err != nil {
		return nil, err
	}
	return &State{
		ID:        ulid.Make(),
		Name:      strings.TrimSpace(name),
		CreatedAt: time.Now(),
	}, nil
}

// ValidateStateName validates a workflow state name.
func ValidateStateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return oops.Code("STATE_INVALID_NAME").Errorf("state name cannot be empty")
	}
	if len(trimmed) > MaxStateNameLength {
		return oops.Code("STATE_INVALID_NAME").
			With("max", MaxStateNameLength).
			Errorf("state name must be at most %d characters", MaxStateNameLength)
	}
	return nil
}

// StateRepository manages workflow-state persistence. Name uniqueness is a
// store constraint; Create and Rename surface violations as
// ErrStateNameTaken, and Delete surfaces referencing tickets as ErrStateInUse.
type StateRepository interface {
	// Create stores a new state.
	Create(ctx context.Context, s *State) error

	// GetByID retrieves a state by id.
	GetByID(ctx context.Context, id ulid.ULID) (*State, error)

	// GetByName retrieves a state by name (case-insensitive).
	GetByName(ctx context.Context, name string) (*State, error)

	// List returns all states in creation order.
	List(ctx context.Context) ([]*State, error)

	// Rename changes a state's name.
	Rename(ctx context.Context, id ulid.ULID, name string) error

	// Delete removes a state. Fails with ErrStateInUse while tickets
	// reference it.
	Delete(ctx context.Context, id ulid.ULID) error
}
