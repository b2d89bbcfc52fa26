// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package ticket

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tickethub/tickethub/internal/auth"
)

// SubjectDirectory is the slice of the credential store the ticket service
// needs: existence checks for reporters and assignees.
type SubjectDirectory interface {
	GetByID(ctx context.Context, id ulid.ULID) (*auth.Subject, error)
}

// CreateTicketInput carries the fields for ticket creation.
type CreateTicketInput struct {
	Name        string
	Description string
	ReporterID  ulid.ULID
	AssigneeID  *ulid.ULID
	StateID     ulid.ULID
}

// TicketUpdate carries a partial ticket update. Nil means "leave as is";
// ClearAssignee unassigns the ticket.
type TicketUpdate struct {
	Name          *string
	Description   *string
	AssigneeID    *ulid.ULID
	ClearAssignee bool
	StateID       *ulid.ULID
}

// Service coordinates ticket operations against the ticket and state
// repositories and the credential store.
type Service struct {
	tickets  TicketRepository
	states   StateRepository
	subjects SubjectDirectory
}

// NewService creates a ticket Service.
// Returns an error if any required dependency is nil.
func NewService(tickets TicketRepository, states StateRepository, subjects SubjectDirectory) (*Service, error) {
	if tickets == nil {
		return nil, oops.Errorf("tickets repository is required")
	}
	if states == nil {
		return nil, oops.Errorf("states repository is required")
	}
	if subjects == nil {
		return nil, oops.Errorf("subject directory is required")
	}
	return &Service{tickets: tickets, states: states, subjects: subjects}, nil
}

// Create validates references and persists a new ticket.
func (s *Service) Create(ctx context.Context, in CreateTicketInput) (*Ticket, error) {
	if err := ValidateTicketName(in.Name); err != nil {
		return nil, err
	}
	if err := s.checkState(ctx, in.StateID); err != nil {
		return nil, err
	}
	if in.AssigneeID != nil {
		if err := s.checkAssignee(ctx, *in.AssigneeID); err != nil {
			return nil, err
		}
	}

	t, err := NewTicket(in.Name, in.Description, in.ReporterID, in.AssigneeID, in.StateID)
	if err != nil {
		return nil, err
	}

	if err := s.tickets.Create(ctx, t); err != nil {
		return nil, oops.Code("TICKET_CREATE_FAILED").
			With("name", t.Name).
			Wrap(err)
	}
	return t, nil
}

// Get retrieves a ticket by id.
func (s *Service) Get(ctx context.Context, id ulid.ULID) (*Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

// List returns tickets, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*Ticket, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.tickets.List(ctx, limit, offset)
}

// ListByReporter returns tickets reported by a subject.
func (s *Service) ListByReporter(ctx context.Context, subjectID ulid.ULID) ([]*Ticket, error) {
	return s.tickets.ListByReporter(ctx, subjectID)
}

// ListByState returns tickets in a workflow state.
func (s *Service) ListByState(ctx context.Context, stateID ulid.ULID) ([]*Ticket, error) {
	return s.tickets.ListByState(ctx, stateID)
}

// Update applies a partial update. Changed references are re-validated.
func (s *Service) Update(ctx context.Context, id ulid.ULID, update TicketUpdate) (*Ticket, error) {
	t, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if err := ValidateTicketName(*update.Name); err != nil {
			return nil, err
		}
		t.Name = strings.TrimSpace(*update.Name)
	}
	if update.Description != nil {
		t.Description = *update.Description
	}
	switch {
	case update.ClearAssignee:
		t.AssigneeID = nil
	case update.AssigneeID != nil:
		if err := s.checkAssignee(ctx, *update.AssigneeID); err != nil {
			return nil, err
		}
		t.AssigneeID = update.AssigneeID
	}
	if update.StateID != nil {
		if err := s.checkState(ctx, *update.StateID); err != nil {
			return nil, err
		}
		t.StateID = *update.StateID
	}

	t.UpdatedAt = time.Now()
	if err := s.tickets.Update(ctx, t); err != nil {
		return nil, oops.Code("TICKET_UPDATE_FAILED").
			With("id", id.String()).
			Wrap(err)
	}
	return t, nil
}

// Remove deletes a ticket.
func (s *Service) Remove(ctx context.Context, id ulid.ULID) error {
	return s.tickets.Delete(ctx, id)
}

func (s *Service) checkState(ctx context.Context, stateID ulid.ULID) error {
	if _, err := s.states.GetByID(ctx, stateID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("TICKET_UNKNOWN_STATE").
				With("state_id", stateID.String()).
				Errorf("unknown workflow state")
		}
		return oops.Code("TICKET_STATE_CHECK_FAILED").
			With("state_id", stateID.String()).
			Wrap(err)
	}
	return nil
}

func (s *Service) checkAssignee(ctx context.Context, assigneeID ulid.ULID) error {
	if _, err := s.subjects.GetByID(ctx, assigneeID); err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return oops.Code("TICKET_UNKNOWN_ASSIGNEE").
				With("assignee_id", assigneeID.String()).
				Errorf("unknown assignee")
		}
		return oops.Code("TICKET_ASSIGNEE_CHECK_FAILED").
			With("assignee_id", assigneeID.String()).
			Wrap(err)
	}
	return nil
}

// StateService coordinates workflow-state operations.
type StateService struct {
	states StateRepository
}

// NewStateService creates a StateService.
func NewStateService(states StateRepository) (*StateService, error) {
	if states == nil {
		return nil, oops.Errorf("states repository is required")
	}
	return &StateService{states: states}, nil
}

// Create validates and persists a new workflow state.
func (s *StateService) Create(ctx context.Context, name string) (*State, error) {
	state, err := NewState(name)
	if err != nil {
		return nil, err
	}

	if err := s.states.Create(ctx, state); err != nil {
		if errors.Is(err, ErrStateNameTaken) {
			return nil, oops.Code("STATE_NAME_TAKEN").
				With("name", state.Name).
				Wrap(ErrStateNameTaken)
		}
		return nil, oops.Code("STATE_CREATE_FAILED").
			With("name", state.Name).
			Wrap(err)
	}
	return state, nil
}

// Get retrieves a state by id.
func (s *StateService) Get(ctx context.Context, id ulid.ULID) (*State, error) {
	return s.states.GetByID(ctx, id)
}

// List returns all workflow states.
func (s *StateService) List(ctx context.Context) ([]*State, error) {
	return s.states.List(ctx)
}

// Rename changes a state's name, re-validating uniqueness.
func (s *StateService) Rename(ctx context.Context, id ulid.ULID, name string) error {
	if err := ValidateStateName(name); err != nil {
		return err
	}

	if err := s.states.Rename(ctx, id, strings.TrimSpace(name)); err != nil {
		if errors.Is(err, ErrStateNameTaken) {
			return oops.Code("STATE_NAME_TAKEN").
				With("name", name).
				Wrap(ErrStateNameTaken)
		}
		return err
	}
	return nil
}

// Remove deletes a state. Refused while tickets reference it.
func (s *StateService) Remove(ctx context.Context, id ulid.ULID) error {
	if err := s.states.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrStateInUse) {
			return oops.Code("STATE_IN_USE").
				With("state_id", id.String()).
				Wrap(ErrStateInUse)
		}
		return err
	}
	return nil
}
