// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package ticket_test

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tickethub/tickethub/internal/auth"
	"github.com/tickethub/tickethub/internal/ticket"
	"github.com/tickethub/tickethub/internal/ticket/mocks"
	"github.com/tickethub/tickethub/pkg/errutil"
)

func newTestService(t *testing.T) (*ticket.Service, *mocks.MockTicketRepository, *mocks.MockStateRepository, *mocks.MockSubjectDirectory) {
	t.Helper()

	tickets := mocks.NewMockTicketRepository(t)
	states := mocks.NewMockStateRepository(t)
	subjects := mocks.NewMockSubjectDirectory(t)

	svc, err := ticket.NewService(tickets, states, subjects)
	require.NoError(t, err)
	return svc, tickets, states, subjects
}

func testSubject(t *testing.T) *auth.Subject {
	t.Helper()
	subject, err := auth.NewSubject("Ada", "ada@example.com", "digest")
	require.NoError(t, err)
	return subject
}

func testState(t *testing.T, name string) *ticket.State {
	t.Helper()
	state, err := ticket.NewState(name)
	require.NoError(t, err)
	return state
}

func TestNewService(t *testing.T) {
	tickets := mocks.NewMockTicketRepository(t)
	states := mocks.NewMockStateRepository(t)
	subjects := mocks.NewMockSubjectDirectory(t)

	tests := []struct {
		name    string
		build   func() (*ticket.Service, error)
		wantErr string
	}{
		{
			name:    "nil tickets",
			build:   func() (*ticket.Service, error) { return ticket.NewService(nil, states, subjects) },
			wantErr: "tickets repository is required",
		},
		{
			name:    "nil states",
			build:   func() (*ticket.Service, error) { return ticket.NewService(tickets, nil, subjects) },
			wantErr: "states repository is required",
		},
		{
			name:    "nil subjects",
			build:   func() (*ticket.Service, error) { return ticket.NewService(tickets, states, nil) },
			wantErr: "subject directory is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates ticket", func(t *testing.T) {
		svc, tickets, states, _ := newTestService(t)
		state := testState(t, "Open")
		reporterID := ulid.Make()

		states.On("GetByID", ctx, state.ID).Return(state, nil)
		tickets.On("Create", ctx, mock.AnythingOfType("*ticket.Ticket")).Return(nil)

		tk, err := svc.Create(ctx, ticket.CreateTicketInput{
			Name:       "Broken login",
			ReporterID: reporterID,
			StateID:    state.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "Broken login", tk.Name)
		assert.Equal(t, reporterID, tk.ReporterID)
		assert.Nil(t, tk.AssigneeID)
	})

	t.Run("checks assignee exists", func(t *testing.T) {
		svc, tickets, states, subjects := newTestService(t)
		state := testState(t, "Open")
		assignee := testSubject(t)

		states.On("GetByID", ctx, state.ID).Return(state, nil)
		subjects.On("GetByID", ctx, assignee.ID).Return(assignee, nil)
		tickets.On("Create", ctx, mock.AnythingOfType("*ticket.Ticket")).Return(nil)

		tk, err := svc.Create(ctx, ticket.CreateTicketInput{
			Name:       "Slow search",
			ReporterID: ulid.Make(),
			AssigneeID: &assignee.ID,
			StateID:    state.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, tk.AssigneeID)
		assert.Equal(t, assignee.ID, *tk.AssigneeID)
	})

	t.Run("invalid name fails before reference checks", func(t *testing.T) {
		svc, _, _, _ := newTestService(t)

		_, err := svc.Create(ctx, ticket.CreateTicketInput{
			Name:       "",
			ReporterID: ulid.Make(),
			StateID:    ulid.Make(),
		})
		errutil.AssertErrorCode(t, err, "TICKET_INVALID_NAME")
	})

	t.Run("unknown state", func(t *testing.T) {
		svc, _, states, _ := newTestService(t)
		stateID := ulid.Make()

		states.On("GetByID", ctx, stateID).Return(nil, ticket.ErrNotFound)

		_, err := svc.Create(ctx, ticket.CreateTicketInput{
			Name:       "Broken login",
			ReporterID: ulid.Make(),
			StateID:    stateID,
		})
		errutil.AssertErrorCode(t, err, "TICKET_UNKNOWN_STATE")
	})

	t.Run("unknown assignee", func(t *testing.T) {
		svc, _, states, subjects := newTestService(t)
		state := testState(t, "Open")
		assigneeID := ulid.Make()

		states.On("GetByID", ctx, state.ID).Return(state, nil)
		subjects.On("GetByID", ctx, assigneeID).Return(nil, auth.ErrNotFound)

		_, err := svc.Create(ctx, ticket.CreateTicketInput{
			Name:       "Broken login",
			ReporterID: ulid.Make(),
			AssigneeID: &assigneeID,
			StateID:    state.ID,
		})
		errutil.AssertErrorCode(t, err, "TICKET_UNKNOWN_ASSIGNEE")
	})

	t.Run("state check store failure is not an unknown state", func(t *testing.T) {
		svc, _, states, _ := newTestService(t)
		stateID := ulid.Make()

		states.On("GetByID", ctx, stateID).Return(nil, assert.AnError)

		_, err := svc.Create(ctx, ticket.CreateTicketInput{
			Name:       "Broken login",
			ReporterID: ulid.Make(),
			StateID:    stateID,
		})
		errutil.AssertErrorCode(t, err, "TICKET_STATE_CHECK_FAILED")
	})
}

func TestServiceList(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults pagination", func(t *testing.T) {
		svc, tickets, _, _ := newTestService(t)
		tickets.On("List", ctx, 20, 0).Return([]*ticket.Ticket{}, nil)

		_, err := svc.List(ctx, 0, -5)
		require.NoError(t, err)
	})

	t.Run("passes explicit bounds", func(t *testing.T) {
		svc, tickets, _, _ := newTestService(t)
		tickets.On("List", ctx, 50, 100).Return([]*ticket.Ticket{}, nil)

		_, err := svc.List(ctx, 50, 100)
		require.NoError(t, err)
	})
}

func TestServiceUpdate(t *testing.T) {
	ctx := context.Background()

	existing := func(t *testing.T) *ticket.Ticket {
		t.Helper()
		tk, err := ticket.NewTicket("Original", "desc", ulid.Make(), nil, ulid.Make())
		require.NoError(t, err)
		return tk
	}

	t.Run("renames ticket", func(t *testing.T) {
		svc, tickets, _, _ := newTestService(t)
		tk := existing(t)

		tickets.On("GetByID", ctx, tk.ID).Return(tk, nil)
		tickets.On("Update", ctx, mock.AnythingOfType("*ticket.Ticket")).Return(nil)

		name := "  Renamed  "
		updated, err := svc.Update(ctx, tk.ID, ticket.TicketUpdate{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.Equal(t, "desc", updated.Description)
	})

	t.Run("clears assignee", func(t *testing.T) {
		svc, tickets, _, _ := newTestService(t)
		assigneeID := ulid.Make()
		tk, err := ticket.NewTicket("Assigned", "", ulid.Make(), &assigneeID, ulid.Make())
		require.NoError(t, err)

		tickets.On("GetByID", ctx, tk.ID).Return(tk, nil)
		tickets.On("Update", ctx, mock.AnythingOfType("*ticket.Ticket")).Return(nil)

		updated, err := svc.Update(ctx, tk.ID, ticket.TicketUpdate{ClearAssignee: true})
		require.NoError(t, err)
		assert.Nil(t, updated.AssigneeID)
	})

	t.Run("changing state re-validates it", func(t *testing.T) {
		svc, tickets, states, _ := newTestService(t)
		tk := existing(t)
		newStateID := ulid.Make()

		tickets.On("GetByID", ctx, tk.ID).Return(tk, nil)
		states.On("GetByID", ctx, newStateID).Return(nil, ticket.ErrNotFound)

		_, err := svc.Update(ctx, tk.ID, ticket.TicketUpdate{StateID: &newStateID})
		errutil.AssertErrorCode(t, err, "TICKET_UNKNOWN_STATE")
	})

	t.Run("changing assignee re-validates it", func(t *testing.T) {
		svc, tickets, _, subjects := newTestService(t)
		tk := existing(t)
		assigneeID := ulid.Make()

		tickets.On("GetByID", ctx, tk.ID).Return(tk, nil)
		subjects.On("GetByID", ctx, assigneeID).Return(nil, auth.ErrNotFound)

		_, err := svc.Update(ctx, tk.ID, ticket.TicketUpdate{AssigneeID: &assigneeID})
		errutil.AssertErrorCode(t, err, "TICKET_UNKNOWN_ASSIGNEE")
	})

	t.Run("missing ticket propagates ErrNotFound", func(t *testing.T) {
		svc, tickets, _, _ := newTestService(t)
		id := ulid.Make()

		tickets.On("GetByID", ctx, id).Return(nil, ticket.ErrNotFound)

		_, err := svc.Update(ctx, id, ticket.TicketUpdate{})
		assert.ErrorIs(t, err, ticket.ErrNotFound)
	})
}

func TestStateService(t *testing.T) {
	ctx := context.Background()

	newStateService := func(t *testing.T) (*ticket.StateService, *mocks.MockStateRepository) {
		t.Helper()
		states := mocks.NewMockStateRepository(t)
		svc, err := ticket.NewStateService(states)
		require.NoError(t, err)
		return svc, states
	}

	t.Run("create", func(t *testing.T) {
		svc, states := newStateService(t)
		states.On("Create", ctx, mock.AnythingOfType("*ticket.State")).Return(nil)

		state, err := svc.Create(ctx, " Open ")
		require.NoError(t, err)
		assert.Equal(t, "Open", state.Name)
	})

	t.Run("create with taken name", func(t *testing.T) {
		svc, states := newStateService(t)
		states.On("Create", ctx, mock.AnythingOfType("*ticket.State")).Return(ticket.ErrStateNameTaken)

		_, err := svc.Create(ctx, "Open")
		assert.ErrorIs(t, err, ticket.ErrStateNameTaken)
		errutil.AssertErrorCode(t, err, "STATE_NAME_TAKEN")
	})

	t.Run("rename validates name first", func(t *testing.T) {
		svc, _ := newStateService(t)

		err := svc.Rename(ctx, ulid.Make(), "")
		errutil.AssertErrorCode(t, err, "STATE_INVALID_NAME")
	})

	t.Run("rename trims name", func(t *testing.T) {
		svc, states := newStateService(t)
		id := ulid.Make()
		states.On("Rename", ctx, id, "Closed").Return(nil)

		require.NoError(t, svc.Rename(ctx, id, "  Closed  "))
	})

	t.Run("remove refuses while in use", func(t *testing.T) {
		svc, states := newStateService(t)
		id := ulid.Make()
		states.On("Delete", ctx, id).Return(ticket.ErrStateInUse)

		err := svc.Remove(ctx, id)
		assert.ErrorIs(t, err, ticket.ErrStateInUse)
		errutil.AssertErrorCode(t, err, "STATE_IN_USE")
	})

	t.Run("remove missing propagates ErrNotFound", func(t *testing.T) {
		svc, states := newStateService(t)
		id := ulid.Make()
		states.On("Delete", ctx, id).Return(ticket.ErrNotFound)

		assert.ErrorIs(t, svc.Remove(ctx, id), ticket.ErrNotFound)
	})
}
