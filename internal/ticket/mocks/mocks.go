// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

// Package mocks provides testify mocks for the ticket interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/tickethub/tickethub/internal/auth"
	"github.com/tickethub/tickethub/internal/ticket"
)

// testingT is the subset of *testing.T the constructors need.
type testingT interface {
	Cleanup(func())
	mock.TestingT
}

// MockTicketRepository is a mock implementation of ticket.TicketRepository.
type MockTicketRepository struct {
	mock.Mock
}

// NewMockTicketRepository creates a MockTicketRepository whose expectations
// are asserted on test cleanup.
func NewMockTicketRepository(t testingT) *MockTicketRepository {
	m := &MockTicketRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockTicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id ulid.ULID) (*ticket.Ticket, error) {
	args := m.Called(ctx, id)
	if t, ok := args.Get(0).(*ticket.Ticket); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTicketRepository) List(ctx context.Context, limit, offset int) ([]*ticket.Ticket, error) {
	args := m.Called(ctx, limit, offset)
	if t, ok := args.Get(0).([]*ticket.Ticket); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTicketRepository) ListByReporter(ctx context.Context, subjectID ulid.ULID) ([]*ticket.Ticket, error) {
	args := m.Called(ctx, subjectID)
	if t, ok := args.Get(0).([]*ticket.Ticket); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTicketRepository) ListByState(ctx context.Context, stateID ulid.ULID) ([]*ticket.Ticket, error) {
	args := m.Called(ctx, stateID)
	if t, ok := args.Get(0).([]*ticket.Ticket); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTicketRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockStateRepository is a mock implementation of ticket.StateRepository.
type MockStateRepository struct {
	mock.Mock
}

// NewMockStateRepository creates a MockStateRepository whose expectations are
// asserted on test cleanup.
func NewMockStateRepository(t testingT) *MockStateRepository {
	m := &MockStateRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockStateRepository) Create(ctx context.Context, s *ticket.State) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockStateRepository) GetByID(ctx context.Context, id ulid.ULID) (*ticket.State, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*ticket.State); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStateRepository) GetByName(ctx context.Context, name string) (*ticket.State, error) {
	args := m.Called(ctx, name)
	if s, ok := args.Get(0).(*ticket.State); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStateRepository) List(ctx context.Context) ([]*ticket.State, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).([]*ticket.State); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStateRepository) Rename(ctx context.Context, id ulid.ULID, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockStateRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSubjectDirectory is a mock implementation of ticket.SubjectDirectory.
type MockSubjectDirectory struct {
	mock.Mock
}

// NewMockSubjectDirectory creates a MockSubjectDirectory whose expectations
// are asserted on test cleanup.
func NewMockSubjectDirectory(t testingT) *MockSubjectDirectory {
	m := &MockSubjectDirectory{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSubjectDirectory) GetByID(ctx context.Context, id ulid.ULID) (*auth.Subject, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*auth.Subject); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

// Compile-time interface checks.
var (
	_ ticket.TicketRepository = (*MockTicketRepository)(nil)
	_ ticket.StateRepository  = (*MockStateRepository)(nil)
	_ ticket.SubjectDirectory = (*MockSubjectDirectory)(nil)
)
