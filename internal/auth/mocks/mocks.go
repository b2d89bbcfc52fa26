// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

// Package mocks provides testify mocks for the auth interfaces.
package mocks

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/tickethub/tickethub/internal/auth"
)

// testingT is the subset of *testing.T the constructors need.
type testingT interface {
	Cleanup(func())
	mock.TestingT
}

// MockSubjectRepository is a mock implementation of auth.SubjectRepository.
type MockSubjectRepository struct {
	mock.Mock
}

// NewMockSubjectRepository creates a MockSubjectRepository whose expectations
// are asserted on test cleanup.
func NewMockSubjectRepository(t testingT) *MockSubjectRepository {
	m := &MockSubjectRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSubjectRepository) Create(ctx context.Context, subject *auth.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *MockSubjectRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Subject, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*auth.Subject); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSubjectRepository) GetByEmail(ctx context.Context, email string) (*auth.Subject, error) {
	args := m.Called(ctx, email)
	if s, ok := args.Get(0).(*auth.Subject); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSubjectRepository) GetByDisplayName(ctx context.Context, displayName string) (*auth.Subject, error) {
	args := m.Called(ctx, displayName)
	if s, ok := args.Get(0).(*auth.Subject); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSubjectRepository) List(ctx context.Context, limit, offset int) ([]*auth.Subject, error) {
	args := m.Called(ctx, limit, offset)
	if s, ok := args.Get(0).([]*auth.Subject); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSubjectRepository) Update(ctx context.Context, subject *auth.Subject) error {
	args := m.Called(ctx, subject)
	return args.Error(0)
}

func (m *MockSubjectRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordDigest string) error {
	args := m.Called(ctx, id, passwordDigest)
	return args.Error(0)
}

func (m *MockSubjectRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of auth.SessionRepository.
type MockSessionRepository struct {
	mock.Mock
}

// NewMockSessionRepository creates a MockSessionRepository whose expectations
// are asserted on test cleanup.
func NewMockSessionRepository(t testingT) *MockSessionRepository {
	m := &MockSessionRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockSessionRepository) Create(ctx context.Context, session *auth.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*auth.Session, error) {
	args := m.Called(ctx, tokenHash)
	if s, ok := args.Get(0).(*auth.Session); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSessionRepository) DeleteByTokenHash(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) DeleteBySubject(ctx context.Context, subjectID ulid.ULID) error {
	args := m.Called(ctx, subjectID)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockPasswordHasher is a mock implementation of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher whose expectations are
// asserted on test cleanup.
func NewMockPasswordHasher(t testingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, digest string) (bool, error) {
	args := m.Called(password, digest)
	return args.Bool(0), args.Error(1)
}

// PassthroughTransactor implements auth.Transactor without a database:
// fn runs directly on the given context. Commit/rollback behavior is
// exercised by the postgres Transactor tests instead.
type PassthroughTransactor struct{}

func (PassthroughTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Compile-time interface checks.
var (
	_ auth.SubjectRepository = (*MockSubjectRepository)(nil)
	_ auth.SessionRepository = (*MockSessionRepository)(nil)
	_ auth.PasswordHasher    = (*MockPasswordHasher)(nil)
	_ auth.Transactor        = PassthroughTransactor{}
)
