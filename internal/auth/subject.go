// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package auth

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Credential validation constraints.
const (
	MinPasswordLength    = 8
	MaxDisplayNameLength = 60
	MaxEmailLength       = 254
)

// Subject represents a registered user identity. The password digest never
// leaves the auth package boundary; API projections use Redacted.
type Subject struct {
	ID             ulid.ULID
	DisplayName    string
	Email          string
	PasswordDigest string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewSubject creates a validated Subject with an assigned id.
// The password digest must already be hashed; plaintext never reaches here.
func NewSubject(displayName, email, passwordDigest string) (*Subject, error) {
	if err := ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordDigest == "" {
		return nil, oops.Code("AUTH_INVALID_DIGEST").Errorf("password digest cannot be empty")
	}

	now := time.Now()
	return &Subject{
		ID:             ulid.Make(),
		DisplayName:    strings.TrimSpace(displayName),
		Email:          strings.TrimSpace(email),
		PasswordDigest: passwordDigest,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// RedactedSubject is the externally visible projection of a Subject.
type RedactedSubject struct {
	ID          ulid.ULID `json:"id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"created_at"`
}

// Redacted returns the subject with the password digest stripped.
func (s *Subject) Redacted() RedactedSubject {
	return RedactedSubject{
		ID:          s.ID,
		DisplayName: s.DisplayName,
		Email:       s.Email,
		CreatedAt:   s.CreatedAt,
	}
}

// ValidateDisplayName validates a display name: non-empty after trimming,
// at most MaxDisplayNameLength bytes.
func ValidateDisplayName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return oops.Code("AUTH_INVALID_NAME").Errorf("display name cannot be empty")
	}
	if len(trimmed) > MaxDisplayNameLength {
		return oops.Code("AUTH_INVALID_NAME").
			With("max", MaxDisplayNameLength).
			Errorf("display name must be at most %d characters", MaxDisplayNameLength)
	}
	return nil
}

// ValidateEmail validates email syntax. The address must stand alone
// (no display-name part) and parse as a single RFC 5322 address.
func ValidateEmail(email string) error {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(trimmed) > MaxEmailLength {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("email", trimmed).
			Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword validates a candidate plaintext password.
func ValidatePassword(password string) error {
	if password == "" {
		return oops.Code("AUTH_INVALID_PASSWORD").Errorf("password cannot be empty")
	}
	if len(password) < MinPasswordLength {
		return oops.Code("AUTH_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// SubjectRepository manages subject persistence. Uniqueness of email and
// display name is enforced by the store itself; Create and Update surface
// violations as ErrEmailTaken / ErrDisplayNameTaken so concurrent writers
// cannot both succeed.
type SubjectRepository interface {
	// Create stores a new subject.
	Create(ctx context.Context, subject *Subject) error

	// GetByID retrieves a subject by id.
	GetByID(ctx context.Context, id ulid.ULID) (*Subject, error)

	// GetByEmail retrieves a subject by email (case-insensitive).
	// Returns ErrNotFound if no subject has the given email.
	GetByEmail(ctx context.Context, email string) (*Subject, error)

	// GetByDisplayName retrieves a subject by display name (case-insensitive).
	GetByDisplayName(ctx context.Context, displayName string) (*Subject, error)

	// List returns subjects ordered by creation, newest first.
	List(ctx context.Context, limit, offset int) ([]*Subject, error)

	// Update updates an existing subject.
	Update(ctx context.Context, subject *Subject) error

	// UpdatePassword updates only the password digest for a subject.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordDigest string) error

	// Delete removes a subject.
	Delete(ctx context.Context, id ulid.ULID) error
}

// Transactor runs a function inside a storage transaction. Repository calls
// made with the context passed to fn participate in that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
