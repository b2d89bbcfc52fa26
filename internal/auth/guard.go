// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/samber/oops"
)

// bearerScheme is the expected Authorization scheme (matched case-insensitively).
const bearerScheme = "Bearer "

// Guard resolves bearer tokens to authenticated subjects. It is read-only
// and side-effect free: a failed check never mutates the stores.
type Guard struct {
	subjects SubjectRepository
	sessions SessionRepository
}

// NewGuard creates a Guard. Returns an error if a dependency is nil.
func NewGuard(subjects SubjectRepository, sessions SessionRepository) (*Guard, error) {
	if subjects == nil {
		return nil, oops.Errorf("subjects repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	return &Guard{subjects: subjects, sessions: sessions}, nil
}

// ParseBearerToken extracts the token from an Authorization header value.
// Returns ("", false) when the header is empty, carries a different scheme,
// or the token is empty after stripping the scheme.
func ParseBearerToken(headerValue string) (string, bool) {
	if len(headerValue) < len(bearerScheme) {
		return "", false
	}
	if !strings.EqualFold(headerValue[:len(bearerScheme)], bearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(headerValue[len(bearerScheme):])
	if token == "" {
		return "", false
	}
	return token, true
}

// Authenticate resolves a raw Authorization header value to the owning
// Subject. Every failure mode (missing/malformed header, unknown token,
// expired session, orphaned session whose subject was deleted) yields
// ErrUnauthenticated; store failures are surfaced as such, not as denials.
func (g *Guard) Authenticate(ctx context.Context, headerValue string) (*Subject, error) {
	token, ok := ParseBearerToken(headerValue)
	if !ok {
		return nil, oops.Code("AUTH_UNAUTHENTICATED").Wrap(ErrUnauthenticated)
	}

	session, err := g.sessions.GetByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_UNAUTHENTICATED").Wrap(ErrUnauthenticated)
		}
		return nil, oops.Code("AUTH_GUARD_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}

	if session.IsExpired() {
		return nil, oops.Code("AUTH_UNAUTHENTICATED").Wrap(ErrUnauthenticated)
	}

	subject, err := g.subjects.GetByID(ctx, session.SubjectID)
	if err != nil {
		// A session whose subject has been deleted is treated as
		// unauthenticated, not as a server error.
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_UNAUTHENTICATED").Wrap(ErrUnauthenticated)
		}
		return nil, oops.Code("AUTH_GUARD_FAILED").
			With("operation", "get subject by id").
			With("subject_id", session.SubjectID.String()).
			Wrap(err)
	}

	return subject, nil
}
