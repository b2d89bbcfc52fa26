// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Service provides registration, login and logout.
type Service struct {
	subjects SubjectRepository
	sessions SessionRepository
	hasher   PasswordHasher
	tx       Transactor
	logger   *slog.Logger
	ttl      time.Duration
}

// NewService creates a new Service with a no-op logger.
// Returns an error if any required dependency is nil.
func NewService(subjects SubjectRepository, sessions SessionRepository, hasher PasswordHasher, tx Transactor) (*Service, error) {
	if subjects == nil {
		return nil, oops.Errorf("subjects repository is required")
	}
	if sessions == nil {
		return nil, oops.Errorf("sessions repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tx == nil {
		return nil, oops.Errorf("transactor is required")
	}
	return &Service{
		subjects: subjects,
		sessions: sessions,
		hasher:   hasher,
		tx:       tx,
		logger:   slog.New(slog.DiscardHandler),
		ttl:      DefaultSessionTTL,
	}, nil
}

// WithSessionTTL sets the lifetime of sessions issued by Login.
// Non-positive values are ignored. Returns s for chaining.
func (s *Service) WithSessionTTL(ttl time.Duration) *Service {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// NewServiceWithLogger creates a new Service with the provided logger.
func NewServiceWithLogger(subjects SubjectRepository, sessions SessionRepository, hasher PasswordHasher, tx Transactor, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	svc, err := NewService(subjects, sessions, hasher, tx)
	if err != nil {
		return nil, err
	}
	svc.logger = logger
	return svc, nil
}

// dummyPasswordDigest is used when a subject doesn't exist to prevent timing
// attacks: verification still runs so response time stays uniform. It is NOT
// a real credential and will never match any password.
//
//nolint:gosec // G101: intentionally fake digest for timing attack prevention, not a credential.
const dummyPasswordDigest = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates a new subject from the given credentials.
//
// Validation order is fixed, first failure wins: display name, email syntax,
// password length, email uniqueness, display name uniqueness. Uniqueness
// pre-checks give ordered user-facing reasons; the store constraint remains
// the authority, so a concurrent duplicate surfaces as the same conflict.
func (s *Service) Register(ctx context.Context, displayName, email, password string) (*Subject, error) {
	displayName = strings.TrimSpace(displayName)
	email = strings.TrimSpace(email)

	if err := ValidateDisplayName(displayName); err != nil {
		return nil, err
	}
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.subjects.GetByEmail(ctx, email); err == nil {
		return nil, oops.Code("AUTH_EMAIL_TAKEN").
			With("email", email).
			Wrap(ErrEmailTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "get subject by email").
			Wrap(err)
	}

	if _, err := s.subjects.GetByDisplayName(ctx, displayName); err == nil {
		return nil, oops.Code("AUTH_NAME_TAKEN").
			With("display_name", displayName).
			Wrap(ErrDisplayNameTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "get subject by display name").
			Wrap(err)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	subject, err := NewSubject(displayName, email, digest)
	if err != nil {
		return nil, err
	}

	if err := s.subjects.Create(ctx, subject); err != nil {
		// The unique indexes close the check-then-insert window; map a
		// racing duplicate to the same conflict the pre-check reports.
		switch {
		case errors.Is(err, ErrEmailTaken):
			return nil, oops.Code("AUTH_EMAIL_TAKEN").With("email", email).Wrap(ErrEmailTaken)
		case errors.Is(err, ErrDisplayNameTaken):
			return nil, oops.Code("AUTH_NAME_TAKEN").With("display_name", displayName).Wrap(ErrDisplayNameTaken)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert subject").
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "subject registered", "subject_id", subject.ID.String())
	return subject, nil
}

// Login authenticates a subject and issues a fresh session, superseding any
// existing session for that subject. Returns the session and the plaintext
// token. Unknown email and wrong password produce the same generic error;
// verification runs in both cases to keep timing uniform.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, string, error) {
	email = strings.TrimSpace(email)

	subject, lookupErr := s.subjects.GetByEmail(ctx, email)

	targetDigest := dummyPasswordDigest
	subjectExists := false

	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get subject by email").
				Wrap(lookupErr)
		}
	} else {
		targetDigest = subject.PasswordDigest
		subjectExists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetDigest)
	if verifyErr != nil {
		// Dummy-digest verification errors just mean invalid credentials.
		if !subjectExists {
			return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
		}
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !subjectExists || !valid {
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	token, tokenHash, err := GenerateSessionToken()
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "generate session token").
			Wrap(err)
	}

	session, err := NewSession(subject.ID, tokenHash, time.Now().Add(s.ttl))
	if err != nil {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	// Supersede-then-insert runs in one transaction so a concurrent second
	// login for the same subject cannot leave two live sessions.
	err = s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessions.DeleteBySubject(ctx, subject.ID); err != nil {
			return oops.Code("AUTH_SESSION_SUPERSEDE_FAILED").
				With("subject_id", subject.ID.String()).
				Wrap(err)
		}
		if err := s.sessions.Create(ctx, session); err != nil {
			return oops.Code("AUTH_SESSION_CREATE_FAILED").
				With("subject_id", subject.ID.String()).
				Wrap(err)
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	s.logger.InfoContext(ctx, "subject logged in", "subject_id", subject.ID.String())
	return session, token, nil
}

// Logout deletes the session presented by the token. Returns true iff a
// session was actually removed; false means the token was already invalid.
func (s *Service) Logout(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	removed, err := s.sessions.DeleteByTokenHash(ctx, HashSessionToken(token))
	if err != nil {
		return false, oops.Code("AUTH_LOGOUT_FAILED").
			With("operation", "delete session by token").
			Wrap(err)
	}
	if removed {
		s.logger.InfoContext(ctx, "session terminated")
	}
	return removed, nil
}
