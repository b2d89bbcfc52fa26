// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ProfileUpdate carries the mutable subject fields. Nil means "leave as is".
type ProfileUpdate struct {
	DisplayName *string
	Email       *string
}

// SubjectService handles subject profile management.
type SubjectService struct {
	subjects SubjectRepository
	sessions SessionRepository
	hasher   PasswordHasher
	tx       Transactor
	logger   *slog.Logger
}

// NewSubjectService creates a new SubjectService.
// Returns an error if any required dependency is nil.
func NewSubjectService(subjects SubjectRepository, sessions SessionRepository, hasher PasswordHasher, tx Transactor) (*SubjectService, error) {
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
	return &SubjectService{
		subjects: subjects,
		sessions: sessions,
		hasher:   hasher,
		tx:       tx,
		logger:   slog.New(slog.DiscardHandler),
	}, nil
}

// WithLogger sets the service logger and returns the service.
func (s *SubjectService) WithLogger(logger *slog.Logger) *SubjectService {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Get retrieves a subject by id.
func (s *SubjectService) Get(ctx context.Context, id ulid.ULID) (*Subject, error) {
	return s.subjects.GetByID(ctx, id)
}

// List returns subjects, newest first.
func (s *SubjectService) List(ctx context.Context, limit, offset int) ([]*Subject, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.subjects.List(ctx, limit, offset)
}

// UpdateProfile applies a partial update to display name and email. Each
// changed unique field is re-validated for syntax and uniqueness before the
// write; the store constraint remains the final authority under concurrency.
func (s *SubjectService) UpdateProfile(ctx context.Context, id ulid.ULID, update ProfileUpdate) (*Subject, error) {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.DisplayName != nil {
		name := strings.TrimSpace(*update.DisplayName)
		if err := ValidateDisplayName(name); err != nil {
			return nil, err
		}
		if !strings.EqualFold(name, subject.DisplayName) {
			if err := s.checkDisplayNameFree(ctx, name); err != nil {
				return nil, err
			}
		}
		subject.DisplayName = name
	}

	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if err := ValidateEmail(email); err != nil {
			return nil, err
		}
		if !strings.EqualFold(email, subject.Email) {
			if err := s.checkEmailFree(ctx, email); err != nil {
				return nil, err
			}
		}
		subject.Email = email
	}

	subject.UpdatedAt = time.Now()
	if err := s.subjects.Update(ctx, subject); err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			return nil, oops.Code("AUTH_EMAIL_TAKEN").With("email", subject.Email).Wrap(ErrEmailTaken)
		case errors.Is(err, ErrDisplayNameTaken):
			return nil, oops.Code("AUTH_NAME_TAKEN").With("display_name", subject.DisplayName).Wrap(ErrDisplayNameTaken)
		}
		return nil, oops.Code("SUBJECT_UPDATE_FAILED").
			With("subject_id", id.String()).
			Wrap(err)
	}

	return subject, nil
}

// ChangePassword replaces a subject's password digest after verifying proof
// of the old password. The new password is validated for minimum length.
func (s *SubjectService) ChangePassword(ctx context.Context, id ulid.ULID, oldPassword, newPassword string) error {
	subject, err := s.subjects.GetByID(ctx, id)
	if err != nil {
		return err
	}

	valid, err := s.hasher.Verify(oldPassword, subject.PasswordDigest)
	if err != nil {
		return oops.Code("SUBJECT_PASSWORD_CHANGE_FAILED").
			With("operation", "verify old password").
			Wrap(err)
	}
	if !valid {
		return oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("SUBJECT_PASSWORD_CHANGE_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	if err := s.subjects.UpdatePassword(ctx, id, digest); err != nil {
		return oops.Code("SUBJECT_PASSWORD_CHANGE_FAILED").
			With("operation", "update password digest").
			With("subject_id", id.String()).
			Wrap(err)
	}

	s.logger.InfoContext(ctx, "password changed", "subject_id", id.String())
	return nil
}

// Remove deletes a subject and cascade-invalidates its sessions in a single
// transaction, so no orphaned session survives the removal.
func (s *SubjectService) Remove(ctx context.Context, id ulid.ULID) error {
	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessions.DeleteBySubject(ctx, id); err != nil {
			return oops.Code("SUBJECT_DELETE_FAILED").
				With("operation", "delete sessions for subject").
				With("subject_id", id.String()).
				Wrap(err)
		}
		return s.subjects.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "subject removed", "subject_id", id.String())
	return nil
}

func (s *SubjectService) checkEmailFree(ctx context.Context, email string) error {
	if _, err := s.subjects.GetByEmail(ctx, email); err == nil {
		return oops.Code("AUTH_EMAIL_TAKEN").With("email", email).Wrap(ErrEmailTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return oops.Code("SUBJECT_UPDATE_FAILED").
			With("operation", "get subject by email").
			Wrap(err)
	}
	return nil
}

func (s *SubjectService) checkDisplayNameFree(ctx context.Context, name string) error {
	if _, err := s.subjects.GetByDisplayName(ctx, name); err == nil {
		return oops.Code("AUTH_NAME_TAKEN").With("display_name", name).Wrap(ErrDisplayNameTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return oops.Code("SUBJECT_UPDATE_FAILED").
			With("operation", "get subject by display name").
			Wrap(err)
	}
	return nil
}
