// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tickethub/tickethub/internal/auth"
)

// Unique index names from the schema; violation mapping keys off these.
const (
	subjectEmailConstraint = "subjects_email_key"
	subjectNameConstraint  = "subjects_display_name_key"
)

// SubjectRepository implements auth.SubjectRepository using PostgreSQL.
type SubjectRepository struct {
	db DB
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(db DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// Create stores a new subject. A unique-index violation is mapped to
// auth.ErrEmailTaken / auth.ErrDisplayNameTaken by constraint name, so the
// check-then-insert window in registration is closed by the store.
func (r *SubjectRepository) Create(ctx context.Context, subject *auth.Subject) error {
	_, err := engine(ctx, r.db).Exec(ctx, `
		INSERT INTO subjects (id, display_name, email, password_digest, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		subject.ID.String(),
		subject.DisplayName,
		subject.Email,
		subject.PasswordDigest,
		subject.CreatedAt,
		subject.UpdatedAt,
	)
	if err != nil {
		if conflictErr := mapUniqueViolation(err); conflictErr != nil {
			return conflictErr
		}
		return oops.Code("SUBJECT_CREATE_FAILED").
			With("operation", "insert subject").
			With("display_name", subject.DisplayName).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a subject by id.
func (r *SubjectRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Subject, error) {
	row := engine(ctx, r.db).QueryRow(ctx, `
		SELECT id, display_name, email, password_digest, created_at, updated_at
		FROM subjects
		WHERE id = $1
	`, id.String())

	subject, err := scanSubject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SUBJECT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SUBJECT_GET_BY_ID_FAILED").
			With("operation", "get subject by id").
			With("id", id.String()).
			Wrap(err)
	}
	return subject, nil
}

// GetByEmail retrieves a subject by email (case-insensitive).
func (r *SubjectRepository) GetByEmail(ctx context.Context, email string) (*auth.Subject, error) {
	row := engine(ctx, r.db).QueryRow(ctx, `
		SELECT id, display_name, email, password_digest, created_at, updated_at
		FROM subjects
		WHERE LOWER(email) = LOWER($1)
	`, email)

	subject, err := scanSubject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SUBJECT_NOT_FOUND").
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SUBJECT_GET_BY_EMAIL_FAILED").
			With("operation", "get subject by email").
			Wrap(err)
	}
	return subject, nil
}

// GetByDisplayName retrieves a subject by display name (case-insensitive).
func (r *SubjectRepository) GetByDisplayName(ctx context.Context, displayName string) (*auth.Subject, error) {
	row := engine(ctx, r.db).QueryRow(ctx, `
		SELECT id, display_name, email, password_digest, created_at, updated_at
		FROM subjects
		WHERE LOWER(display_name) = LOWER($1)
	`, displayName)

	subject, err := scanSubject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SUBJECT_NOT_FOUND").
			With("display_name", displayName).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SUBJECT_GET_BY_NAME_FAILED").
			With("operation", "get subject by display name").
			With("display_name", displayName).
			Wrap(err)
	}
	return subject, nil
}

// List returns subjects ordered by creation, newest first.
func (r *SubjectRepository) List(ctx context.Context, limit, offset int) ([]*auth.Subject, error) {
	rows, err := engine(ctx, r.db).Query(ctx, `
		SELECT id, display_name, email, password_digest, created_at, updated_at
		FROM subjects
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, oops.Code("SUBJECT_LIST_FAILED").
			With("operation", "list subjects").
			Wrap(err)
	}
	defer rows.Close()

	var subjects []*auth.Subject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, oops.Code("SUBJECT_SCAN_FAILED").
				With("operation", "scan subject row").
				Wrap(err)
		}
		subjects = append(subjects, subject)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("SUBJECT_ROWS_ERROR").
			With("operation", "iterate subject rows").
			Wrap(err)
	}

	return subjects, nil
}

// Update updates an existing subject.
func (r *SubjectRepository) Update(ctx context.Context, subject *auth.Subject) error {
	result, err := engine(ctx, r.db).Exec(ctx, `
		UPDATE subjects SET
			display_name = $2,
			email = $3,
			password_digest = $4,
			updated_at = $5
		WHERE id = $1
	`,
		subject.ID.String(),
		subject.DisplayName,
		subject.Email,
		subject.PasswordDigest,
		subject.UpdatedAt,
	)
	if err != nil {
		if conflictErr := mapUniqueViolation(err); conflictErr != nil {
			return conflictErr
		}
		return oops.Code("SUBJECT_UPDATE_FAILED").
			With("operation", "update subject").
			With("id", subject.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SUBJECT_NOT_FOUND").
			With("id", subject.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword updates only the password digest for a subject.
func (r *SubjectRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordDigest string) error {
	result, err := engine(ctx, r.db).Exec(ctx, `
		UPDATE subjects SET password_digest = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), passwordDigest, time.Now())
	if err != nil {
		return oops.Code("SUBJECT_UPDATE_PASSWORD_FAILED").
			With("operation", "update password digest").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SUBJECT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a subject.
func (r *SubjectRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := engine(ctx, r.db).Exec(ctx, `
		DELETE FROM subjects WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("SUBJECT_DELETE_FAILED").
			With("operation", "delete subject").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SUBJECT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// mapUniqueViolation converts a unique-constraint violation into the domain
// conflict sentinel for the affected field, or returns nil for other errors.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case subjectEmailConstraint:
		return oops.Code("AUTH_EMAIL_TAKEN").Wrap(auth.ErrEmailTaken)
	case subjectNameConstraint:
		return oops.Code("AUTH_NAME_TAKEN").Wrap(auth.ErrDisplayNameTaken)
	}
	return nil
}

// scanSubject scans a single row into a Subject.
// Callers are responsible for handling pgx.ErrNoRows.
func scanSubject(row pgx.Row) (*auth.Subject, error) {
	var (
		idStr          string
		displayName    string
		email          string
		passwordDigest string
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(&idStr, &displayName, &email, &passwordDigest, &createdAt, &updatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("SUBJECT_SCAN_FAILED").
			With("operation", "scan subject").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SUBJECT_INVALID_ID").
			With("operation", "parse subject id").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.Subject{
		ID:             id,
		DisplayName:    displayName,
		Email:          email,
		PasswordDigest: passwordDigest,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.SubjectRepository = (*SubjectRepository)(nil)
