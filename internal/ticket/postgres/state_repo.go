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

	"github.com/tickethub/tickethub/internal/ticket"
)

// stateNameConstraint is the unique index name from the schema.
const stateNameConstraint = "states_name_key"

// StateRepository implements ticket.StateRepository using PostgreSQL.
type StateRepository struct {
	db DB
}

// NewStateRepository creates a new StateRepository.
func NewStateRepository(db DB) *StateRepository {
	return &StateRepository{db: db}
}

// Create stores a new state. A unique-index violation on the name is mapped
// to ticket.ErrStateNameTaken.
func (r *StateRepository) Create(ctx context.Context, s *ticket.State) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO states (id, name, created_at)
		VALUES ($1, $2, $3)
	`, s.ID.String(), s.Name, s.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, stateNameConstraint) {
			return oops.Code("STATE_NAME_TAKEN").
				With("name", s.Name).
				Wrap(ticket.ErrStateNameTaken)
		}
		return oops.Code("STATE_CREATE_FAILED").
			With("operation", "insert state").
			With("name", s.Name).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a state by id.
func (r *StateRepository) GetByID(ctx context.Context, id ulid.ULID) (*ticket.State, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, created_at FROM states WHERE id = $1
	`, id.String())

	state, err := scanState(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("STATE_NOT_FOUND").
			With("id", id.String()).
			Wrap(ticket.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("STATE_GET_BY_ID_FAILED").
			With("operation", "get state by id").
			With("id", id.String()).
			Wrap(err)
	}
	return state, nil
}

// GetByName retrieves a state by name (case-insensitive).
func (r *StateRepository) GetByName(ctx context.Context, name string) (*ticket.State, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, created_at FROM states WHERE LOWER(name) = LOWER($1)
	`, name)

	state, err := scanState(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("STATE_NOT_FOUND").
			With("name", name).
			Wrap(ticket.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("STATE_GET_BY_NAME_FAILED").
			With("operation", "get state by name").
			With("name", name).
			Wrap(err)
	}
	return state, nil
}

// List returns all states in creation order.
func (r *StateRepository) List(ctx context.Context) ([]*ticket.State, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, created_at FROM states ORDER BY id
	`)
	if err != nil {
		return nil, oops.Code("STATE_LIST_FAILED").
			With("operation", "list states").
			Wrap(err)
	}
	defer rows.Close()

	var states []*ticket.State
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, oops.Code("STATE_SCAN_FAILED").
				With("operation", "scan state row").
				Wrap(err)
		}
		states = append(states, state)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("STATE_ROWS_ERROR").
			With("operation", "iterate state rows").
			Wrap(err)
	}

	return states, nil
}

// Rename changes a state's name.
func (r *StateRepository) Rename(ctx context.Context, id ulid.ULID, name string) error {
	result, err := r.db.Exec(ctx, `
		UPDATE states SET name = $2 WHERE id = $1
	`, id.String(), name)
	if err != nil {
		if isUniqueViolation(err, stateNameConstraint) {
			return oops.Code("STATE_NAME_TAKEN").
				With("name", name).
				Wrap(ticket.ErrStateNameTaken)
		}
		return oops.Code("STATE_RENAME_FAILED").
			With("operation", "rename state").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("STATE_NOT_FOUND").
			With("id", id.String()).
			Wrap(ticket.ErrNotFound)
	}
	return nil
}

// Delete removes a state. The restrict foreign key from tickets surfaces as
// ticket.ErrStateInUse.
func (r *StateRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM states WHERE id = $1
	`, id.String())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return oops.Code("STATE_IN_USE").
				With("id", id.String()).
				Wrap(ticket.ErrStateInUse)
		}
		return oops.Code("STATE_DELETE_FAILED").
			With("operation", "delete state").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("STATE_NOT_FOUND").
			With("id", id.String()).
			Wrap(ticket.ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique violation on the named
// constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) &&
		pgErr.Code == pgerrcode.UniqueViolation &&
		pgErr.ConstraintName == constraint
}

// scanState scans a single row into a State.
// Callers are responsible for handling pgx.ErrNoRows.
func scanState(row pgx.Row) (*ticket.State, error) {
	var (
		idStr     string
		name      string
		createdAt time.Time
	)

	err := row.Scan(&idStr, &name, &createdAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("STATE_SCAN_FAILED").
			With("operation", "scan state").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("STATE_INVALID_ID").
			With("operation", "parse state id").
			With("id", idStr).
			Wrap(err)
	}

	return &ticket.State{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
	}, nil
}

// Compile-time interface check.
var _ ticket.StateRepository = (*StateRepository)(nil)
