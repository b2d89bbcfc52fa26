// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package postgres_test

import (
	"context"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tickethub/tickethub/internal/ticket"
	"github.com/tickethub/tickethub/internal/ticket/postgres"
)

func newState(t *testing.T) *ticket.State {
	t.Helper()
	state, err := ticket.NewState("Open")
	require.NoError(t, err)
	return state
}

func stateRows(states ...*ticket.State) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "name", "created_at"})
	for _, s := range states {
		rows.AddRow(s.ID.String(), s.Name, s.CreatedAt)
	}
	return rows
}

func TestStateRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts state", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		state := newState(t)
		mock.ExpectExec(`INSERT INTO states`).
			WithArgs(state.ID.String(), state.Name, state.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := postgres.NewStateRepository(mock)
		require.NoError(t, repo.Create(ctx, state))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps name unique violation", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		state := newState(t)
		mock.ExpectExec(`INSERT INTO states`).
			WithArgs(state.ID.String(), state.Name, state.CreatedAt).
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "states_name_key",
			})

		repo := postgres.NewStateRepository(mock)
		assert.ErrorIs(t, repo.Create(ctx, state), ticket.ErrStateNameTaken)
	})

	t.Run("unrelated unique violation is not a name conflict", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		state := newState(t)
		mock.ExpectExec(`INSERT INTO states`).
			WithArgs(state.ID.String(), state.Name, state.CreatedAt).
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "states_pkey",
			})

		repo := postgres.NewStateRepository(mock)
		err = repo.Create(ctx, state)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ticket.ErrStateNameTaken)
	})
}

func TestStateRepository_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		state := newState(t)
		mock.ExpectQuery(`SELECT id, name, created_at FROM states WHERE id`).
			WithArgs(state.ID.String()).
			WillReturnRows(stateRows(state))

		repo := postgres.NewStateRepository(mock)
		got, err := repo.GetByID(ctx, state.ID)
		require.NoError(t, err)
		assert.Equal(t, state.ID, got.ID)
	})

	t.Run("by name lowercases on the store side", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		state := newState(t)
		mock.ExpectQuery(`WHERE LOWER\(name\) = LOWER\(\$1\)`).
			WithArgs("OPEN").
			WillReturnRows(stateRows(state))

		repo := postgres.NewStateRepository(mock)
		got, err := repo.GetByName(ctx, "OPEN")
		require.NoError(t, err)
		assert.Equal(t, state.ID, got.ID)
	})

	t.Run("missing row is ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectQuery(`SELECT id, name, created_at FROM states WHERE id`).
			WithArgs(id.String()).
			WillReturnRows(stateRows())

		repo := postgres.NewStateRepository(mock)
		_, err = repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, ticket.ErrNotFound)
	})
}

func TestStateRepository_List(t *testing.T) {
	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	open := newState(t)
	closed, err := ticket.NewState("Closed")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT id, name, created_at FROM states ORDER BY id`).
		WillReturnRows(stateRows(open, closed))

	repo := postgres.NewStateRepository(mock)
	states, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, open.ID, states[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepository_Rename(t *testing.T) {
	ctx := context.Background()

	t.Run("renames state", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`UPDATE states SET name`).
			WithArgs(id.String(), "In Progress").
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		repo := postgres.NewStateRepository(mock)
		require.NoError(t, repo.Rename(ctx, id, "In Progress"))
	})

	t.Run("maps name unique violation", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`UPDATE states SET name`).
			WithArgs(id.String(), "Closed").
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.UniqueViolation,
				ConstraintName: "states_name_key",
			})

		repo := postgres.NewStateRepository(mock)
		assert.ErrorIs(t, repo.Rename(ctx, id, "Closed"), ticket.ErrStateNameTaken)
	})

	t.Run("zero rows is ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`UPDATE states SET name`).
			WithArgs(id.String(), "Closed").
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		repo := postgres.NewStateRepository(mock)
		assert.ErrorIs(t, repo.Rename(ctx, id, "Closed"), ticket.ErrNotFound)
	})
}

func TestStateRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes state", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM states WHERE id`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := postgres.NewStateRepository(mock)
		require.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("foreign key violation is ErrStateInUse", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM states WHERE id`).
			WithArgs(id.String()).
			WillReturnError(&pgconn.PgError{
				Code:           pgerrcode.ForeignKeyViolation,
				ConstraintName: "tickets_state_id_fkey",
			})

		repo := postgres.NewStateRepository(mock)
		assert.ErrorIs(t, repo.Delete(ctx, id), ticket.ErrStateInUse)
	})

	t.Run("zero rows is ErrNotFound", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		id := ulid.Make()
		mock.ExpectExec(`DELETE FROM states WHERE id`).
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := postgres.NewStateRepository(mock)
		assert.ErrorIs(t, repo.Delete(ctx, id), ticket.ErrNotFound)
	})
}
