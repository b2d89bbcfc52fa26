// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/tickethub/tickethub/internal/ticket"
)

// TicketRepository implements ticket.TicketRepository using PostgreSQL.
type TicketRepository struct {
	db DB
}

// NewTicketRepository creates a new TicketRepository.
func NewTicketRepository(db DB) *TicketRepository {
	return &TicketRepository{db: db}
}

const ticketColumns = `id, name, description, reporter_id, assignee_id, state_id, created_at, updated_at`

// Create stores a new ticket.
func (r *TicketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO tickets (id, name, description, reporter_id, assignee_id, state_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		t.ID.String(),
		t.Name,
		t.Description,
		t.ReporterID.String(),
		ulidToStringPtr(t.AssigneeID),
		t.StateID.String(),
		t.CreatedAt,
		t.UpdatedAt,
	)
	if err != nil {
		return oops.Code("TICKET_CREATE_FAILED").
			With("operation", "insert ticket").
			With("name", t.Name).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a ticket by id.
func (r *TicketRepository) GetByID(ctx context.Context, id ulid.ULID) (*ticket.Ticket, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE id = $1
	`, id.String())

	t, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("TICKET_NOT_FOUND").
			With("id", id.String()).
			Wrap(ticket.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("TICKET_GET_BY_ID_FAILED").
			With("operation", "get ticket by id").
			With("id", id.String()).
			Wrap(err)
	}
	return t, nil
}

// List returns tickets, newest first.
func (r *TicketRepository) List(ctx context.Context, limit, offset int) ([]*ticket.Ticket, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, oops.Code("TICKET_LIST_FAILED").
			With("operation", "list tickets").
			Wrap(err)
	}
	return collectTickets(rows)
}

// ListByReporter returns tickets reported by a subject, newest first.
func (r *TicketRepository) ListByReporter(ctx context.Context, subjectID ulid.ULID) ([]*ticket.Ticket, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE reporter_id = $1
		ORDER BY id DESC
	`, subjectID.String())
	if err != nil {
		return nil, oops.Code("TICKET_LIST_BY_REPORTER_FAILED").
			With("operation", "list tickets by reporter").
			With("reporter_id", subjectID.String()).
			Wrap(err)
	}
	return collectTickets(rows)
}

// ListByState returns tickets in a workflow state, newest first.
func (r *TicketRepository) ListByState(ctx context.Context, stateID ulid.ULID) ([]*ticket.Ticket, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM tickets
		WHERE state_id = $1
		ORDER BY id DESC
	`, stateID.String())
	if err != nil {
		return nil, oops.Code("TICKET_LIST_BY_STATE_FAILED").
			With("operation", "list tickets by state").
			With("state_id", stateID.String()).
			Wrap(err)
	}
	return collectTickets(rows)
}

// Update updates an existing ticket.
func (r *TicketRepository) Update(ctx context.Context, t *ticket.Ticket) error {
	result, err := r.db.Exec(ctx, `
		UPDATE tickets SET
			name = $2,
			description = $3,
			assignee_id = $4,
			state_id = $5,
			updated_at = $6
		WHERE id = $1
	`,
		t.ID.String(),
		t.Name,
		t.Description,
		ulidToStringPtr(t.AssigneeID),
		t.StateID.String(),
		t.UpdatedAt,
	)
	if err != nil {
		return oops.Code("TICKET_UPDATE_FAILED").
			With("operation", "update ticket").
			With("id", t.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TICKET_NOT_FOUND").
			With("id", t.ID.String()).
			Wrap(ticket.ErrNotFound)
	}
	return nil
}

// Delete removes a ticket.
func (r *TicketRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.db.Exec(ctx, `
		DELETE FROM tickets WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("TICKET_DELETE_FAILED").
			With("operation", "delete ticket").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("TICKET_NOT_FOUND").
			With("id", id.String()).
			Wrap(ticket.ErrNotFound)
	}
	return nil
}

// collectTickets drains rows into tickets.
func collectTickets(rows pgx.Rows) ([]*ticket.Ticket, error) {
	defer rows.Close()

	var tickets []*ticket.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, oops.Code("TICKET_SCAN_FAILED").
				With("operation", "scan ticket row").
				Wrap(err)
		}
		tickets = append(tickets, t)
	}

	if err := rows.Err(); err != nil {
		return nil, oops.Code("TICKET_ROWS_ERROR").
			With("operation", "iterate ticket rows").
			Wrap(err)
	}

	return tickets, nil
}

// scanTicket scans a single row into a Ticket.
// Callers are responsible for handling pgx.ErrNoRows.
func scanTicket(row pgx.Row) (*ticket.Ticket, error) {
	var (
		idStr         string
		name          string
		description   string
		reporterIDStr string
		assigneeIDStr *string
		stateIDStr    string
		createdAt     time.Time
		updatedAt     time.Time
	)

	err := row.Scan(&idStr, &name, &description, &reporterIDStr, &assigneeIDStr, &stateIDStr, &createdAt, &updatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("TICKET_SCAN_FAILED").
			With("operation", "scan ticket").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("TICKET_INVALID_ID").
			With("operation", "parse ticket id").
			With("id", idStr).
			Wrap(err)
	}

	reporterID, err := ulid.Parse(reporterIDStr)
	if err != nil {
		return nil, oops.Code("TICKET_INVALID_REPORTER_ID").
			With("operation", "parse reporter id").
			With("reporter_id", reporterIDStr).
			Wrap(err)
	}

	assigneeID, err := parseOptionalULID(assigneeIDStr, "assignee_id")
	if err != nil {
		return nil, err
	}

	stateID, err := ulid.Parse(stateIDStr)
	if err != nil {
		return nil, oops.Code("TICKET_INVALID_STATE_ID").
			With("operation", "parse state id").
			With("state_id", stateIDStr).
			Wrap(err)
	}

	return &ticket.Ticket{
		ID:          id,
		Name:        name,
		Description: description,
		ReporterID:  reporterID,
		AssigneeID:  assigneeID,
		StateID:     stateID,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

// ulidToStringPtr converts a ULID pointer to a string pointer for SQL parameters.
func ulidToStringPtr(id *ulid.ULID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// parseOptionalULID parses an optional ULID string pointer.
func parseOptionalULID(strPtr *string, fieldName string) (*ulid.ULID, error) {
	if strPtr == nil {
		return nil, nil
	}
	id, err := ulid.Parse(*strPtr)
	if err != nil {
		return nil, oops.With("operation", "parse "+fieldName).With(fieldName, *strPtr).Wrap(err)
	}
	return &id, nil
}

// Compile-time interface check.
var _ ticket.TicketRepository = (*TicketRepository)(nil)
