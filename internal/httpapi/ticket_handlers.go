// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package httpapi

import (
	"net/http"

	"github.com/oklog/ulid/v2"

	"github.com/tickethub/tickethub/internal/ticket"
)

// parseOptionalULIDField parses an optional ULID string from a request body.
// On failure it writes a 400 response and returns ok=false.
func parseOptionalULIDField(w http.ResponseWriter, value *string, field string) (*ulid.ULID, bool) {
	if value == nil {
		return nil, true
	}
	id, err := ulid.Parse(*value)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+field)
		return nil, false
	}
	return &id, true
}

// CreateTicket handles POST /tickets.
// The reporter is always the authenticated subject.
func (a *API) CreateTicket(w http.ResponseWriter, r *http.Request) {
	subject := SubjectFromContext(r.Context())
	if subject == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	req, ok := decodeJSON[CreateTicketRequest](w, r)
	if !ok {
		return
	}

	stateID, err := ulid.Parse(req.StateID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid state_id")
		return
	}
	assigneeID, ok := parseOptionalULIDField(w, req.AssigneeID, "assignee_id")
	if !ok {
		return
	}

	created, err := a.tickets.Create(r.Context(), ticket.CreateTicketInput{
		Name:        req.Name,
		Description: req.Description,
		ReporterID:  subject.ID,
		AssigneeID:  assigneeID,
		StateID:     stateID,
	})
	if err != nil {
		a.logErr("create ticket failed", err)
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, ticketToAPI(created))
}

// ListTickets handles GET /tickets.
// Optional reporter_id and state_id query parameters filter the listing.
func (a *API) ListTickets(w http.ResponseWriter, r *http.Request) {
	if v := r.URL.Query().Get("reporter_id"); v != "" {
		reporterID, err := ulid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid reporter_id")
			return
		}
		tickets, err := a.tickets.ListByReporter(r.Context(), reporterID)
		if err != nil {
			a.logErr("list tickets failed", err)
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ticketsToAPI(tickets))
		return
	}

	if v := r.URL.Query().Get("state_id"); v != "" {
		stateID, err := ulid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid state_id")
			return
		}
		tickets, err := a.tickets.ListByState(r.Context(), stateID)
		if err != nil {
			a.logErr("list tickets failed", err)
			mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ticketsToAPI(tickets))
		return
	}

	limit, offset := parsePagination(r)
	tickets, err := a.tickets.List(r.Context(), limit, offset)
	if err != nil {
		a.logErr("list tickets failed", err)
		mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ticketsToAPI(tickets))
}

// GetTicket handles GET /tickets/{ticketID}.
func (a *API) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := parseULIDParam(w, r, "ticketID")
	if !ok {
		return
	}

	t, err := a.tickets.Get(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticketToAPI(t))
}

// UpdateTicket handles PATCH /tickets/{ticketID}.
func (a *API) UpdateTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := parseULIDParam(w, r, "ticketID")
	if !ok {
		return
	}

	req, ok := decodeJSON[UpdateTicketRequest](w, r)
	if !ok {
		return
	}

	assigneeID, ok := parseOptionalULIDField(w, req.AssigneeID, "assignee_id")
	if !ok {
		return
	}
	var stateID *ulid.ULID
	if stateID, ok = parseOptionalULIDField(w, req.StateID, "state_id"); !ok {
		return
	}

	updated, err := a.tickets.Update(r.Context(), id, ticket.TicketUpdate{
		Name:          req.Name,
		Description:   req.Description,
		AssigneeID:    assigneeID,
		ClearAssignee: req.ClearAssignee,
		StateID:       stateID,
	})
	if err != nil {
		a.logErr("update ticket failed", err)
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ticketToAPI(updated))
}

// DeleteTicket handles DELETE /tickets/{ticketID}.
func (a *API) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := parseULIDParam(w, r, "ticketID")
	if !ok {
		return
	}

	if err := a.tickets.Remove(r.Context(), id); err != nil {
		a.logErr("delete ticket failed", err)
		mapError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
