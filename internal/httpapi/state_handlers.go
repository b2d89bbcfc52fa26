// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package httpapi

import (
	"net/http"
)

// CreateState handles POST /states.
func (a *API) CreateState(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[StateRequest](w, r)
	if !ok {
		return
	}

	state, err := a.states.Create(r.Context(), req.Name)
	if err != nil {
		a.logErr("create state failed", err)
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, stateToAPI(state))
}

// ListStates handles GET /states.
func (a *API) ListStates(w http.ResponseWriter, r *http.Request) {
	states, err := a.states.List(r.Context())
	if err != nil {
		a.logErr("list states failed", err)
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statesToAPI(states))
}

// GetState handles GET /states/{stateID}.
func (a *API) GetState(w http.ResponseWriter, r *http.Request) {
	id, ok := parseULIDParam(w, r, "stateID")
	if !ok {
		return
	}

	state, err := a.states.Get(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateToAPI(state))
}

// RenameState handles PATCH /states/{stateID}.
func (a *API) RenameState(w http.ResponseWriter, r *http.Request) {
	id, ok := parseULIDParam(w, r, "stateID")
	if !ok {
		return
	}

	req, ok := decodeJSON[StateRequest](w, r)
	if !ok {
		return
	}

	if err := a.states.Rename(r.Context(), id, req.Name); err != nil {
		a.logErr("rename state failed", err)
		mapError(w, err)
		return
	}

	state, err := a.states.Get(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stateToAPI(state))
}

// DeleteState handles DELETE /states/{stateID}.
// States still referenced by tickets cannot be removed.
func (a *API) DeleteState(w http.ResponseWriter, r *http.Request) {
	id, ok := parseULIDParam(w, r, "stateID")
	if !ok {
		return
	}

	if err := a.states.Remove(r.Context(), id); err != nil {
		a.logErr("delete state failed", err)
		mapError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
