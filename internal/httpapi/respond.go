// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tickethub/tickethub/internal/auth"
	"github.com/tickethub/tickethub/internal/ticket"
	"github.com/tickethub/tickethub/pkg/errutil"
)

// maxBodySize bounds request bodies. All API payloads are small JSON objects.
const maxBodySize = 64 * 1024

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // response write errors mean the client went away
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeErrorCode(w http.ResponseWriter, status int, msg, code string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

// decodeJSON reads at most maxBodySize bytes of JSON into T.
// On failure it writes a 400 response and returns ok=false.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return v, false
	}
	return v, true
}

// validationCodes are error codes that indicate a rejected input rather than
// a server fault.
var validationCodes = map[string]bool{
	"AUTH_INVALID_NAME":       true,
	"AUTH_INVALID_EMAIL":      true,
	"AUTH_INVALID_PASSWORD":   true,
	"TICKET_INVALID_NAME":     true,
	"STATE_INVALID_NAME":      true,
	"TICKET_UNKNOWN_STATE":    true,
	"TICKET_UNKNOWN_ASSIGNEE": true,
}

// mapError translates service errors into HTTP responses. Conflicts and
// not-found conditions are matched by sentinel; validation failures by code.
// Anything unrecognized is a 500 with a generic message so internals never
// leak to clients.
func mapError(w http.ResponseWriter, err error) {
	code := errutil.CodeOf(err)

	switch {
	case errors.Is(err, auth.ErrUnauthenticated):
		writeErrorCode(w, http.StatusUnauthorized, "authentication required", code)
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, ticket.ErrNotFound):
		writeErrorCode(w, http.StatusNotFound, "not found", code)
	case errors.Is(err, auth.ErrEmailTaken):
		writeErrorCode(w, http.StatusConflict, "email is already taken", code)
	case errors.Is(err, auth.ErrDisplayNameTaken):
		writeErrorCode(w, http.StatusConflict, "display name is already taken", code)
	case errors.Is(err, ticket.ErrStateNameTaken):
		writeErrorCode(w, http.StatusConflict, "state name is already taken", code)
	case errors.Is(err, ticket.ErrStateInUse):
		writeErrorCode(w, http.StatusConflict, "state is referenced by tickets", code)
	case code == "AUTH_INVALID_CREDENTIALS":
		writeErrorCode(w, http.StatusUnauthorized, "invalid email or password", code)
	case validationCodes[code]:
		writeErrorCode(w, http.StatusBadRequest, err.Error(), code)
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
