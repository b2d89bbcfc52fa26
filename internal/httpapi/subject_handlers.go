// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package httpapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"

	"github.com/tickethub/tickethub/internal/auth"
)

// parseULIDParam parses the named URL parameter as a ULID.
// On failure it writes a 400 response and returns ok=false.
func parseULIDParam(w http.ResponseWriter, r *http.Request, name string) (ulid.ULID, bool) {
	id, err := ulid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return ulid.ULID{}, false
	}
	return id, true
}

// parsePagination reads limit and offset query parameters with defaults.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// requireSelf ensures the authenticated subject is operating on itself.
// Subjects may only modify their own account.
func requireSelf(w http.ResponseWriter, r *http.Request, id ulid.ULID) *auth.Subject {
	subject := SubjectFromContext(r.Context())
	if subject == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	if subject.ID != id {
		writeError(w, http.StatusForbidden, "cannot modify another subject")
		return nil
	}
	return subject
}

// ListSubjects handles GET /subjects.
func (a *API) ListSubjects(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	subjects, err := a.subjects.List(r.Context(), limit, offset)
	if err != nil {
		a.logErr("list subjects failed", err)
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subjectsToAPI(subjects))
}

// GetSubject handles GET /subjects/{subjectID}.
func (a *API) GetSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseULIDParam(w, r, "subjectID")
	if !ok {
		return
	}

	subject, err := a.subjects.Get(r.Context(), id)
	if err != nil {
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subject.Redacted())
}

// UpdateSubject handles PATCH /subjects/{subjectID}.
// Subjects may only update their own profile.
func (a *API) UpdateSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseULIDParam(w, r, "subjectID")
	if !ok {
		return
	}
	if requireSelf(w, r, id) == nil {
		return
	}

	req, ok := decodeJSON[UpdateProfileRequest](w, r)
	if !ok {
		return
	}

	subject, err := a.subjects.UpdateProfile(r.Context(), id, auth.ProfileUpdate{
		DisplayName: req.DisplayName,
		Email:       req.Email,
	})
	if err != nil {
		a.logErr("update profile failed", err)
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, subject.Redacted())
}

// ChangePassword handles POST /subjects/{subjectID}/password.
func (a *API) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, ok := parseULIDParam(w, r, "subjectID")
	if !ok {
		return
	}
	if requireSelf(w, r, id) == nil {
		return
	}

	req, ok := decodeJSON[ChangePasswordRequest](w, r)
	if !ok {
		return
	}

	if err := a.subjects.ChangePassword(r.Context(), id, req.OldPassword, req.NewPassword); err != nil {
		a.logErr("change password failed", err)
		mapError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteSubject handles DELETE /subjects/{subjectID}.
// Removes the subject and its sessions in one transaction.
func (a *API) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := parseULIDParam(w, r, "subjectID")
	if !ok {
		return
	}
	if requireSelf(w, r, id) == nil {
		return
	}

	if err := a.subjects.Remove(r.Context(), id); err != nil {
		a.logErr("delete subject failed", err)
		mapError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
