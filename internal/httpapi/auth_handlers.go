// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package httpapi

import (
	"net/http"

	"github.com/tickethub/tickethub/internal/auth"
)

// Register handles POST /auth/register.
// Creates a new subject and returns its redacted projection.
func (a *API) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[RegisterRequest](w, r)
	if !ok {
		return
	}

	subject, err := a.auth.Register(r.Context(), req.DisplayName, req.Email, req.Password)
	if err != nil {
		a.logErr("register failed", err)
		mapError(w, err)
		return
	}

	if a.metrics != nil {
		a.metrics.RegistrationsTotal.Inc()
	}
	writeJSON(w, http.StatusCreated, subject.Redacted())
}

// Login handles POST /auth/login.
// Issues a fresh session token, superseding any existing session.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[LoginRequest](w, r)
	if !ok {
		return
	}

	session, token, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if a.metrics != nil {
			a.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		}
		a.logErr("login failed", err)
		mapError(w, err)
		return
	}

	if a.metrics != nil {
		a.metrics.LoginsTotal.WithLabelValues("success").Inc()
	}
	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		SubjectID: session.SubjectID.String(),
		ExpiresAt: session.ExpiresAt,
	})
}

// Logout handles POST /auth/logout.
// Terminates the session presented in the Authorization header. Always
// returns 200; the body reports whether a live session was removed.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.ParseBearerToken(r.Header.Get("Authorization"))

	removed, err := a.auth.Logout(r.Context(), token)
	if err != nil {
		a.logErr("logout failed", err)
		mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LogoutResponse{Removed: removed})
}

// Whoami handles GET /auth/whoami.
// Returns the subject behind the presented session.
func (a *API) Whoami(w http.ResponseWriter, r *http.Request) {
	subject := SubjectFromContext(r.Context())
	if subject == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, subject.Redacted())
}
