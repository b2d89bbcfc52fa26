// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/tickethub/tickethub/internal/auth"
	"github.com/tickethub/tickethub/pkg/errutil"
)

type contextKey int

const subjectKey contextKey = iota

// RequireAuth resolves the Authorization header to a subject and stores it
// on the request context. Requests without a live session get a 401.
func (a *API) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, err := a.guard.Authenticate(r.Context(), r.Header.Get("Authorization"))
		if err != nil {
			mapError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SubjectFromContext returns the authenticated subject stored by RequireAuth,
// or nil when the request was not authenticated.
func SubjectFromContext(ctx context.Context) *auth.Subject {
	subject, _ := ctx.Value(subjectKey).(*auth.Subject)
	return subject
}

// statusRecorder captures the response status for the request counter.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// countRequests records every request in the request counter metric.
// A no-op when the API was built without metrics.
func (a *API) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.metrics.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
	})
}

// logErr logs a handler error through the API logger with oops context.
func (a *API) logErr(msg string, err error) {
	errutil.LogError(a.logger, msg, err)
}
