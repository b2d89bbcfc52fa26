// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

// Package httpapi exposes the TicketHub services over a REST API.
package httpapi

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/tickethub/tickethub/internal/auth"
	"github.com/tickethub/tickethub/internal/observability"
	"github.com/tickethub/tickethub/internal/ticket"
)

// API holds the dependencies needed by the REST handlers.
type API struct {
	auth     *auth.Service
	subjects *auth.SubjectService
	guard    *auth.Guard
	tickets  *ticket.Service
	states   *ticket.StateService
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// Option configures the API instance.
type Option func(*API)

// WithLogger sets the structured logger for handler errors.
// If not set, log records are discarded.
func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.logger = logger
	}
}

// WithMetrics enables request and login counters.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(a *API) {
		a.metrics = metrics
	}
}

// New creates a new API instance.
func New(authSvc *auth.Service, subjects *auth.SubjectService, guard *auth.Guard, tickets *ticket.Service, states *ticket.StateService, opts ...Option) *API {
	a := &API{
		auth:     authSvc,
		subjects: subjects,
		guard:    guard,
		tickets:  tickets,
		states:   states,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.New(slog.DiscardHandler)
	}
	return a
}

// Router returns a chi.Router with all API routes mounted.
func (a *API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(a.countRequests)

	r.Post("/auth/register", a.Register)
	r.Post("/auth/login", a.Login)
	r.Post("/auth/logout", a.Logout)
	r.With(a.RequireAuth).Get("/auth/whoami", a.Whoami)

	r.Route("/subjects", func(r chi.Router) {
		r.Use(a.RequireAuth)
		r.Get("/", a.ListSubjects)
		r.Get("/{subjectID}", a.GetSubject)
		r.Patch("/{subjectID}", a.UpdateSubject)
		r.Post("/{subjectID}/password", a.ChangePassword)
		r.Delete("/{subjectID}", a.DeleteSubject)
	})

	r.Route("/tickets", func(r chi.Router) {
		r.Use(a.RequireAuth)
		r.Post("/", a.CreateTicket)
		r.Get("/", a.ListTickets)
		r.Get("/{ticketID}", a.GetTicket)
		r.Patch("/{ticketID}", a.UpdateTicket)
		r.Delete("/{ticketID}", a.DeleteTicket)
	})

	r.Route("/states", func(r chi.Router) {
		r.Use(a.RequireAuth)
		r.Post("/", a.CreateState)
		r.Get("/", a.ListStates)
		r.Get("/{stateID}", a.GetState)
		r.Patch("/{stateID}", a.RenameState)
		r.Delete("/{stateID}", a.DeleteState)
	})

	return r
}
