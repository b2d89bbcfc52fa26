// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package httpapi_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tickethub/tickethub/internal/auth"
	"github.com/tickethub/tickethub/internal/ticket"
)

// In-memory repositories so handler tests exercise the real services without
// a database. Conflict and not-found behavior mirrors the postgres
// implementations.

type memSubjectRepo struct {
	mu       sync.Mutex
	subjects map[ulid.ULID]*auth.Subject
}

func newMemSubjectRepo() *memSubjectRepo {
	return &memSubjectRepo{subjects: make(map[ulid.ULID]*auth.Subject)}
}

func (r *memSubjectRepo) Create(_ context.Context, subject *auth.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subjects {
		if strings.EqualFold(s.Email, subject.Email) {
			return auth.ErrEmailTaken
		}
		if strings.EqualFold(s.DisplayName, subject.DisplayName) {
			return auth.ErrDisplayNameTaken
		}
	}
	cp := *subject
	r.subjects[subject.ID] = &cp
	return nil
}

func (r *memSubjectRepo) GetByID(_ context.Context, id ulid.ULID) (*auth.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subjects[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSubjectRepo) GetByEmail(_ context.Context, email string) (*auth.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subjects {
		if strings.EqualFold(s.Email, email) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *memSubjectRepo) GetByDisplayName(_ context.Context, displayName string) (*auth.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subjects {
		if strings.EqualFold(s.DisplayName, displayName) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, auth.ErrNotFound
}

func (r *memSubjectRepo) List(_ context.Context, limit, offset int) ([]*auth.Subject, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*auth.Subject, 0, len(r.subjects))
	for _, s := range r.subjects {
		cp := *s
		all = append(all, &cp)
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memSubjectRepo) Update(_ context.Context, subject *auth.Subject) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subjects[subject.ID]; !ok {
		return auth.ErrNotFound
	}
	for id, s := range r.subjects {
		if id == subject.ID {
			continue
		}
		if strings.EqualFold(s.Email, subject.Email) {
			return auth.ErrEmailTaken
		}
		if strings.EqualFold(s.DisplayName, subject.DisplayName) {
			return auth.ErrDisplayNameTaken
		}
	}
	cp := *subject
	r.subjects[subject.ID] = &cp
	return nil
}

func (r *memSubjectRepo) UpdatePassword(_ context.Context, id ulid.ULID, passwordDigest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subjects[id]
	if !ok {
		return auth.ErrNotFound
	}
	s.PasswordDigest = passwordDigest
	return nil
}

func (r *memSubjectRepo) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subjects[id]; !ok {
		return auth.ErrNotFound
	}
	delete(r.subjects, id)
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session // keyed by token hash
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*auth.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, session *auth.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *session
	r.sessions[session.TokenHash] = &cp
	return nil
}

func (r *memSessionRepo) GetByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[tokenHash]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSessionRepo) DeleteByTokenHash(_ context.Context, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[tokenHash]; !ok {
		return false, nil
	}
	delete(r.sessions, tokenHash)
	return true, nil
}

func (r *memSessionRepo) DeleteBySubject(_ context.Context, subjectID ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, s := range r.sessions {
		if s.SubjectID == subjectID {
			delete(r.sessions, hash)
		}
	}
	return nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var count int64
	for hash, s := range r.sessions {
		if s.IsExpiredAt(now) {
			delete(r.sessions, hash)
			count++
		}
	}
	return count, nil
}

type passthroughTransactor struct{}

func (passthroughTransactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memTicketRepo struct {
	mu      sync.Mutex
	tickets map[ulid.ULID]*ticket.Ticket
}

func newMemTicketRepo() *memTicketRepo {
	return &memTicketRepo{tickets: make(map[ulid.ULID]*ticket.Ticket)}
}

func (r *memTicketRepo) Create(_ context.Context, t *ticket.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tickets[t.ID] = &cp
	return nil
}

func (r *memTicketRepo) GetByID(_ context.Context, id ulid.ULID) (*ticket.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tickets[id]
	if !ok {
		return nil, ticket.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTicketRepo) List(_ context.Context, limit, offset int) ([]*ticket.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*ticket.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		cp := *t
		all = append(all, &cp)
	}
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memTicketRepo) ListByReporter(_ context.Context, subjectID ulid.ULID) ([]*ticket.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ticket.Ticket
	for _, t := range r.tickets {
		if t.ReporterID == subjectID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTicketRepo) ListByState(_ context.Context, stateID ulid.ULID) ([]*ticket.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*ticket.Ticket
	for _, t := range r.tickets {
		if t.StateID == stateID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memTicketRepo) Update(_ context.Context, t *ticket.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[t.ID]; !ok {
		return ticket.ErrNotFound
	}
	cp := *t
	r.tickets[t.ID] = &cp
	return nil
}

func (r *memTicketRepo) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return ticket.ErrNotFound
	}
	delete(r.tickets, id)
	return nil
}

func (r *memTicketRepo) referencesState(stateID ulid.ULID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tickets {
		if t.StateID == stateID {
			return true
		}
	}
	return false
}

type memStateRepo struct {
	mu      sync.Mutex
	states  map[ulid.ULID]*ticket.State
	tickets *memTicketRepo // for the restrict-on-delete check
}

func newMemStateRepo(tickets *memTicketRepo) *memStateRepo {
	return &memStateRepo{states: make(map[ulid.ULID]*ticket.State), tickets: tickets}
}

func (r *memStateRepo) Create(_ context.Context, state *ticket.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		if strings.EqualFold(s.Name, state.Name) {
			return ticket.ErrStateNameTaken
		}
	}
	cp := *state
	r.states[state.ID] = &cp
	return nil
}

func (r *memStateRepo) GetByID(_ context.Context, id ulid.ULID) (*ticket.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[id]
	if !ok {
		return nil, ticket.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memStateRepo) GetByName(_ context.Context, name string) (*ticket.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.states {
		if strings.EqualFold(s.Name, name) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, ticket.ErrNotFound
}

func (r *memStateRepo) List(_ context.Context) ([]*ticket.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*ticket.State, 0, len(r.states))
	for _, s := range r.states {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memStateRepo) Rename(_ context.Context, id ulid.ULID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.states[id]
	if !ok {
		return ticket.ErrNotFound
	}
	for otherID, other := range r.states {
		if otherID != id && strings.EqualFold(other.Name, name) {
			return ticket.ErrStateNameTaken
		}
	}
	s.Name = name
	return nil
}

func (r *memStateRepo) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	if _, ok := r.states[id]; !ok {
		r.mu.Unlock()
		return ticket.ErrNotFound
	}
	r.mu.Unlock()

	if r.tickets.referencesState(id) {
		return ticket.ErrStateInUse
	}

	r.mu.Lock()
	delete(r.states, id)
	r.mu.Unlock()
	return nil
}

// Compile-time interface checks.
var (
	_ auth.SubjectRepository  = (*memSubjectRepo)(nil)
	_ auth.SessionRepository  = (*memSessionRepo)(nil)
	_ auth.Transactor         = passthroughTransactor{}
	_ ticket.TicketRepository = (*memTicketRepo)(nil)
	_ ticket.StateRepository  = (*memStateRepo)(nil)
)
