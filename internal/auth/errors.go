// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

package auth

import "errors"

// Sentinel errors used across the auth domain. Repositories wrap these with
// oops codes and context; callers test with errors.Is.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrEmailTaken is returned when a subject with the email already exists.
	ErrEmailTaken = errors.New("email already in use")

	// ErrDisplayNameTaken is returned when a subject with the display name
	// already exists.
	ErrDisplayNameTaken = errors.New("display name already in use")

	// ErrUnauthenticated is returned by the Guard when a request cannot be
	// resolved to an authenticated subject.
	ErrUnauthenticated = errors.New("unauthenticated")
)
