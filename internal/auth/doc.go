// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TicketHub Contributors

// Package auth provides the credential and session core of TicketHub.
//
// # Domain Types
//
// Domain types (Subject, Session) should be created using their
// constructors:
//   - NewSubject - creates a Subject with a validated display name and email
//   - NewSession - creates a Session bound to a subject and token hash
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Services
//
// Service types coordinate domain operations:
//   - Service - registration, login, logout
//   - SubjectService - profile updates, password changes, account removal
//   - Guard - per-request bearer-token authorization
//
// Services are created with New* constructors that validate dependencies.
package auth
