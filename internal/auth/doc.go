// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package auth provides credential handling, identity tokens and the
// account flows built on them.
//
// # Domain Types
//
// Identity, PasswordReset and RevokedToken are created with their
// constructors (NewIdentity, NewPasswordReset, NewRevokedToken).
// Repository implementations receive these pre-validated values.
//
// # Services
//
//   - Service: register, login, token authentication, logout, listing
//   - PasswordResetService: request and complete a password reset
//
// Both are created with constructors that reject nil dependencies. Errors
// returned to callers carry an errutil.Kind; the HTTP layer maps the kind
// to a status and never inspects message text.
package auth
