// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Uniqueness violations reported by IdentityRepository.Create. Repositories
// wrap these so the service can name the colliding field.
var (
	ErrEmailTaken    = errors.New("email already in use")
	ErrNickNameTaken = errors.New("nickname already in use")
)
