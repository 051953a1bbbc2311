// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package content holds comments and likes on media items, and the Guard
// that puts every mutation behind the access policy.
//
// Edit is owner-only. Delete is owner or ADMIN. Liking needs only an
// authenticated caller; the storage layer's (comment, owner) uniqueness
// keeps concurrent toggles from producing duplicate likes.
package content
