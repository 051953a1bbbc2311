// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package postgres provides PostgreSQL implementations of content repositories.
package postgres
