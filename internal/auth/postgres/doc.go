// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package postgres provides PostgreSQL implementations of auth repositories.
//
// Every repository resolves its connection through store.Conn, so calls made
// inside store.Transactor.InTransaction join the surrounding transaction.
package postgres
