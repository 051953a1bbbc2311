// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package web exposes the auth and content operations over HTTP.
//
// Handlers decode JSON, call the domain services and translate the error
// kind from pkg/errutil into a status code. They never inspect message
// text.
package web
