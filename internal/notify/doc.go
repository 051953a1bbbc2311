// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package notify delivers password-reset links to identities.
package notify
