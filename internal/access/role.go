// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package access

import (
	"strings"

	"github.com/samber/oops"
)

// Role is an identity's role. The set is closed: only the constants below
// are valid.
type Role string

// Known roles.
const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole parses a role name case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", oops.Code("ACCESS_INVALID_ROLE").With("role", s).Errorf("unknown role %q", s)
	}
	return r, nil
}
