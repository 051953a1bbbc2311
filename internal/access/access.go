// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package access provides authorization decisions for MediaHub.
//
// Decisions are pure functions over a Principal, the verified identity
// attached to a request context by the HTTP middleware. Two policies exist:
// role membership and ownership of a resource (optionally overridden by a
// role). Roles are passed as parameters so adding a Role does not change
// the decision functions.
package access

import (
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mediahub/mediahub/pkg/errutil"
)

// RequireRole fails with a Forbidden error unless p holds role.
func RequireRole(p Principal, role Role) error {
	if p.Role != role {
		return errutil.WithKind(errutil.KindForbidden, oops.Code("ACCESS_ROLE_REQUIRED").
			With("identity_id", p.ID.String()).
			With("role", p.Role.String()).
			With("required_role", role.String()).
			Errorf("%s role required", role))
	}
	return nil
}

// RequireOwner fails with a Forbidden error unless p owns the resource.
// Roles never grant an exception.
func RequireOwner(p Principal, ownerID ulid.ULID) error {
	if p.ID != ownerID {
		return errutil.WithKind(errutil.KindForbidden, oops.Code("ACCESS_NOT_OWNER").
			With("identity_id", p.ID.String()).
			With("owner_id", ownerID.String()).
			Errorf("not the owner of this resource"))
	}
	return nil
}

// RequireOwnerOrRole succeeds iff p owns the resource or holds role.
func RequireOwnerOrRole(p Principal, ownerID ulid.ULID, role Role) error {
	if p.ID == ownerID || p.Role == role {
		return nil
	}
	return errutil.WithKind(errutil.KindForbidden, oops.Code("ACCESS_NOT_OWNER_OR_ROLE").
		With("identity_id", p.ID.String()).
		With("owner_id", ownerID.String()).
		With("required_role", role.String()).
		Errorf("not the owner of this resource"))
}
