// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package access

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mediahub/mediahub/pkg/errutil"
)

// Principal is the authenticated identity behind a request.
type Principal struct {
	ID       ulid.ULID
	Email    string
	NickName string
	Role     Role
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached to ctx, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	if !ok || p.ID.Compare(ulid.ULID{}) == 0 {
		return Principal{}, false
	}
	return p, true
}

// RequireAuthenticated returns the principal attached to ctx, or an
// Unauthorized error when the request carries no verified identity.
func RequireAuthenticated(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return Principal{}, errutil.WithKind(errutil.KindUnauthorized,
			oops.Code("ACCESS_UNAUTHENTICATED").Errorf("Authentication required"))
	}
	return p, nil
}
