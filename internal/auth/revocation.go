// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// RevokedToken is a denylist entry for a logged-out identity token. It is
// only needed until the token would have expired on its own.
type RevokedToken struct {
	ID         ulid.ULID // jti of the revoked token
	IdentityID ulid.ULID
	ExpiresAt  time.Time
	RevokedAt  time.Time
}

// NewRevokedToken builds a denylist entry from verified identity claims.
func NewRevokedToken(claims *IdentityClaims) (*RevokedToken, error) {
	id, err := ulid.Parse(claims.ID)
	if err != nil {
		return nil, oops.Code("REVOCATION_INVALID_JTI").With("jti", claims.ID).Wrap(err)
	}
	identityID, err := ulid.Parse(claims.Subject)
	if err != nil {
		return nil, oops.Code("REVOCATION_INVALID_SUBJECT").With("sub", claims.Subject).Wrap(err)
	}
	if claims.ExpiresAt == nil {
		return nil, oops.Code("REVOCATION_INVALID_EXPIRY").Errorf("token has no expiry")
	}

	return &RevokedToken{
		ID:         id,
		IdentityID: identityID,
		ExpiresAt:  claims.ExpiresAt.Time,
		RevokedAt:  time.Now().UTC(),
	}, nil
}

// RevocationRepository stores the logout denylist.
type RevocationRepository interface {
	// Revoke records the entry. Revoking an already revoked token is not
	// an error.
	Revoke(ctx context.Context, token *RevokedToken) error

	// IsRevoked reports whether the token with the given jti was revoked.
	IsRevoked(ctx context.Context, id ulid.ULID) (bool, error)

	// DeleteExpired removes entries whose tokens expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
