// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package postgres

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mediahub/mediahub/internal/auth"
	"github.com/mediahub/mediahub/internal/store"
)

// RevocationRepository implements auth.RevocationRepository using PostgreSQL.
type RevocationRepository struct {
	db store.Querier
}

// NewRevocationRepository creates a new RevocationRepository.
func NewRevocationRepository(db store.Querier) *RevocationRepository {
	return &RevocationRepository{db: db}
}

// Revoke records a revoked token. Revoking the same token twice is a no-op.
func (r *RevocationRepository) Revoke(ctx context.Context, token *auth.RevokedToken) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO revoked_tokens (id, identity_id, expires_at, revoked_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, token.ID.String(), token.IdentityID.String(), token.ExpiresAt, token.RevokedAt)
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return oops.Code("REVOCATION_UNKNOWN_IDENTITY").
				With("identity_id", token.IdentityID.String()).
				Wrap(auth.ErrNotFound)
		}
		return oops.Code("REVOCATION_CREATE_FAILED").
			With("operation", "insert revoked_token").
			With("token_id", token.ID.String()).
			Wrap(err)
	}
	return nil
}

// IsRevoked reports whether the token with the given ID was revoked.
func (r *RevocationRepository) IsRevoked(ctx context.Context, id ulid.ULID) (bool, error) {
	var revoked bool
	err := store.Conn(ctx, r.db).QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM revoked_tokens WHERE id = $1)
	`, id.String()).Scan(&revoked)
	if err != nil {
		return false, oops.Code("REVOCATION_LOOKUP_FAILED").
			With("operation", "lookup revoked_token").
			With("token_id", id.String()).
			Wrap(err)
	}
	return revoked, nil
}

// DeleteExpired removes entries whose token expired at or before now. An
// expired token fails verification on its own, so its entry is no longer
// needed.
func (r *RevocationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		DELETE FROM revoked_tokens WHERE expires_at <= $1
	`, now)
	if err != nil {
		return 0, oops.Code("REVOCATION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired revoked_tokens").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.RevocationRepository = (*RevocationRepository)(nil)
