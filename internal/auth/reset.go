// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/oklog/ulid/v2"
)

// PasswordReset is the stored record behind an outstanding reset token.
// ID is the token's jti; only the SHA-256 of the token is kept.
type PasswordReset struct {
	ID         ulid.ULID
	IdentityID ulid.ULID
	TokenHash  string
	ExpiresAt  time.Time
	CreatedAt  time.Time
}

// NewPasswordReset builds the record for a freshly issued reset token.
func NewPasswordReset(identityID ulid.ULID, issued *IssuedToken) *PasswordReset {
	return &PasswordReset{
		ID:         issued.ID,
		IdentityID: identityID,
		TokenHash:  HashToken(issued.Token),
		ExpiresAt:  issued.ExpiresAt,
		CreatedAt:  time.Now().UTC(),
	}
}

// IsExpiredAt reports whether the record has expired at now.
func (r *PasswordReset) IsExpiredAt(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// Matches reports whether token hashes to the stored value.
func (r *PasswordReset) Matches(token string) bool {
	return MatchToken(token, r.TokenHash)
}

// HashToken returns the hex-encoded SHA-256 of token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// MatchToken compares token against a stored hash in constant time.
func MatchToken(token, hash string) bool {
	if token == "" || hash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashToken(token)), []byte(hash)) == 1
}

// PasswordResetRepository manages password reset persistence.
type PasswordResetRepository interface {
	// Create stores a new reset record.
	Create(ctx context.Context, reset *PasswordReset) error

	// Consume atomically removes and returns the record with the given ID.
	// Returns ErrNotFound when no such record exists, which is how a
	// replayed token is detected.
	Consume(ctx context.Context, id ulid.ULID) (*PasswordReset, error)

	// DeleteByIdentity removes all reset records for an identity.
	DeleteByIdentity(ctx context.Context, identityID ulid.ULID) error

	// DeleteExpired removes records that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
