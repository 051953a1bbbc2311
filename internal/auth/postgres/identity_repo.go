// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mediahub/mediahub/internal/access"
	"github.com/mediahub/mediahub/internal/auth"
	"github.com/mediahub/mediahub/internal/store"
)

// Unique indexes on identities, see migrations/000001_identities.up.sql.
const (
	emailConstraint    = "identities_email_key"
	nickNameConstraint = "identities_nick_name_key"
)

// registrationLockKey is the advisory lock taken by LockRegistrations.
const registrationLockKey int64 = 0x6d6564696168 // "mediah"

const identityColumns = `id, email, nick_name, first_name, last_name, password_hash, role, created_at, updated_at`

// IdentityRepository implements auth.IdentityRepository using PostgreSQL.
type IdentityRepository struct {
	db store.Querier
}

// NewIdentityRepository creates a new IdentityRepository.
func NewIdentityRepository(db store.Querier) *IdentityRepository {
	return &IdentityRepository{db: db}
}

// Create stores a new identity.
func (r *IdentityRepository) Create(ctx context.Context, identity *auth.Identity) error {
	_, err := store.Conn(ctx, r.db).Exec(ctx, `
		INSERT INTO identities (`+identityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, identity.ID.String(), identity.Email, identity.NickName, identity.FirstName, identity.LastName,
		identity.PasswordHash, identity.Role.String(), identity.CreatedAt, identity.UpdatedAt)
	if err == nil {
		return nil
	}

	if constraint, ok := store.UniqueViolation(err); ok {
		switch constraint {
		case emailConstraint:
			return oops.Code("IDENTITY_EMAIL_TAKEN").With("constraint", constraint).Wrap(auth.ErrEmailTaken)
		case nickNameConstraint:
			return oops.Code("IDENTITY_NICKNAME_TAKEN").With("constraint", constraint).Wrap(auth.ErrNickNameTaken)
		}
	}
	return oops.Code("IDENTITY_CREATE_FAILED").
		With("operation", "insert identity").
		With("identity_id", identity.ID.String()).
		Wrap(err)
}

// Count returns the number of stored identities.
func (r *IdentityRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := store.Conn(ctx, r.db).QueryRow(ctx, `SELECT COUNT(*) FROM identities`).Scan(&n); err != nil {
		return 0, oops.Code("IDENTITY_COUNT_FAILED").With("operation", "count identities").Wrap(err)
	}
	return n, nil
}

// LockRegistrations takes a transaction-scoped advisory lock. Outside a
// transaction the lock would be released immediately, so that is an error.
func (r *IdentityRepository) LockRegistrations(ctx context.Context) error {
	if !store.InTx(ctx) {
		return oops.Code("IDENTITY_LOCK_NO_TX").Errorf("registration lock requires a transaction")
	}
	if _, err := store.Conn(ctx, r.db).Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, registrationLockKey); err != nil {
		return oops.Code("IDENTITY_LOCK_FAILED").With("operation", "lock registrations").Wrap(err)
	}
	return nil
}

// GetByID retrieves an identity by ID.
func (r *IdentityRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Identity, error) {
	return r.getOne(ctx, "id", `WHERE id = $1`, id.String())
}

// GetByEmail retrieves an identity by email, ignoring case.
func (r *IdentityRepository) GetByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	return r.getOne(ctx, "email", `WHERE LOWER(email) = LOWER($1)`, email)
}

// GetByNickName retrieves an identity by nickname, ignoring case.
func (r *IdentityRepository) GetByNickName(ctx context.Context, nickName string) (*auth.Identity, error) {
	return r.getOne(ctx, "nick_name", `WHERE LOWER(nick_name) = LOWER($1)`, nickName)
}

// GetByIdentifier retrieves an identity whose email or nickname matches.
// An email match wins when both columns match different rows.
func (r *IdentityRepository) GetByIdentifier(ctx context.Context, identifier string) (*auth.Identity, error) {
	return r.getOne(ctx, "identifier", `
		WHERE LOWER(email) = LOWER($1) OR LOWER(nick_name) = LOWER($1)
		ORDER BY (LOWER(email) = LOWER($1)) DESC
		LIMIT 1`, identifier)
}

func (r *IdentityRepository) getOne(ctx context.Context, key, where string, arg string) (*auth.Identity, error) {
	row := store.Conn(ctx, r.db).QueryRow(ctx, `SELECT `+identityColumns+` FROM identities `+where, arg)

	identity, err := scanIdentity(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("IDENTITY_NOT_FOUND").With(key, arg).Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return identity, nil
}

// UpdatePassword replaces the password hash for an identity.
func (r *IdentityRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := store.Conn(ctx, r.db).Exec(ctx, `
		UPDATE identities SET password_hash = $2, updated_at = $3 WHERE id = $1
	`, id.String(), passwordHash, time.Now().UTC())
	if err != nil {
		return oops.Code("IDENTITY_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("identity_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("IDENTITY_NOT_FOUND").With("id", id.String()).Wrap(auth.ErrNotFound)
	}
	return nil
}

// List returns all identities ordered by creation time.
func (r *IdentityRepository) List(ctx context.Context) ([]*auth.Identity, error) {
	rows, err := store.Conn(ctx, r.db).Query(ctx, `
		SELECT `+identityColumns+` FROM identities ORDER BY created_at, id
	`)
	if err != nil {
		return nil, oops.Code("IDENTITY_LIST_FAILED").With("operation", "list identities").Wrap(err)
	}
	defer rows.Close()

	var identities []*auth.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("IDENTITY_LIST_FAILED").With("operation", "iterate identities").Wrap(err)
	}
	return identities, nil
}

// scanIdentity scans a single row into an Identity.
// Callers are responsible for handling pgx.ErrNoRows.
func scanIdentity(row pgx.Row) (*auth.Identity, error) {
	var (
		idStr   string
		roleStr string
		i       auth.Identity
	)

	err := row.Scan(&idStr, &i.Email, &i.NickName, &i.FirstName, &i.LastName,
		&i.PasswordHash, &roleStr, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with lookup context
		}
		return nil, oops.Code("IDENTITY_SCAN_FAILED").With("operation", "scan identity").Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("IDENTITY_INVALID_ID").With("id", idStr).Wrap(err)
	}
	role, err := access.ParseRole(roleStr)
	if err != nil {
		return nil, oops.Code("IDENTITY_INVALID_ROLE").With("id", idStr).Wrap(err)
	}

	i.ID = id
	i.Role = role
	return &i, nil
}

// Compile-time interface check.
var _ auth.IdentityRepository = (*IdentityRepository)(nil)
