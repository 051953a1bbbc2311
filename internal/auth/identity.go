// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mediahub/mediahub/internal/access"
)

// Identity is a registered account.
type Identity struct {
	ID           ulid.ULID
	Email        string
	NickName     string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         access.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewIdentity creates an Identity with a fresh ID. Inputs are expected to
// have passed ValidateRegistration.
func NewIdentity(email, nickName, firstName, lastName, passwordHash string, role access.Role) (*Identity, error) {
	if passwordHash == "" {
		return nil, oops.Code("IDENTITY_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	if !role.Valid() {
		return nil, oops.Code("IDENTITY_INVALID_ROLE").With("role", role.String()).Errorf("invalid role")
	}

	now := time.Now().UTC()
	return &Identity{
		ID:           ulid.Make(),
		Email:        strings.TrimSpace(email),
		NickName:     strings.TrimSpace(nickName),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Principal returns the authorization view of the identity.
func (i *Identity) Principal() access.Principal {
	return access.Principal{
		ID:       i.ID,
		Email:    i.Email,
		NickName: i.NickName,
		Role:     i.Role,
	}
}

// Public returns the identity without its credential.
func (i *Identity) Public() PublicIdentity {
	return PublicIdentity{
		ID:        i.ID.String(),
		Email:     i.Email,
		FirstName: i.FirstName,
		LastName:  i.LastName,
		NickName:  i.NickName,
		CreatedAt: i.CreatedAt,
		Role:      i.Role,
	}
}

// PublicIdentity is the outward representation of an Identity. It has no
// credential field, so it cannot leak one.
type PublicIdentity struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	NickName  string      `json:"nickName"`
	CreatedAt time.Time   `json:"createdAt"`
	Role      access.Role `json:"role"`
}

// IdentityRepository manages identity persistence.
type IdentityRepository interface {
	// Create stores a new identity. Returns an error wrapping ErrEmailTaken
	// or ErrNickNameTaken when a unique constraint rejects the row.
	Create(ctx context.Context, identity *Identity) error

	// Count returns the number of stored identities.
	Count(ctx context.Context) (int64, error)

	// LockRegistrations serializes registrations until the surrounding
	// transaction ends. Must be called inside Transactor.InTransaction.
	LockRegistrations(ctx context.Context) error

	// GetByID retrieves an identity by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Identity, error)

	// GetByEmail retrieves an identity by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*Identity, error)

	// GetByNickName retrieves an identity by nickname (case-insensitive).
	GetByNickName(ctx context.Context, nickName string) (*Identity, error)

	// GetByIdentifier retrieves an identity whose email or nickname
	// matches identifier (case-insensitive).
	GetByIdentifier(ctx context.Context, identifier string) (*Identity, error)

	// UpdatePassword replaces the password hash for an identity.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// List returns all identities ordered by creation time.
	List(ctx context.Context) ([]*Identity, error)
}

// Transactor runs fn inside a storage transaction. Repository calls made
// with the context passed to fn participate in that transaction.
type Transactor interface {
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
