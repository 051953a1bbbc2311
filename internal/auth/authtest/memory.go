// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package authtest provides in-memory implementations of the auth
// repositories for tests. They enforce the same uniqueness rules as the
// Postgres schema and are safe for concurrent use.
package authtest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/mediahub/mediahub/internal/auth"
)

// Transactor serializes transactions. There is no rollback; a failed
// transaction leaves whatever writes it made.
type Transactor struct {
	mu sync.Mutex
}

// InTransaction runs fn while holding the transaction lock.
func (t *Transactor) InTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}

// IdentityStore is an in-memory auth.IdentityRepository.
type IdentityStore struct {
	mu   sync.RWMutex
	byID map[ulid.ULID]*auth.Identity
}

// NewIdentityStore creates an empty IdentityStore.
func NewIdentityStore() *IdentityStore {
	return &IdentityStore{byID: make(map[ulid.ULID]*auth.Identity)}
}

func clone(i *auth.Identity) *auth.Identity {
	c := *i
	return &c
}

// Create stores a copy of identity.
func (s *IdentityStore) Create(_ context.Context, identity *auth.Identity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if strings.EqualFold(existing.Email, identity.Email) {
			return fmt.Errorf("create identity: %w", auth.ErrEmailTaken)
		}
		if strings.EqualFold(existing.NickName, identity.NickName) {
			return fmt.Errorf("create identity: %w", auth.ErrNickNameTaken)
		}
	}
	s.byID[identity.ID] = clone(identity)
	return nil
}

// Count returns the number of identities.
func (s *IdentityStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.byID)), nil
}

// LockRegistrations is a no-op; Transactor already serializes.
func (s *IdentityStore) LockRegistrations(_ context.Context) error {
	return nil
}

// GetByID returns the identity with id.
func (s *IdentityStore) GetByID(_ context.Context, id ulid.ULID) (*auth.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.byID[id]; ok {
		return clone(i), nil
	}
	return nil, auth.ErrNotFound
}

func (s *IdentityStore) find(match func(*auth.Identity) bool) (*auth.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, i := range s.byID {
		if match(i) {
			return clone(i), nil
		}
	}
	return nil, auth.ErrNotFound
}

// GetByEmail returns the identity with email, ignoring case.
func (s *IdentityStore) GetByEmail(_ context.Context, email string) (*auth.Identity, error) {
	return s.find(func(i *auth.Identity) bool { return strings.EqualFold(i.Email, email) })
}

// GetByNickName returns the identity with nickName, ignoring case.
func (s *IdentityStore) GetByNickName(_ context.Context, nickName string) (*auth.Identity, error) {
	return s.find(func(i *auth.Identity) bool { return strings.EqualFold(i.NickName, nickName) })
}

// GetByIdentifier matches identifier against email or nickname.
func (s *IdentityStore) GetByIdentifier(_ context.Context, identifier string) (*auth.Identity, error) {
	return s.find(func(i *auth.Identity) bool {
		return strings.EqualFold(i.Email, identifier) || strings.EqualFold(i.NickName, identifier)
	})
}

// UpdatePassword replaces the stored hash.
func (s *IdentityStore) UpdatePassword(_ context.Context, id ulid.ULID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[id]
	if !ok {
		return auth.ErrNotFound
	}
	i.PasswordHash = hash
	i.UpdatedAt = time.Now().UTC()
	return nil
}

// List returns all identities ordered by ID, which orders by creation.
func (s *IdentityStore) List(_ context.Context) ([]*auth.Identity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*auth.Identity, 0, len(s.byID))
	for _, i := range s.byID {
		out = append(out, clone(i))
	}
	slices.SortFunc(out, func(a, b *auth.Identity) int { return a.ID.Compare(b.ID) })
	return out, nil
}

// ResetStore is an in-memory auth.PasswordResetRepository.
type ResetStore struct {
	mu   sync.Mutex
	byID map[ulid.ULID]*auth.PasswordReset
}

// NewResetStore creates an empty ResetStore.
func NewResetStore() *ResetStore {
	return &ResetStore{byID: make(map[ulid.ULID]*auth.PasswordReset)}
}

// Create stores r.
func (s *ResetStore) Create(_ context.Context, r *auth.PasswordReset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *r
	s.byID[r.ID] = &c
	return nil
}

// Consume removes and returns the record with id.
func (s *ResetStore) Consume(_ context.Context, id ulid.ULID) (*auth.PasswordReset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[id]
	if !ok {
		return nil, auth.ErrNotFound
	}
	delete(s.byID, id)
	return r, nil
}

// DeleteByIdentity removes all records for identityID.
func (s *ResetStore) DeleteByIdentity(_ context.Context, identityID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.byID {
		if r.IdentityID == identityID {
			delete(s.byID, id)
		}
	}
	return nil
}

// DeleteExpired removes records expired at now.
func (s *ResetStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, r := range s.byID {
		if r.IsExpiredAt(now) {
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored records.
func (s *ResetStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// RevocationStore is an in-memory auth.RevocationRepository.
type RevocationStore struct {
	mu   sync.Mutex
	byID map[ulid.ULID]*auth.RevokedToken
}

// NewRevocationStore creates an empty RevocationStore.
func NewRevocationStore() *RevocationStore {
	return &RevocationStore{byID: make(map[ulid.ULID]*auth.RevokedToken)}
}

// Revoke records rt. Revoking twice keeps the first entry.
func (s *RevocationStore) Revoke(_ context.Context, rt *auth.RevokedToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[rt.ID]; !ok {
		c := *rt
		s.byID[rt.ID] = &c
	}
	return nil
}

// IsRevoked reports whether id was revoked.
func (s *RevocationStore) IsRevoked(_ context.Context, id ulid.ULID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byID[id]
	return ok, nil
}

// DeleteExpired removes entries whose token expired before now.
func (s *RevocationStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, rt := range s.byID {
		if rt.ExpiresAt.Before(now) {
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}

var (
	_ auth.Transactor              = (*Transactor)(nil)
	_ auth.IdentityRepository      = (*IdentityStore)(nil)
	_ auth.PasswordResetRepository = (*ResetStore)(nil)
	_ auth.RevocationRepository    = (*RevocationStore)(nil)
)
