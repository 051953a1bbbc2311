// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package mocks provides testify mocks for the auth package interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/mediahub/mediahub/internal/auth"
)

type cleanuper interface {
	mock.TestingT
	Cleanup(func())
}

func register(m *mock.Mock, t cleanuper) {
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
}

func identity(args mock.Arguments, i int) *auth.Identity {
	v, _ := args.Get(i).(*auth.Identity)
	return v
}

// MockIdentityRepository is a mock of auth.IdentityRepository.
type MockIdentityRepository struct {
	mock.Mock
}

// NewMockIdentityRepository creates a mock that asserts its expectations
// when the test ends.
func NewMockIdentityRepository(t cleanuper) *MockIdentityRepository {
	m := &MockIdentityRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockIdentityRepository) Create(ctx context.Context, i *auth.Identity) error {
	return m.Called(ctx, i).Error(0)
}

func (m *MockIdentityRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *MockIdentityRepository) LockRegistrations(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockIdentityRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Identity, error) {
	args := m.Called(ctx, id)
	return identity(args, 0), args.Error(1)
}

func (m *MockIdentityRepository) GetByEmail(ctx context.Context, email string) (*auth.Identity, error) {
	args := m.Called(ctx, email)
	return identity(args, 0), args.Error(1)
}

func (m *MockIdentityRepository) GetByNickName(ctx context.Context, nickName string) (*auth.Identity, error) {
	args := m.Called(ctx, nickName)
	return identity(args, 0), args.Error(1)
}

func (m *MockIdentityRepository) GetByIdentifier(ctx context.Context, identifier string) (*auth.Identity, error) {
	args := m.Called(ctx, identifier)
	return identity(args, 0), args.Error(1)
}

func (m *MockIdentityRepository) UpdatePassword(ctx context.Context, id ulid.ULID, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockIdentityRepository) List(ctx context.Context) ([]*auth.Identity, error) {
	args := m.Called(ctx)
	v, _ := args.Get(0).([]*auth.Identity)
	return v, args.Error(1)
}

// MockPasswordResetRepository is a mock of auth.PasswordResetRepository.
type MockPasswordResetRepository struct {
	mock.Mock
}

// NewMockPasswordResetRepository creates a mock that asserts its
// expectations when the test ends.
func NewMockPasswordResetRepository(t cleanuper) *MockPasswordResetRepository {
	m := &MockPasswordResetRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockPasswordResetRepository) Create(ctx context.Context, r *auth.PasswordReset) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockPasswordResetRepository) Consume(ctx context.Context, id ulid.ULID) (*auth.PasswordReset, error) {
	args := m.Called(ctx, id)
	v, _ := args.Get(0).(*auth.PasswordReset)
	return v, args.Error(1)
}

func (m *MockPasswordResetRepository) DeleteByIdentity(ctx context.Context, identityID ulid.ULID) error {
	return m.Called(ctx, identityID).Error(0)
}

func (m *MockPasswordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

// MockRevocationRepository is a mock of auth.RevocationRepository.
type MockRevocationRepository struct {
	mock.Mock
}

// NewMockRevocationRepository creates a mock that asserts its
// expectations when the test ends.
func NewMockRevocationRepository(t cleanuper) *MockRevocationRepository {
	m := &MockRevocationRepository{}
	register(&m.Mock, t)
	return m
}

func (m *MockRevocationRepository) Revoke(ctx context.Context, rt *auth.RevokedToken) error {
	return m.Called(ctx, rt).Error(0)
}

func (m *MockRevocationRepository) IsRevoked(ctx context.Context, id ulid.ULID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRevocationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

// MockPasswordHasher is a mock of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock that asserts its expectations when
// the test ends.
func NewMockPasswordHasher(t cleanuper) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	register(&m.Mock, t)
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

func (m *MockPasswordHasher) NeedsUpgrade(hash string) bool {
	return m.Called(hash).Bool(0)
}

// MockNotifier is a mock of auth.Notifier.
type MockNotifier struct {
	mock.Mock
}

// NewMockNotifier creates a mock that asserts its expectations when the
// test ends.
func NewMockNotifier(t cleanuper) *MockNotifier {
	m := &MockNotifier{}
	register(&m.Mock, t)
	return m
}

func (m *MockNotifier) SendPasswordResetLink(ctx context.Context, email, token string) error {
	return m.Called(ctx, email, token).Error(0)
}

var (
	_ auth.IdentityRepository      = (*MockIdentityRepository)(nil)
	_ auth.PasswordResetRepository = (*MockPasswordResetRepository)(nil)
	_ auth.RevocationRepository    = (*MockRevocationRepository)(nil)
	_ auth.PasswordHasher          = (*MockPasswordHasher)(nil)
	_ auth.Notifier                = (*MockNotifier)(nil)
)
