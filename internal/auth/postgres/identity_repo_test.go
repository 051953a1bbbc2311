// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediahub/mediahub/internal/access"
	"github.com/mediahub/mediahub/internal/auth"
	"github.com/mediahub/mediahub/internal/auth/postgres"
	"github.com/mediahub/mediahub/internal/store"
	"github.com/mediahub/mediahub/pkg/errutil"
)

var identityCols = []string{
	"id", "email", "nick_name", "first_name", "last_name",
	"password_hash", "role", "created_at", "updated_at",
}

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})
	return mock
}

func sampleIdentity(t *testing.T) *auth.Identity {
	t.Helper()
	identity, err := auth.NewIdentity("alice@example.com", "alice", "Alice", "Liddell", "$argon2id$hash", access.RoleMember)
	require.NoError(t, err)
	return identity
}

func identityRow(i *auth.Identity) *pgxmock.Rows {
	return pgxmock.NewRows(identityCols).AddRow(
		i.ID.String(), i.Email, i.NickName, i.FirstName, i.LastName,
		i.PasswordHash, i.Role.String(), i.CreatedAt, i.UpdatedAt,
	)
}

func TestIdentityRepository_Create(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		wantCode string
		wantIs   error
	}{
		{name: "stores identity"},
		{
			name:     "email taken",
			dbErr:    &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "identities_email_key"},
			wantCode: "IDENTITY_EMAIL_TAKEN",
			wantIs:   auth.ErrEmailTaken,
		},
		{
			name:     "nickname taken",
			dbErr:    &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "identities_nick_name_key"},
			wantCode: "IDENTITY_NICKNAME_TAKEN",
			wantIs:   auth.ErrNickNameTaken,
		},
		{
			name:     "unknown unique constraint",
			dbErr:    &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "identities_pkey"},
			wantCode: "IDENTITY_CREATE_FAILED",
		},
		{
			name:     "connection error",
			dbErr:    errors.New("connection reset"),
			wantCode: "IDENTITY_CREATE_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			identity := sampleIdentity(t)

			exp := mock.ExpectExec(`INSERT INTO identities`).WithArgs(
				identity.ID.String(), identity.Email, identity.NickName, identity.FirstName,
				identity.LastName, identity.PasswordHash, "MEMBER", identity.CreatedAt, identity.UpdatedAt,
			)
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err := postgres.NewIdentityRepository(mock).Create(context.Background(), identity)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			errutil.AssertErrorCode(t, err, tt.wantCode)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
		})
	}
}

func TestIdentityRepository_Count(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM identities`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	n, err := postgres.NewIdentityRepository(mock).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestIdentityRepository_LockRegistrations(t *testing.T) {
	t.Run("inside a transaction", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectBegin()
		mock.ExpectExec(`SELECT pg_advisory_xact_lock`).
			WithArgs(pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("SELECT", 1))
		mock.ExpectCommit()

		repo := postgres.NewIdentityRepository(mock)
		err := store.NewTransactor(mock).InTransaction(context.Background(), repo.LockRegistrations)
		require.NoError(t, err)
	})

	t.Run("outside a transaction", func(t *testing.T) {
		mock := newMock(t)
		err := postgres.NewIdentityRepository(mock).LockRegistrations(context.Background())
		errutil.AssertErrorCode(t, err, "IDENTITY_LOCK_NO_TX")
	})
}

func TestIdentityRepository_Lookups(t *testing.T) {
	identity := sampleIdentity(t)

	lookups := []struct {
		name string
		call func(r *postgres.IdentityRepository) (*auth.Identity, error)
		arg  any
	}{
		{"by id", func(r *postgres.IdentityRepository) (*auth.Identity, error) {
			return r.GetByID(context.Background(), identity.ID)
		}, identity.ID.String()},
		{"by email", func(r *postgres.IdentityRepository) (*auth.Identity, error) {
			return r.GetByEmail(context.Background(), "ALICE@example.com")
		}, "ALICE@example.com"},
		{"by nickname", func(r *postgres.IdentityRepository) (*auth.Identity, error) {
			return r.GetByNickName(context.Background(), "Alice")
		}, "Alice"},
		{"by identifier", func(r *postgres.IdentityRepository) (*auth.Identity, error) {
			return r.GetByIdentifier(context.Background(), "alice")
		}, "alice"},
	}

	for _, l := range lookups {
		t.Run(l.name+" found", func(t *testing.T) {
			mock := newMock(t)
			mock.ExpectQuery(`SELECT .+ FROM identities`).WithArgs(l.arg).WillReturnRows(identityRow(identity))

			got, err := l.call(postgres.NewIdentityRepository(mock))
			require.NoError(t, err)
			assert.Equal(t, identity.ID, got.ID)
			assert.Equal(t, identity.Email, got.Email)
			assert.Equal(t, identity.NickName, got.NickName)
			assert.Equal(t, access.RoleMember, got.Role)
			assert.True(t, identity.CreatedAt.Equal(got.CreatedAt))
		})

		t.Run(l.name+" missing", func(t *testing.T) {
			mock := newMock(t)
			mock.ExpectQuery(`SELECT .+ FROM identities`).WithArgs(l.arg).WillReturnRows(pgxmock.NewRows(identityCols))

			_, err := l.call(postgres.NewIdentityRepository(mock))
			assert.ErrorIs(t, err, auth.ErrNotFound)
			errutil.AssertErrorCode(t, err, "IDENTITY_NOT_FOUND")
		})
	}
}

func TestIdentityRepository_ScanRejectsCorruptRows(t *testing.T) {
	identity := sampleIdentity(t)

	t.Run("bad id", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT .+ FROM identities`).WithArgs(identity.Email).WillReturnRows(pgxmock.NewRows(identityCols).AddRow(
			"not-a-ulid", identity.Email, identity.NickName, identity.FirstName, identity.LastName,
			identity.PasswordHash, "MEMBER", identity.CreatedAt, identity.UpdatedAt,
		))
		_, err := postgres.NewIdentityRepository(mock).GetByEmail(context.Background(), identity.Email)
		errutil.AssertErrorCode(t, err, "IDENTITY_INVALID_ID")
	})

	t.Run("bad role", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT .+ FROM identities`).WithArgs(identity.Email).WillReturnRows(pgxmock.NewRows(identityCols).AddRow(
			identity.ID.String(), identity.Email, identity.NickName, identity.FirstName, identity.LastName,
			identity.PasswordHash, "ROOT", identity.CreatedAt, identity.UpdatedAt,
		))
		_, err := postgres.NewIdentityRepository(mock).GetByEmail(context.Background(), identity.Email)
		errutil.AssertErrorCode(t, err, "IDENTITY_INVALID_ROLE")
	})
}

func TestIdentityRepository_UpdatePassword(t *testing.T) {
	id := ulid.Make()

	t.Run("updates", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE identities SET password_hash`).
			WithArgs(id.String(), "newhash", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, postgres.NewIdentityRepository(mock).UpdatePassword(context.Background(), id, "newhash"))
	})

	t.Run("missing identity", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE identities SET password_hash`).
			WithArgs(id.String(), "newhash", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := postgres.NewIdentityRepository(mock).UpdatePassword(context.Background(), id, "newhash")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`UPDATE identities SET password_hash`).
			WithArgs(id.String(), "newhash", pgxmock.AnyArg()).
			WillReturnError(errors.New("disk full"))

		err := postgres.NewIdentityRepository(mock).UpdatePassword(context.Background(), id, "newhash")
		errutil.AssertErrorCode(t, err, "IDENTITY_UPDATE_PASSWORD_FAILED")
	})
}

func TestIdentityRepository_List(t *testing.T) {
	mock := newMock(t)
	first := sampleIdentity(t)
	second, err := auth.NewIdentity("bob@example.com", "bob", "Bob", "Builder", "hash", access.RoleAdmin)
	require.NoError(t, err)
	second.CreatedAt = first.CreatedAt.Add(time.Second)

	rows := identityRow(first).AddRow(
		second.ID.String(), second.Email, second.NickName, second.FirstName, second.LastName,
		second.PasswordHash, "ADMIN", second.CreatedAt, second.UpdatedAt,
	)
	mock.ExpectQuery(`SELECT .+ FROM identities ORDER BY created_at`).WillReturnRows(rows)

	got, err := postgres.NewIdentityRepository(mock).List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, access.RoleAdmin, got[1].Role)
}
