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

	"github.com/mediahub/mediahub/internal/auth"
	"github.com/mediahub/mediahub/internal/auth/postgres"
	"github.com/mediahub/mediahub/pkg/errutil"
)

func sampleRevokedToken() *auth.RevokedToken {
	return &auth.RevokedToken{
		ID:         ulid.Make(),
		IdentityID: ulid.Make(),
		ExpiresAt:  time.Now().Add(time.Hour),
		RevokedAt:  time.Now(),
	}
}

func TestRevocationRepository_Revoke(t *testing.T) {
	tests := []struct {
		name     string
		dbErr    error
		wantCode string
	}{
		{name: "inserts"},
		{
			name:     "unknown identity",
			dbErr:    &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation},
			wantCode: "REVOCATION_UNKNOWN_IDENTITY",
		},
		{name: "database error", dbErr: errors.New("boom"), wantCode: "REVOCATION_CREATE_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMock(t)
			token := sampleRevokedToken()

			exp := mock.ExpectExec(`(?s)INSERT INTO revoked_tokens .+ ON CONFLICT \(id\) DO NOTHING`).
				WithArgs(token.ID.String(), token.IdentityID.String(), token.ExpiresAt, token.RevokedAt)
			if tt.dbErr != nil {
				exp.WillReturnError(tt.dbErr)
			} else {
				exp.WillReturnResult(pgxmock.NewResult("INSERT", 1))
			}

			err := postgres.NewRevocationRepository(mock).Revoke(context.Background(), token)
			if tt.wantCode == "" {
				require.NoError(t, err)
				return
			}
			errutil.AssertErrorCode(t, err, tt.wantCode)
		})
	}
}

func TestRevocationRepository_IsRevoked(t *testing.T) {
	id := ulid.Make()

	for _, want := range []bool{true, false} {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(id.String()).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(want))

		got, err := postgres.NewRevocationRepository(mock).IsRevoked(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	t.Run("lookup failure", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`SELECT EXISTS`).WithArgs(id.String()).WillReturnError(errors.New("timeout"))

		_, err := postgres.NewRevocationRepository(mock).IsRevoked(context.Background(), id)
		errutil.AssertErrorCode(t, err, "REVOCATION_LOOKUP_FAILED")
	})
}

func TestRevocationRepository_DeleteExpired(t *testing.T) {
	mock := newMock(t)
	now := time.Now()
	mock.ExpectExec(`DELETE FROM revoked_tokens WHERE expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	n, err := postgres.NewRevocationRepository(mock).DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
