// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mediahub/mediahub/internal/auth"
	"github.com/mediahub/mediahub/pkg/errutil"
)

func TestArgon2idHasher_Hash(t *testing.T) {
	hasher := fastHasher()

	first, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.Regexp(t, `^\$argon2id\$v=19\$m=1024,t=1,p=1\$[A-Za-z0-9+/]+\$[A-Za-z0-9+/]+$`, first)

	second, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, first, second, "salt must differ between hashes")

	_, err = hasher.Hash("")
	assert.ErrorIs(t, err, auth.ErrEmptyPassword)
}

func TestArgon2idHasher_DefaultLengths(t *testing.T) {
	hash, err := fastHasher().Hash("secret1")
	require.NoError(t, err)

	parts := strings.Split(hash, "$")
	require.Len(t, parts, 6)
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	require.NoError(t, err)
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	require.NoError(t, err)
	assert.Len(t, salt, int(auth.DefaultArgon2Params.SaltLen))
	assert.Len(t, key, int(auth.DefaultArgon2Params.KeyLen))
}

func TestArgon2idHasher_Verify(t *testing.T) {
	hasher := fastHasher()
	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)

	ok, err := hasher.Verify("secret1", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("secret2", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2idHasher_VerifyMalformed(t *testing.T) {
	hasher := fastHasher()

	tests := []struct {
		name     string
		hash     string
		contains string
	}{
		{name: "not phc", hash: "plaintext"},
		{name: "missing leading separator", hash: "argon2id$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA$x"},
		{name: "other algorithm", hash: "$argon2i$v=19$m=1024,t=1,p=1$c2FsdA$aGFzaA", contains: "unsupported hash algorithm"},
		{name: "bad version", hash: "$argon2id$vXX$m=1024,t=1,p=1$c2FsdA$aGFzaA"},
		{name: "old version", hash: "$argon2id$v=16$m=1024,t=1,p=1$c2FsdA$aGFzaA"},
		{name: "bad params", hash: "$argon2id$v=19$cost$c2FsdA$aGFzaA"},
		{name: "zero threads", hash: "$argon2id$v=19$m=1024,t=1,p=0$c2FsdA$aGFzaA", contains: "threads value"},
		{name: "threads overflow", hash: "$argon2id$v=19$m=1024,t=1,p=256$c2FsdA$aGFzaA", contains: "threads value"},
		{name: "bad salt", hash: "$argon2id$v=19$m=1024,t=1,p=1$!!$aGFzaA"},
		{name: "bad key", hash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$!!"},
		{name: "empty key", hash: "$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := hasher.Verify("secret1", tt.hash)
			require.Error(t, err)
			assert.False(t, ok)
			errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
			if tt.contains != "" {
				assert.Contains(t, err.Error(), tt.contains)
			}
		})
	}
}

func TestArgon2idHasher_CustomParams(t *testing.T) {
	hasher := auth.NewArgon2idHasherWithParams(auth.Argon2Params{Time: 2, Memory: 8 * 1024, Threads: 1})

	hash, err := hasher.Hash("secret1")
	require.NoError(t, err)
	assert.Contains(t, hash, "$m=8192,t=2,p=1$")

	// Verification uses the parameters encoded in the hash.
	ok, err := fastHasher().Verify("secret1", hash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestArgon2idHasher_LegacyBcrypt(t *testing.T) {
	hasher := fastHasher()

	legacy, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := hasher.Verify("secret1", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("wrong", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = hasher.Verify("secret1", "$2a$10$short")
	errutil.AssertErrorCode(t, err, "AUTH_INVALID_HASH")
}

func TestArgon2idHasher_NeedsUpgrade(t *testing.T) {
	weak := fastHasher()
	strong := auth.NewArgon2idHasherWithParams(auth.Argon2Params{Time: 2, Memory: 4 * 1024, Threads: 1})

	weakHash, err := weak.Hash("secret1")
	require.NoError(t, err)
	strongHash, err := strong.Hash("secret1")
	require.NoError(t, err)
	legacy, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name   string
		hasher *auth.Argon2idHasher
		hash   string
		want   bool
	}{
		{name: "bcrypt", hasher: weak, hash: string(legacy), want: true},
		{name: "malformed", hasher: weak, hash: "plaintext", want: true},
		{name: "same params", hasher: weak, hash: weakHash, want: false},
		{name: "weaker params", hasher: strong, hash: weakHash, want: true},
		{name: "stronger params", hasher: weak, hash: strongHash, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.hasher.NeedsUpgrade(tt.hash))
		})
	}
}
