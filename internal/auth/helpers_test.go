// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth_test

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mediahub/mediahub/internal/auth"
	"github.com/mediahub/mediahub/internal/auth/authtest"
)

// fastHasher keeps argon2id cheap enough for table tests.
func fastHasher() *auth.Argon2idHasher {
	return auth.NewArgon2idHasherWithParams(auth.Argon2Params{Time: 1, Memory: 1024, Threads: 1})
}

// logEntry is the subset of a JSON log line the logging tests inspect.
type logEntry struct {
	Level      string `json:"level"`
	Msg        string `json:"msg"`
	Operation  string `json:"operation"`
	Error      string `json:"error"`
	Code       string `json:"code"`
	IdentityID string `json:"identity_id"`
}

// recorder captures auth events.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) RecordAuthEvent(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, operation+":"+outcome)
}

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// memEnv wires both services to in-memory stores.
type memEnv struct {
	identities  *authtest.IdentityStore
	resets      *authtest.ResetStore
	revocations *authtest.RevocationStore
	notifier    *authtest.Notifier
	tokens      *auth.TokenService
	clock       *fakeClock
	svc         *auth.Service
	resetSvc    *auth.PasswordResetService
}

func newMemEnv(t *testing.T, opts ...auth.Option) *memEnv {
	t.Helper()
	env := &memEnv{
		identities:  authtest.NewIdentityStore(),
		resets:      authtest.NewResetStore(),
		revocations: authtest.NewRevocationStore(),
		notifier:    &authtest.Notifier{},
		clock:       &fakeClock{t: time.Now().UTC().Truncate(time.Second)},
	}
	env.tokens = newTokenService(t, env.clock)

	opts = append([]auth.Option{auth.WithLogger(slog.New(slog.DiscardHandler))}, opts...)
	tx := &authtest.Transactor{}
	hasher := fastHasher()

	var err error
	env.svc, err = auth.NewService(env.identities, env.revocations, tx, hasher, env.tokens, opts...)
	require.NoError(t, err)
	env.resetSvc, err = auth.NewPasswordResetService(env.identities, env.resets, tx, hasher, env.tokens, env.notifier, opts...)
	require.NoError(t, err)
	t.Cleanup(env.resetSvc.Wait)
	return env
}
