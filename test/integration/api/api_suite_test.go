// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

//go:build integration

package api_test

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/mediahub/mediahub/internal/auth"
	"github.com/mediahub/mediahub/internal/auth/authtest"
	authpg "github.com/mediahub/mediahub/internal/auth/postgres"
	"github.com/mediahub/mediahub/internal/content"
	contentpg "github.com/mediahub/mediahub/internal/content/postgres"
	"github.com/mediahub/mediahub/internal/store"
	"github.com/mediahub/mediahub/internal/web"
)

func TestAPI(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Integration Suite")
}

// testEnv holds all resources needed for API integration tests.
type testEnv struct {
	ctx       context.Context
	pool      *pgxpool.Pool
	container testcontainers.Container
	server    *httptest.Server
	resets    *auth.PasswordResetService
	notifier  *authtest.Notifier
}

var env *testEnv

var _ = BeforeSuite(func() {
	var err error
	env, err = setupAPITestEnv()
	Expect(err).NotTo(HaveOccurred())
})

var _ = AfterSuite(func() {
	if env != nil {
		env.cleanup()
	}
})

func setupAPITestEnv() (*testEnv, error) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("mediahub_test"),
		postgres.WithUsername("mediahub"),
		postgres.WithPassword("mediahub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	e := &testEnv{ctx: ctx, container: container}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		e.cleanup()
		return nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		e.cleanup()
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		e.cleanup()
		return nil, err
	}
	_ = migrator.Close()

	e.pool, err = store.Connect(ctx, connStr, store.ConnectOptions{})
	if err != nil {
		e.cleanup()
		return nil, err
	}

	if err := e.wire(); err != nil {
		e.cleanup()
		return nil, err
	}
	return e, nil
}

// wire builds the production service graph over the test database. Only
// reset link delivery is replaced, so tests can read the issued token.
func (e *testEnv) wire() error {
	logger := slog.New(slog.DiscardHandler)
	identities := authpg.NewIdentityRepository(e.pool)
	resetRepo := authpg.NewPasswordResetRepository(e.pool)
	revocations := authpg.NewRevocationRepository(e.pool)
	tx := store.NewTransactor(e.pool)
	hasher := auth.NewArgon2idHasherWithParams(auth.Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1})

	tokens, err := auth.NewTokenService([]byte("integration-secret-0123456789abcdef"))
	if err != nil {
		return err
	}
	e.notifier = &authtest.Notifier{}

	svc, err := auth.NewService(identities, revocations, tx, hasher, tokens, auth.WithLogger(logger))
	if err != nil {
		return err
	}
	e.resets, err = auth.NewPasswordResetService(identities, resetRepo, tx, hasher, tokens, e.notifier, auth.WithLogger(logger))
	if err != nil {
		return err
	}
	guard, err := content.NewGuard(content.GuardConfig{
		Media:    contentpg.NewMediaRepository(e.pool),
		Comments: contentpg.NewCommentRepository(e.pool),
		Likes:    contentpg.NewLikeRepository(e.pool),
		Logger:   logger,
	})
	if err != nil {
		return err
	}
	api, err := web.New(web.Config{Auth: svc, Resets: e.resets, Content: guard, Logger: logger})
	if err != nil {
		return err
	}
	e.server = httptest.NewServer(api)
	return nil
}

func (e *testEnv) cleanup() {
	if e.server != nil {
		e.server.Close()
	}
	if e.resets != nil {
		e.resets.Wait()
	}
	if e.pool != nil {
		e.pool.Close()
	}
	if e.container != nil {
		_ = e.container.Terminate(e.ctx)
	}
}

// truncateAll removes every row so each test starts from an empty database.
func truncateAll(ctx context.Context, pool *pgxpool.Pool) {
	_, err := pool.Exec(ctx,
		`TRUNCATE comment_likes, comments, media, revoked_tokens, password_resets, identities CASCADE`)
	Expect(err).NotTo(HaveOccurred())
}
