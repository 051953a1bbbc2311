// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/mediahub/mediahub/internal/auth"
	authpg "github.com/mediahub/mediahub/internal/auth/postgres"
	"github.com/mediahub/mediahub/internal/config"
	"github.com/mediahub/mediahub/internal/content"
	contentpg "github.com/mediahub/mediahub/internal/content/postgres"
	"github.com/mediahub/mediahub/internal/logging"
	"github.com/mediahub/mediahub/internal/notify"
	"github.com/mediahub/mediahub/internal/observability"
	"github.com/mediahub/mediahub/internal/store"
	"github.com/mediahub/mediahub/internal/web"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the HTTP API together with the metrics/health listener and
the background sweep of expired reset and revocation records.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeWithDeps(cmd.Context(), cmd, nil)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// runServeWithDeps starts the server with injectable dependencies.
// If deps is nil, default implementations are used.
func runServeWithDeps(ctx context.Context, cmd *cobra.Command, deps *ServeDeps) error {
	deps = deps.withDefaults()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(config.LoadOptions{Path: configFile, Flags: cmd.Flags(), Getenv: deps.Getenv})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.SetDefault(logging.Options{
		Service: "mediahub",
		Version: version,
		Format:  cfg.Log.Format,
		Level:   cfg.Log.Level,
	})
	if err != nil {
		return oops.Code("LOGGING_SETUP_FAILED").Wrap(err)
	}

	logger.Info("starting mediahub", "addr", cfg.Server.Addr, "mail_provider", cfg.Mail.Provider)

	if cfg.Database.AutoMigrate {
		if err := autoMigrate(deps, cfg.Database.URL, logger); err != nil {
			return err
		}
	}

	pool, err := deps.Connect(ctx, cfg.Database.URL, store.ConnectOptions{
		MaxConns: cfg.Database.MaxConns,
		Attempts: cfg.Database.ConnectAttempts,
		Logger:   logger,
	})
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "connect to database").Wrap(err)
	}
	defer pool.Close()
	logger.Info("connected to database")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var metrics *observability.Metrics
	var obsServer ObservabilityServer
	if cfg.Observability.Addr != "" {
		obsServer = deps.ObservabilityServerFactory(cfg.Observability.Addr, pool.Ping, logger)
		obsErrChan, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability", logger)
		metrics = obsServer.Metrics()
		logger.Info("observability server started", "addr", obsServer.Addr())
	}

	app, err := buildApp(cfg, pool, metrics, logger)
	if err != nil {
		return err
	}

	listener, err := deps.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return oops.Code("LISTEN_FAILED").With("addr", cfg.Server.Addr).Wrap(err)
	}
	httpServer := &http.Server{
		Handler:           app.api,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errChan <- serveErr
		}
	}()

	app.janitor.Start(ctx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	cmd.Println("MediaHub API listening on " + listener.Addr().String())
	logger.Info("mediahub ready", "addr", listener.Addr().String())

	var serveErr error
	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case serveErr = <-errChan:
		logger.Error("api server failed", "error", serveErr)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping api server", "error", err)
	}
	cancel()
	app.janitor.Stop()
	app.resets.Wait()
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	if serveErr != nil {
		return oops.Code("SERVE_FAILED").Wrap(serveErr)
	}
	return nil
}

// app is the wired service graph.
type app struct {
	api     *web.API
	resets  *auth.PasswordResetService
	janitor *auth.Janitor
}

// buildApp wires repositories, services and the HTTP API over pool.
func buildApp(cfg *config.Config, pool store.Pool, metrics *observability.Metrics, logger *slog.Logger) (*app, error) {
	identities := authpg.NewIdentityRepository(pool)
	resetRepo := authpg.NewPasswordResetRepository(pool)
	revocations := authpg.NewRevocationRepository(pool)
	tx := store.NewTransactor(pool)

	hasher := auth.NewArgon2idHasherWithParams(auth.Argon2Params{
		Time:    cfg.Auth.Argon2.Iterations,
		Memory:  cfg.Auth.Argon2.MemoryKiB,
		Threads: cfg.Auth.Argon2.Parallelism,
	})
	tokens, err := auth.NewTokenService([]byte(cfg.Auth.JWTSecret), auth.WithIssuer(cfg.Auth.Issuer))
	if err != nil {
		return nil, err
	}
	notifier, err := newNotifier(cfg.Mail, logger)
	if err != nil {
		return nil, err
	}

	opts := []auth.Option{
		auth.WithLogger(logger),
		auth.WithIdentityTTL(cfg.Auth.IdentityTTL),
		auth.WithResetTTL(cfg.Auth.ResetTTL),
		auth.WithNotifyTimeout(cfg.Mail.Timeout),
	}
	if metrics != nil {
		opts = append(opts, auth.WithRecorder(metrics))
	}

	svc, err := auth.NewService(identities, revocations, tx, hasher, tokens, opts...)
	if err != nil {
		return nil, err
	}
	resets, err := auth.NewPasswordResetService(identities, resetRepo, tx, hasher, tokens, notifier, opts...)
	if err != nil {
		return nil, err
	}
	janitor, err := auth.NewJanitor(resetRepo, revocations, cfg.Janitor.Interval, logger)
	if err != nil {
		return nil, err
	}

	guard, err := content.NewGuard(content.GuardConfig{
		Media:    contentpg.NewMediaRepository(pool),
		Comments: contentpg.NewCommentRepository(pool),
		Likes:    contentpg.NewLikeRepository(pool),
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	webCfg := web.Config{
		Auth:        svc,
		Resets:      resets,
		Content:     guard,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	}
	if metrics != nil {
		webCfg.Recorder = metrics
	}
	api, err := web.New(webCfg)
	if err != nil {
		return nil, err
	}

	return &app{api: api, resets: resets, janitor: janitor}, nil
}

// newNotifier selects the reset link delivery configured in mail.
func newNotifier(mail config.MailConfig, logger *slog.Logger) (auth.Notifier, error) {
	links := notify.LinkBuilder{BaseURL: mail.ResetURL}
	switch mail.Provider {
	case config.MailProviderResend:
		return notify.NewResendMailer(notify.ResendConfig{
			APIKey:  mail.ResendAPIKey,
			From:    mail.From,
			APIURL:  mail.ResendAPIURL,
			Links:   links,
			Timeout: mail.Timeout,
		})
	case config.MailProviderLog:
		return notify.NewLogNotifier(logger, links), nil
	default:
		return nil, oops.Code("CONFIG_INVALID").With("provider", mail.Provider).Errorf("unknown mail provider")
	}
}

func autoMigrate(deps *ServeDeps, databaseURL string, logger *slog.Logger) (err error) {
	migrator, err := deps.MigratorFactory(databaseURL)
	if err != nil {
		return oops.Code("AUTO_MIGRATE_FAILED").With("operation", "create migrator").Wrap(err)
	}
	defer func() {
		if closeErr := migrator.Close(); closeErr != nil {
			logger.Warn("failed to close migrator", "error", closeErr)
		}
	}()

	logger.Info("applying pending migrations")
	if err := migrator.Up(); err != nil {
		return oops.Code("AUTO_MIGRATE_FAILED").With("operation", "apply migrations").Wrap(err)
	}
	return nil
}

// monitorServerErrors cancels ctx when a server reports a fatal error.
// It exits when an error is received, the channel closes, or ctx ends.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string, logger *slog.Logger) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			logger.Error("server error, triggering shutdown", "server", serverName, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}
