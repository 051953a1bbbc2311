// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package main

import (
	"context"
	"log/slog"
	"net"
	"os"

	"github.com/mediahub/mediahub/internal/observability"
	"github.com/mediahub/mediahub/internal/store"
)

// ServeDeps contains injectable dependencies for the serve command.
// All fields with nil values will use their default implementations.
type ServeDeps struct {
	// Connect opens the database pool.
	// Default: store.Connect
	Connect func(ctx context.Context, dsn string, opts store.ConnectOptions) (DBPool, error)

	// MigratorFactory creates a migrator for auto-migration.
	// Default: store.NewMigrator
	MigratorFactory func(databaseURL string) (AutoMigrator, error)

	// ObservabilityServerFactory creates an observability server.
	// Default: observability.NewServer
	ObservabilityServerFactory func(addr string, readiness observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer

	// Listen binds the API listener.
	// Default: net.Listen
	Listen func(network, address string) (net.Listener, error)

	// Getenv reads secret environment variables.
	// Default: os.Getenv
	Getenv func(string) string
}

func (d *ServeDeps) withDefaults() *ServeDeps {
	out := ServeDeps{}
	if d != nil {
		out = *d
	}
	if out.Connect == nil {
		out.Connect = func(ctx context.Context, dsn string, opts store.ConnectOptions) (DBPool, error) {
			return store.Connect(ctx, dsn, opts)
		}
	}
	if out.MigratorFactory == nil {
		out.MigratorFactory = func(url string) (AutoMigrator, error) {
			return store.NewMigrator(url)
		}
	}
	if out.ObservabilityServerFactory == nil {
		out.ObservabilityServerFactory = func(addr string, readiness observability.ReadinessChecker, logger *slog.Logger) ObservabilityServer {
			return observability.NewServer(addr, readiness, logger)
		}
	}
	if out.Listen == nil {
		out.Listen = net.Listen
	}
	if out.Getenv == nil {
		out.Getenv = os.Getenv
	}
	return &out
}

// DBPool is the subset of pgxpool.Pool used by serve.
type DBPool interface {
	store.Pool
	Ping(ctx context.Context) error
	Close()
}

// AutoMigrator applies pending migrations.
type AutoMigrator interface {
	Up() error
	Close() error
}

// ObservabilityServer interface wraps the methods used from observability.Server.
type ObservabilityServer interface {
	Start() (<-chan error, error)
	Stop(ctx context.Context) error
	Addr() string
	Metrics() *observability.Metrics
}
