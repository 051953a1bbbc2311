// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"
)

// DefaultSweepInterval is how often the Janitor runs when no interval is
// configured.
const DefaultSweepInterval = 10 * time.Minute

// Janitor periodically deletes expired reset records and revocation
// entries. Neither is needed once its token can no longer verify.
type Janitor struct {
	resets      PasswordResetRepository
	revocations RevocationRepository
	interval    time.Duration
	logger      *slog.Logger
	clock       func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewJanitor creates a Janitor. A non-positive interval uses
// DefaultSweepInterval.
func NewJanitor(resets PasswordResetRepository, revocations RevocationRepository, interval time.Duration, logger *slog.Logger) (*Janitor, error) {
	switch {
	case resets == nil:
		return nil, ErrNilResetRepository
	case revocations == nil:
		return nil, ErrNilRevocationRepository
	}
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Janitor{
		resets:      resets,
		revocations: revocations,
		interval:    interval,
		logger:      logger,
		clock:       time.Now,
	}, nil
}

// RunOnce executes a single sweep. Both deletions are attempted even if
// the first fails; errors are combined.
func (j *Janitor) RunOnce(ctx context.Context) error {
	now := j.clock().UTC()
	var errs []error

	resets, err := j.resets.DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, oops.Code("JANITOR_SWEEP_FAILED").With("table", "password_resets").Wrap(err))
	} else if resets > 0 {
		j.logger.InfoContext(ctx, "deleted expired password resets", "count", resets)
	}

	revoked, err := j.revocations.DeleteExpired(ctx, now)
	if err != nil {
		errs = append(errs, oops.Code("JANITOR_SWEEP_FAILED").With("table", "revoked_tokens").Wrap(err))
	} else if revoked > 0 {
		j.logger.InfoContext(ctx, "deleted expired revocations", "count", revoked)
	}

	return errors.Join(errs...)
}

// Start begins periodic sweeping. The first sweep runs immediately.
func (j *Janitor) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)
	j.wg.Add(1)
	go j.run(ctx)
}

// Stop ends sweeping and waits for an in-flight sweep to finish.
func (j *Janitor) Stop() {
	if j.cancel != nil {
		j.cancel()
	}
	j.wg.Wait()
}

func (j *Janitor) run(ctx context.Context) {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	if err := j.RunOnce(ctx); err != nil && ctx.Err() == nil {
		j.logger.ErrorContext(ctx, "expired token sweep failed", "error", err)
	}
}
