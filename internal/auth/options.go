// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/mediahub/mediahub/pkg/errutil"
)

var tracer = otel.Tracer("mediahub/auth")

// Outcome label recorded for operations that return no error. Failed
// operations are recorded with the lowercase error kind.
const OutcomeSuccess = "success"

// Recorder receives one event per orchestrator operation.
type Recorder interface {
	RecordAuthEvent(operation, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordAuthEvent(string, string) {}

// Notifier delivers password-reset links out of band.
type Notifier interface {
	SendPasswordResetLink(ctx context.Context, email, token string) error
}

// Option configures Service and PasswordResetService.
type Option func(*options)

type options struct {
	logger      *slog.Logger
	recorder    Recorder
	identityTTL time.Duration
	resetTTL    time.Duration
	notifyWait  time.Duration
}

func defaultOptions() options {
	return options{
		logger:      slog.Default(),
		recorder:    nopRecorder{},
		identityTTL: DefaultIdentityTTL,
		resetTTL:    DefaultResetTokenTTL,
		notifyWait:  30 * time.Second,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the logger. Nil keeps slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder sets the metrics recorder. Nil disables recording.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithIdentityTTL sets the lifetime of issued identity tokens.
func WithIdentityTTL(ttl time.Duration) Option {
	return func(o *options) { o.identityTTL = ttl }
}

// WithResetTTL sets the lifetime of issued reset tokens.
func WithResetTTL(ttl time.Duration) Option {
	return func(o *options) { o.resetTTL = ttl }
}

// WithNotifyTimeout bounds a single reset notification dispatch.
func WithNotifyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.notifyWait = d
		}
	}
}

// startOp opens a span for operation. The returned func must be deferred
// with a pointer to the operation's named error.
func (o *options) startOp(ctx context.Context, operation string) (context.Context, func(*error)) {
	ctx, span := tracer.Start(ctx, "auth."+operation)
	return ctx, func(errp *error) {
		outcome := OutcomeSuccess
		if err := *errp; err != nil {
			outcome = errutil.KindOf(err).String()
			span.RecordError(err)
			span.SetStatus(codes.Error, outcome)
		}
		o.recorder.RecordAuthEvent(operation, outcome)
		span.End()
	}
}
