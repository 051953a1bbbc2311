// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

// Package errutil classifies errors for the service boundary and logs them
// with their structured context.
package errutil

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level with its kind and, for oops errors, the
// code and context. Stack traces and internal identifiers stay in the log
// and never reach clients.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error) {
	attrs := []any{"kind", KindOf(err).String()}
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs = append(attrs, "error", oopsErr.Error())
		if code := oopsErr.Code(); code != nil && code != "" {
			attrs = append(attrs, "code", code)
		}
		if octx := oopsErr.Context(); len(octx) > 0 {
			attrs = append(attrs, "context", octx)
		}
	} else {
		attrs = append(attrs, "error", err)
	}
	logger.ErrorContext(ctx, msg, attrs...)
}
