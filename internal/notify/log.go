// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes reset links to the log instead of sending them. It is
// meant for development. The link, which carries the token, is only logged
// at debug level.
type LogNotifier struct {
	logger *slog.Logger
	links  LinkBuilder
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger, links LinkBuilder) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger, links: links}
}

// SendPasswordResetLink logs that a link was issued.
func (n *LogNotifier) SendPasswordResetLink(ctx context.Context, email, token string) error {
	link, err := n.links.Link(token)
	if err != nil {
		return err
	}
	n.logger.InfoContext(ctx, "password reset link issued", "email", email)
	n.logger.DebugContext(ctx, "password reset link", "email", email, "link", link)
	return nil
}
