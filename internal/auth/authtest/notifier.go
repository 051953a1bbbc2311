// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package authtest

import (
	"context"
	"sync"

	"github.com/mediahub/mediahub/internal/auth"
)

// Link is a reset link captured by Notifier.
type Link struct {
	Email string
	Token string
}

// Notifier records reset links instead of delivering them.
type Notifier struct {
	mu    sync.Mutex
	links []Link
	err   error
}

// FailWith makes subsequent sends return err after recording the link.
func (n *Notifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.err = err
}

// SendPasswordResetLink records the link.
func (n *Notifier) SendPasswordResetLink(_ context.Context, email, token string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.links = append(n.links, Link{Email: email, Token: token})
	return n.err
}

// Links returns a copy of the recorded links.
func (n *Notifier) Links() []Link {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Link(nil), n.links...)
}

// Last returns the most recent link, if any.
func (n *Notifier) Last() (Link, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.links) == 0 {
		return Link{}, false
	}
	return n.links[len(n.links)-1], true
}

var _ auth.Notifier = (*Notifier)(nil)
