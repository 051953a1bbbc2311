// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package notify

import (
	"net/url"

	"github.com/samber/oops"
)

// LinkBuilder turns a reset token into the URL a user follows to choose a
// new password. The token goes into the "token" query parameter.
type LinkBuilder struct {
	BaseURL string
}

// Link returns the reset URL for token.
func (b LinkBuilder) Link(token string) (string, error) {
	u, err := url.Parse(b.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", oops.Code("NOTIFY_INVALID_BASE_URL").With("base_url", b.BaseURL).Errorf("invalid reset base URL")
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
