// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
)

// DefaultResendURL is the Resend API endpoint.
const DefaultResendURL = "https://api.resend.com"

var resetEmail = template.Must(template.New("reset").Parse(
	`<p>A password reset was requested for your MediaHub account.</p>
<p><a href="{{.}}">Choose a new password</a></p>
<p>If you did not ask for this, you can ignore this email.</p>`))

// ResendConfig configures ResendMailer.
type ResendConfig struct {
	APIKey  string
	From    string
	APIURL  string
	Links   LinkBuilder
	Timeout time.Duration
}

// ResendMailer sends reset links through the Resend email API.
type ResendMailer struct {
	cfg    ResendConfig
	client *http.Client
}

// NewResendMailer creates a ResendMailer.
func NewResendMailer(cfg ResendConfig) (*ResendMailer, error) {
	if cfg.APIKey == "" {
		return nil, oops.Code("NOTIFY_CONFIG_INVALID").Errorf("resend API key is required")
	}
	if cfg.From == "" {
		return nil, oops.Code("NOTIFY_CONFIG_INVALID").Errorf("sender address is required")
	}
	if _, err := cfg.Links.Link("probe"); err != nil {
		return nil, err
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultResendURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &ResendMailer{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendPasswordResetLink emails the reset link for token to email.
func (m *ResendMailer) SendPasswordResetLink(ctx context.Context, email, token string) error {
	link, err := m.cfg.Links.Link(token)
	if err != nil {
		return err
	}

	var html bytes.Buffer
	if err := resetEmail.Execute(&html, link); err != nil {
		return oops.Code("NOTIFY_RENDER_FAILED").Wrap(err)
	}

	body, err := json.Marshal(sendRequest{
		From:    m.cfg.From,
		To:      []string{email},
		Subject: "Reset your MediaHub password",
		HTML:    html.String(),
	})
	if err != nil {
		return oops.Code("NOTIFY_ENCODE_FAILED").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(m.cfg.APIURL, "/")+"/emails", bytes.NewReader(body))
	if err != nil {
		return oops.Code("NOTIFY_REQUEST_FAILED").Wrap(err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return oops.Code("NOTIFY_SEND_FAILED").With("provider", "resend").Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return oops.Code("NOTIFY_SEND_REJECTED").
			With("provider", "resend").
			With("status", resp.StatusCode).
			With("response", string(detail)).
			Errorf("email provider rejected message")
	}
	return nil
}
