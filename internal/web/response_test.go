// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediahub/mediahub/pkg/errutil"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		kind errutil.Kind
		want int
	}{
		{errutil.KindValidation, http.StatusBadRequest},
		{errutil.KindConflict, http.StatusConflict},
		{errutil.KindNotFound, http.StatusNotFound},
		{errutil.KindUnauthorized, http.StatusUnauthorized},
		{errutil.KindForbidden, http.StatusForbidden},
		{errutil.KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.kind))
		})
	}
}

func TestWriteError_InternalHidesCause(t *testing.T) {
	var logs bytes.Buffer
	a := &API{logger: slog.New(slog.NewJSONHandler(&logs, nil))}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	a.writeError(rec, req, oops.Code("DB_DOWN").With("host", "db-1").Wrap(errors.New("dial tcp 10.0.0.5:5432")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Internal server error"}`, rec.Body.String())
	assert.Contains(t, logs.String(), "DB_DOWN")
	assert.Contains(t, logs.String(), "10.0.0.5")
}

func TestWriteError_ValidationFields(t *testing.T) {
	a := &API{logger: slog.New(slog.DiscardHandler)}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	a.writeError(rec, req, errutil.Validation(map[string]string{"email": "Invalid email"},
		oops.Code("AUTH_VALIDATION_FAILED").Errorf("Invalid input")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Invalid input", body.Error)
	assert.Equal(t, map[string]string{"email": "Invalid email"}, body.Errors)
}

func TestDecode_BodyTooLarge(t *testing.T) {
	a := &API{logger: slog.New(slog.DiscardHandler), maxBody: 16}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"content":"`+strings.Repeat("x", 64)+`"}`))
	rec := httptest.NewRecorder()

	var dst map[string]string
	err := a.decode(rec, req, &dst)
	require.Error(t, err)
	errutil.AssertKind(t, err, errutil.KindValidation)
	errutil.AssertErrorCode(t, err, "HTTP_BODY_TOO_LARGE")
}

func TestParseID(t *testing.T) {
	_, err := parseID("commentId", "not-a-ulid")
	require.Error(t, err)
	errutil.AssertKind(t, err, errutil.KindValidation)
	assert.Equal(t, "Invalid id", errutil.Message(err))
	assert.Equal(t, map[string]string{"commentId": "Invalid id"}, errutil.Fields(err))
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, ok := bearerToken(req)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
