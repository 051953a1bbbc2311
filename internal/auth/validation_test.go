// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mediahub/mediahub/internal/auth"
	"github.com/mediahub/mediahub/pkg/errutil"
)

func validRegistration() auth.RegisterInput {
	return auth.RegisterInput{
		Email:     "a@x.com",
		FirstName: "Alice",
		LastName:  "Liddell",
		NickName:  "alice",
		Password:  "secret1",
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *auth.RegisterInput)
		fields map[string]string
	}{
		{"valid", func(*auth.RegisterInput) {}, nil},
		{"missing email", func(in *auth.RegisterInput) { in.Email = "" }, map[string]string{"email": "Email is required"}},
		{"bad email", func(in *auth.RegisterInput) { in.Email = "not-an-email" }, map[string]string{"email": "Invalid email"}},
		{"display name email", func(in *auth.RegisterInput) { in.Email = "Alice <a@x.com>" }, map[string]string{"email": "Invalid email"}},
		{"short first name", func(in *auth.RegisterInput) { in.FirstName = "A" }, map[string]string{"firstName": "Short name"}},
		{"short last name", func(in *auth.RegisterInput) { in.LastName = " " }, map[string]string{"lastName": "Short last name"}},
		{"short nickname", func(in *auth.RegisterInput) { in.NickName = "a" }, map[string]string{"nickName": "Short nickname"}},
		{"nickname with space", func(in *auth.RegisterInput) { in.NickName = "al ice" }, map[string]string{"nickName": "Nickname cannot contain spaces"}},
		{"nickname with tab", func(in *auth.RegisterInput) { in.NickName = "al\tice" }, map[string]string{"nickName": "Nickname cannot contain spaces"}},
		{"short password", func(in *auth.RegisterInput) { in.Password = "12345" }, map[string]string{"password": "Your password must have at least 6 characters"}},
		{"long password", func(in *auth.RegisterInput) { in.Password = strings.Repeat("x", 129) }, map[string]string{"password": "Your password is too long"}},
		{
			"several fields at once",
			func(in *auth.RegisterInput) {
				in.Email = "bad"
				in.NickName = "x y"
				in.Password = ""
			},
			map[string]string{
				"email":    "Invalid email",
				"nickName": "Nickname cannot contain spaces",
				"password": "Password is required",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegistration()
			tt.mutate(&in)

			err := auth.ValidateRegistration(in)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			errutil.AssertKind(t, err, errutil.KindValidation)
			assert.Equal(t, tt.fields, errutil.Fields(err))
		})
	}
}

func TestValidateLogin(t *testing.T) {
	assert.NoError(t, auth.ValidateLogin("alice", "x"))

	err := auth.ValidateLogin(" ", "")
	errutil.AssertKind(t, err, errutil.KindValidation)
	assert.Equal(t, map[string]string{
		"identifier": "Email or nickname is required",
		"password":   "Password is required",
	}, errutil.Fields(err))
}

func TestValidateNewPassword(t *testing.T) {
	assert.NoError(t, auth.ValidateNewPassword("newPassword", "secret2"))

	err := auth.ValidateNewPassword("newPassword", "abc")
	errutil.AssertKind(t, err, errutil.KindValidation)
	assert.Contains(t, errutil.Fields(err), "newPassword")
}
