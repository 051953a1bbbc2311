// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package auth

import (
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/oops"

	"github.com/mediahub/mediahub/pkg/errutil"
)

// Field constraints.
const (
	MinNameLength     = 2
	MinNickNameLength = 2
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

// FieldErrors maps a request field to a human-readable message.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

// Err returns a Validation error carrying f, or nil when f is empty.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return errutil.Validation(f, oops.Code("AUTH_VALIDATION_FAILED").
		With("fields", len(f)).
		Errorf("Invalid input"))
}

// RegisterInput holds the registration request fields.
type RegisterInput struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	NickName  string `json:"nickName"`
	Password  string `json:"password"`
}

// ValidateRegistration checks the shape of every registration field and
// reports all failures at once.
func ValidateRegistration(in RegisterInput) error {
	errs := FieldErrors{}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		errs.Add("email", "Email is required")
	} else if !validEmail(email) {
		errs.Add("email", "Invalid email")
	}

	if utf8.RuneCountInString(strings.TrimSpace(in.FirstName)) < MinNameLength {
		errs.Add("firstName", "Short name")
	}
	if utf8.RuneCountInString(strings.TrimSpace(in.LastName)) < MinNameLength {
		errs.Add("lastName", "Short last name")
	}

	nick := strings.TrimSpace(in.NickName)
	switch {
	case utf8.RuneCountInString(nick) < MinNickNameLength:
		errs.Add("nickName", "Short nickname")
	case strings.IndexFunc(nick, unicode.IsSpace) >= 0:
		errs.Add("nickName", "Nickname cannot contain spaces")
	}

	validatePassword("password", in.Password, errs)

	return errs.Err()
}

// ValidateLogin checks that both login fields are present.
func ValidateLogin(identifier, password string) error {
	errs := FieldErrors{}
	if strings.TrimSpace(identifier) == "" {
		errs.Add("identifier", "Email or nickname is required")
	}
	if password == "" {
		errs.Add("password", "Password is required")
	}
	return errs.Err()
}

// ValidateNewPassword checks a replacement password, reporting it under
// field.
func ValidateNewPassword(field, password string) error {
	errs := FieldErrors{}
	validatePassword(field, password, errs)
	return errs.Err()
}

func validatePassword(field, password string, errs FieldErrors) {
	n := utf8.RuneCountInString(password)
	switch {
	case password == "":
		errs.Add(field, "Password is required")
	case n < MinPasswordLength:
		errs.Add(field, "Your password must have at least 6 characters")
	case n > MaxPasswordLength:
		errs.Add(field, "Your password is too long")
	}
}

// validEmail accepts a bare address (no display name, no angle brackets).
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@")+1:], ".")
}
