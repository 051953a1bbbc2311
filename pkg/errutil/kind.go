// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package errutil

import (
	"errors"
	"maps"
)

// Kind classifies a failure for callers at the service boundary.
// Kinds are attached where the failure is detected and are never inferred
// from message text.
type Kind int

// Error kinds. The zero value is KindInternal so that unclassified errors
// default to a server-side failure.
const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindUnauthorized
	KindForbidden
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// kindError carries a Kind (and optional per-field messages) around an
// underlying error. msg, when set, is the client-facing text; otherwise the
// wrapped error's message is used.
type kindError struct {
	kind   Kind
	msg    string
	fields map[string]string
	err    error
}

func (e *kindError) message() string {
	if e.msg != "" {
		return e.msg
	}
	return e.err.Error()
}

func (e *kindError) Error() string { return e.err.Error() }

func (e *kindError) Unwrap() error { return e.err }

// WithKind attaches kind to err. A nil err stays nil.
func WithKind(kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}

// Wrap attaches kind to err with msg as the client-facing message, keeping
// err (and whatever cause it carries) for logs. A nil err stays nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, msg: msg, err: err}
}

// Validation attaches KindValidation and the per-field messages to err.
func Validation(fields map[string]string, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: KindValidation, fields: maps.Clone(fields), err: err}
}

// Conflict attaches KindConflict to err, naming the colliding field with
// msg as both the client-facing message and the field message.
func Conflict(field, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: KindConflict, msg: msg, fields: map[string]string{field: msg}, err: err}
}

// KindOf returns the outermost kind attached to err, or KindInternal.
func KindOf(err error) Kind {
	var ke *kindError
	if errors.As(err, &ke) {
		return ke.kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Message returns the client-facing message of the outermost classified
// error. Internal errors return an empty string so callers substitute a
// generic message.
func Message(err error) string {
	var ke *kindError
	if !errors.As(err, &ke) || ke.kind == KindInternal {
		return ""
	}
	return ke.message()
}

// Fields returns the per-field validation messages attached to err, if any.
func Fields(err error) map[string]string {
	var ke *kindError
	if errors.As(err, &ke) && len(ke.fields) > 0 {
		return maps.Clone(ke.fields)
	}
	return nil
}
