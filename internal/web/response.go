// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MediaHub Contributors

package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/mediahub/mediahub/pkg/errutil"
)

const msgInternal = "Internal server error"

// errorBody is the envelope for every failed request.
type errorBody struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func statusFor(kind errutil.Kind) int {
	switch kind {
	case errutil.KindValidation:
		return http.StatusBadRequest
	case errutil.KindConflict:
		return http.StatusConflict
	case errutil.KindNotFound:
		return http.StatusNotFound
	case errutil.KindUnauthorized:
		return http.StatusUnauthorized
	case errutil.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and envelope. Internal errors are logged
// with their cause and answered with a generic message.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := errutil.KindOf(err)
	status := statusFor(kind)
	body := errorBody{Error: errutil.Message(err), Errors: errutil.Fields(err)}

	if status == http.StatusInternalServerError {
		errutil.LogError(r.Context(), a.logger, "request failed", err)
		body = errorBody{Error: msgInternal}
	} else {
		a.logger.DebugContext(r.Context(), "request rejected",
			"kind", kind.String(), "status", status, "error", err.Error())
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into dst.
func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBody)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return nil
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return errutil.Wrap(errutil.KindValidation, "Request body too large",
			oops.Code("HTTP_BODY_TOO_LARGE").With("limit", tooLarge.Limit).Wrap(err))
	case errors.Is(err, io.EOF):
		return errutil.Wrap(errutil.KindValidation, "Request body is required",
			oops.Code("HTTP_BODY_MISSING").Wrap(err))
	default:
		return errutil.Wrap(errutil.KindValidation, "Invalid request body",
			oops.Code("HTTP_INVALID_BODY").Wrap(err))
	}
}

// pathID parses the ULID path parameter name.
func pathID(r *http.Request, name string) (ulid.ULID, error) {
	return parseID(name, r.PathValue(name))
}

func parseID(field, raw string) (ulid.ULID, error) {
	id, err := ulid.ParseStrict(raw)
	if err != nil {
		return ulid.ULID{}, errutil.Validation(map[string]string{field: "Invalid id"},
			oops.Code("HTTP_INVALID_ID").
				With("param", field).
				With("value", raw).
				With("cause", err.Error()).
				Errorf("Invalid id"))
	}
	return id, nil
}
