// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the JSON HTTP handlers for the back-office
// API. Handlers validate input, call the stores and engines, and map the
// error taxonomy to HTTP statuses. Unexpected errors are logged with
// context and surface as a generic 500.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"shopadmin/internal/apperr"
)

// maxBodyBytes caps request bodies; the API carries small JSON documents.
const maxBodyBytes = 1 << 20

// writeJSON serializes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}

// errorBody is the structured error envelope of every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}

// writeError maps err onto the HTTP status for its taxonomy class and
// writes the {error} body. Errors outside the taxonomy are logged and
// returned as a generic 500 so internal detail never leaks.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: err.Error()})
	case errors.Is(err, apperr.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, apperr.ErrInvalidInput),
		errors.Is(err, apperr.ErrCircularReference),
		errors.Is(err, apperr.ErrTransitionNotAllowed),
		errors.Is(err, apperr.ErrTrackingNumberRequired):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
	case errors.Is(err, apperr.ErrDataUnavailable):
		slog.Error("data unavailable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "data temporarily unavailable"})
	default:
		slog.Error("unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal server error"})
	}
}

// decodeJSON reads the request body into v, rejecting unknown fields and
// oversized payloads.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}
