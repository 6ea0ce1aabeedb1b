// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shopadmin/internal/apperr"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"unauthorized", apperr.ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", apperr.ErrForbidden, http.StatusForbidden},
		{"not found", apperr.ErrNotFound, http.StatusNotFound},
		{"invalid input", apperr.ErrInvalidInput, http.StatusBadRequest},
		{"circular reference", apperr.ErrCircularReference, http.StatusBadRequest},
		{"transition not allowed", apperr.ErrTransitionNotAllowed, http.StatusBadRequest},
		{"tracking required", apperr.ErrTrackingNumberRequired, http.StatusBadRequest},
		{"conflict", apperr.ErrConflict, http.StatusConflict},
		{"data unavailable", apperr.ErrDataUnavailable, http.StatusServiceUnavailable},
		{"unknown", errors.New("sql: connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, fmt.Errorf("wrapped: %w", tt.err))

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type: got %q", ct)
			}

			var body errorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error == "" {
				t.Error("error body must not be empty")
			}
		})
	}
}

func TestWriteErrorHidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("pq: password authentication failed for user"))

	if strings.Contains(rec.Body.String(), "password") {
		t.Error("internal error detail leaked into the response")
	}

	rec = httptest.NewRecorder()
	writeError(rec, fmt.Errorf("%w: load categories: dial tcp refused", apperr.ErrDataUnavailable))
	if strings.Contains(rec.Body.String(), "dial tcp") {
		t.Error("storage error detail leaked into the response")
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"ok"}`, false},
		{"unknown field", `{"name":"ok","sneaky":true}`, true},
		{"malformed", `{"name":`, true},
		{"empty body", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v payload
			err := decodeJSON(req, &v)
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("decodeJSON: %v", err)
			}
			if v.Name != "ok" {
				t.Errorf("name: got %q", v.Name)
			}
		})
	}
}

func TestDecodeJSONRejectsOversizedBody(t *testing.T) {
	big := `{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big))

	var v struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(req, &v); !errors.Is(err, apperr.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for oversized body, got %v", err)
	}
}
