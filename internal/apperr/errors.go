// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the error taxonomy shared by engines, stores and
// HTTP handlers. Engines return these sentinels (usually wrapped with
// context via fmt.Errorf and %w); the handler layer maps them to HTTP
// status codes with errors.Is.
package apperr

import "errors"

var (
	// ErrUnauthorized means no valid session was presented.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden means the session lacks a required permission.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound means the addressed entity does not exist, or is not
	// owned by the addressed parent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput covers malformed bodies, invalid enum values and
	// missing required fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCircularReference means a category reparent would make a category
	// its own ancestor.
	ErrCircularReference = errors.New("circular reference")

	// ErrTransitionNotAllowed means the requested workflow status is not
	// reachable for the caller's role and the item's current status.
	ErrTransitionNotAllowed = errors.New("transition not allowed")

	// ErrTrackingNumberRequired means the matched transition requires a
	// tracking number and neither the request nor the item supplies one.
	ErrTrackingNumberRequired = errors.New("tracking number required")

	// ErrConflict signals a unique-constraint violation the caller can act
	// on, e.g. a duplicate coupon code.
	ErrConflict = errors.New("conflict")

	// ErrDataUnavailable signals a storage failure. Cached readers fail
	// closed with this error instead of serving stale data.
	ErrDataUnavailable = errors.New("data unavailable")
)
