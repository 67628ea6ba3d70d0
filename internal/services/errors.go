// Package services implements the business logic of the triage backend:
// the unified aggregator, the intake adapters, the lifecycle manager, and
// the dashboard statistics. This file centralizes the service-level error
// values so they can be consistently returned by service methods and
// checked by callers.
//
// Translation into HTTP status codes and user-facing messages is the
// handler layer's job; the service layer only distinguishes the classes.
package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a rejected submission or parameter. The wrapped
	// message carries the specific human-readable reason.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates the addressed complaint record does not exist
	// in its family table.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidStatus is returned when a status value is outside the
	// fixed lifecycle set. It is distinct from ErrNotFound so callers can
	// report the two differently.
	ErrInvalidStatus = errors.New("invalid status value")

	// ErrStoreUnavailable indicates a store could not serve the request
	// (pool exhausted, file locked, context deadline). Nothing was
	// persisted.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrBadCredentials covers both unknown usernames and wrong
	// passwords; the two are deliberately indistinguishable to callers.
	ErrBadCredentials = errors.New("invalid username or password")

	// ErrAccountLocked is returned while a login lockout window is
	// active. Further attempts do not extend the window.
	ErrAccountLocked = errors.New("account temporarily locked")
)

// validationf wraps ErrValidation with a specific reason.
func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}
