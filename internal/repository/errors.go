// Package repository defines error values that are reused across
// multiple repositories. These sentinel values allow higher layers such
// as handlers and services to distinguish between failure scenarios.
// For example, ErrForbidden indicates that the current user is not
// authorized to operate on a resource owned by someone else, while
// ErrConflict signals that an operation cannot proceed because of
// existing dependent records.
package repository

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own. Handlers should translate this into an
// HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a write cannot be performed because of
// conflicting state. Handlers should translate this into an HTTP 409
// response.
var ErrConflict = errors.New("conflict")

// ErrBusNotFound is returned when no bus matches the given identifier
// or name.
var ErrBusNotFound = errors.New("bus not found")

// ErrBookingNotFound is returned when the referenced booking does not
// exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrNumberExists is returned when creating or updating a bus with a
// registration number that is already taken.
var ErrNumberExists = errors.New("bus number already exists")

// ErrEmailExists is returned when registering a user with an email
// that is already taken.
var ErrEmailExists = errors.New("email already exists")

// isDuplicateKey reports whether err is a MySQL duplicate-entry error
// (code 1062). The driver surfaces the code in the error text.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
