package booking

import (
	"errors"
	"fmt"
	"strings"
)

// ErrIllegalTransition is returned when an administrator attempts a
// status change the lifecycle does not permit (for example rejected
// back to pending).  Handlers should translate this into an HTTP 409
// response.
var ErrIllegalTransition = errors.New("illegal status transition")

// ErrNotConfirmed is returned when a ticket is requested for a booking
// that is not in the confirmed state.
var ErrNotConfirmed = errors.New("booking not confirmed")

// ErrNotCancellable is returned when a user attempts to cancel a
// booking that is no longer pending.  Confirmed bookings can only be
// voided by an administrator rejection.
var ErrNotCancellable = errors.New("booking can no longer be cancelled")

// ValidationError describes a request rejected before touching the
// store.  Handlers should translate it into an HTTP 400 response.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// SeatsUnavailableError is the admission race outcome: one or more of
// the requested seats is already held by a non-rejected booking.  The
// Seats field names the exact conflicts so the caller can retry with
// different seats.  Handlers should translate it into an HTTP 409
// response.
type SeatsUnavailableError struct {
	Seats []string
}

func (e *SeatsUnavailableError) Error() string {
	return "seats already booked: " + strings.Join(e.Seats, ", ")
}
