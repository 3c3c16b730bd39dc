package booking

import "github.com/avikr/exam-bus-booking/internal/model"

// The booking lifecycle is a small state machine.  Direct creation
// lands in CONFIRMED (gateway payment) or PENDING (UPI evidence
// awaiting verification).  Only administrators move bookings between
// states, and nothing ever re-enters PENDING.  CONFIRMED → REJECTED is
// allowed as an administrative correction; rejecting a booking is what
// releases its seats (the seat rows are removed alongside the status
// change).

// CanTransition reports whether a status change is legal.
func CanTransition(from, to string) bool {
	switch from {
	case model.BookingStatusPending:
		return to == model.BookingStatusConfirmed || to == model.BookingStatusRejected
	case model.BookingStatusConfirmed:
		return to == model.BookingStatusRejected
	default:
		return false
	}
}

// CanIssueTicket reports whether a ticket may be downloaded for a
// booking in the given status.  Only confirmed bookings issue tickets.
func CanIssueTicket(status string) bool {
	return status == model.BookingStatusConfirmed
}

// ValidStatus reports whether s is one of the known booking statuses.
func ValidStatus(s string) bool {
	switch s {
	case model.BookingStatusPending, model.BookingStatusConfirmed, model.BookingStatusRejected:
		return true
	}
	return false
}
