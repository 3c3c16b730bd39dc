package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avikr/exam-bus-booking/internal/model"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{model.BookingStatusPending, model.BookingStatusConfirmed, true},
		{model.BookingStatusPending, model.BookingStatusRejected, true},
		{model.BookingStatusConfirmed, model.BookingStatusRejected, true},
		{model.BookingStatusConfirmed, model.BookingStatusPending, false},
		{model.BookingStatusRejected, model.BookingStatusPending, false},
		{model.BookingStatusRejected, model.BookingStatusConfirmed, false},
		{model.BookingStatusPending, model.BookingStatusPending, false},
		{model.BookingStatusConfirmed, model.BookingStatusConfirmed, false},
		{"", model.BookingStatusConfirmed, false},
		{"BOGUS", model.BookingStatusRejected, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanIssueTicket(t *testing.T) {
	assert.True(t, CanIssueTicket(model.BookingStatusConfirmed))
	assert.False(t, CanIssueTicket(model.BookingStatusPending))
	assert.False(t, CanIssueTicket(model.BookingStatusRejected))
	assert.False(t, CanIssueTicket(""))
}

func TestValidStatus(t *testing.T) {
	assert.True(t, ValidStatus(model.BookingStatusPending))
	assert.True(t, ValidStatus(model.BookingStatusConfirmed))
	assert.True(t, ValidStatus(model.BookingStatusRejected))
	assert.False(t, ValidStatus("CANCELLED"))
	assert.False(t, ValidStatus("pending"))
	assert.False(t, ValidStatus(""))
}
