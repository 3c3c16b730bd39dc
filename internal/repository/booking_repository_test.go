package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikr/exam-bus-booking/internal/model"
)

func newBookingRepo(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func TestCreateSeatsTxMapsDuplicateToConflict(t *testing.T) {
	r, mock := newBookingRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO booking_seats`).
		WithArgs(uint64(11), uint64(3), "2026-09-01", "5", uint64(11), uint64(3), "2026-09-01", "6").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry '3-2026-09-01-5' for key 'uq_seat'"))

	tx, err := r.DB().Begin()
	require.NoError(t, err)
	err = r.CreateSeatsTx(context.Background(), tx, 11, 3, "2026-09-01", []string{"5", "6"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateSeatsTxEmptyIsNoop(t *testing.T) {
	r, mock := newBookingRepo(t)
	mock.ExpectBegin()
	tx, err := r.DB().Begin()
	require.NoError(t, err)
	assert.NoError(t, r.CreateSeatsTx(context.Background(), tx, 11, 3, "2026-09-01", nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTakenSeatsOrdersNumerically(t *testing.T) {
	r, mock := newBookingRepo(t)

	// LENGTH-first ordering keeps "9" ahead of "10".
	mock.ExpectQuery(`SELECT seat_label FROM booking_seats WHERE bus_id=\? AND travel_date=\? ORDER BY LENGTH\(seat_label\), seat_label`).
		WithArgs(uint64(3), "2026-09-01").
		WillReturnRows(sqlmock.NewRows([]string{"seat_label"}).
			AddRow("2").AddRow("9").AddRow("10"))

	labels, err := r.TakenSeats(context.Background(), 3, "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "9", "10"}, labels)
}

func TestGetByIDNotFound(t *testing.T) {
	r, mock := newBookingRepo(t)
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id=\? LIMIT 1`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	_, err := r.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestGetForUpdateTxNotFound(t *testing.T) {
	r, mock := newBookingRepo(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, user_id FROM bookings WHERE id=\? FOR UPDATE`).
		WithArgs(uint64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"status", "user_id"}))

	tx, err := r.DB().Begin()
	require.NoError(t, err)
	_, _, err = r.GetForUpdateTx(context.Background(), tx, 404)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestListPopulatesSeatLabels(t *testing.T) {
	r, mock := newBookingRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE 1=1 AND user_id=\? AND status=\? ORDER BY created_at DESC`).
		WithArgs(uint64(7), model.BookingStatusConfirmed).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "bus_id", "bus_name",
			"route_from", "route_to", "travel_date", "price_cents", "status",
			"payment_method", "payment_ref", "screenshot_path", "created_at", "updated_at"}).
			AddRow(11, 7, 3, "Night Rider", "Mysore", "Bangalore", "2026-09-01",
				45000, model.BookingStatusConfirmed, model.PaymentMethodGateway, nil, nil, now, now).
			AddRow(12, 7, 4, "Day Liner", "Hubli", "Bangalore", "2026-09-02",
				38000, model.BookingStatusConfirmed, model.PaymentMethodGateway, nil, nil, now, now))
	mock.ExpectQuery(`SELECT booking_id, seat_label FROM booking_seats`).
		WithArgs(uint64(11), uint64(12)).
		WillReturnRows(sqlmock.NewRows([]string{"booking_id", "seat_label"}).
			AddRow(11, "5").AddRow(11, "6").AddRow(12, "1"))

	got, err := r.List(context.Background(), BookingFilter{UserID: 7, Status: model.BookingStatusConfirmed})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"5", "6"}, got[0].SeatLabels)
	assert.Equal(t, []string{"1"}, got[1].SeatLabels)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListEmptySkipsSeatQuery(t *testing.T) {
	r, mock := newBookingRepo(t)
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE 1=1 ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "bus_id", "bus_name",
			"route_from", "route_to", "travel_date", "price_cents", "status",
			"payment_method", "payment_ref", "screenshot_path", "created_at", "updated_at"}))

	got, err := r.List(context.Background(), BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}
