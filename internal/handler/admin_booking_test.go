package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avikr/exam-bus-booking/internal/booking"
	"github.com/avikr/exam-bus-booking/internal/model"
	"github.com/avikr/exam-bus-booking/internal/repository"
)

func newAdminBookingHandler(t *testing.T) (*AdminBookingHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	bookings := repository.NewBookingRepo(db)
	svc := booking.NewService(repository.NewBusRepo(db), bookings, nil)
	return NewAdminBookingHandler(svc, bookings), mock
}

func patchStatusContext(e *echo.Echo, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPatch, "/v1/admin/bookings/11/status", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := authedContext(e, req, rec, 1, "ADMIN")
	c.SetParamNames("id")
	c.SetParamValues("11")
	return c, rec
}

func TestSetStatusConfirmsPendingBooking(t *testing.T) {
	h, mock := newAdminBookingHandler(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, user_id FROM bookings WHERE id=\? FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "user_id"}).
			AddRow(model.BookingStatusPending, 7))
	mock.ExpectExec(`UPDATE bookings SET status=\? WHERE id=\?`).
		WithArgs(model.BookingStatusConfirmed, uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id=\? LIMIT 1`).
		WillReturnRows(sqlmock.NewRows(handlerBookingCols).
			AddRow(11, 7, 3, "Night Rider", "Mysore", "Bangalore", "2026-09-01",
				45000, model.BookingStatusConfirmed, model.PaymentMethodUPI, nil, nil, now, now))
	mock.ExpectQuery(`SELECT seat_label FROM booking_seats WHERE booking_id=\?`).
		WillReturnRows(sqlmock.NewRows([]string{"seat_label"}).AddRow("5"))

	e := echo.New()
	c, rec := patchStatusContext(e, `{"status":"CONFIRMED"}`)
	require.NoError(t, h.SetStatus(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"CONFIRMED"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStatusRejectsIllegalTransition(t *testing.T) {
	h, mock := newAdminBookingHandler(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT status, user_id FROM bookings WHERE id=\? FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "user_id"}).
			AddRow(model.BookingStatusRejected, 7))
	mock.ExpectRollback()

	e := echo.New()
	c, rec := patchStatusContext(e, `{"status":"CONFIRMED"}`)
	require.NoError(t, h.SetStatus(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSetStatusRejectsUnknownStatus(t *testing.T) {
	h, _ := newAdminBookingHandler(t)
	e := echo.New()
	c, rec := patchStatusContext(e, `{"status":"CANCELLED"}`)
	require.NoError(t, h.SetStatus(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
