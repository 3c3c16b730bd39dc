// This file defines administrator endpoints for reviewing bookings
// and driving the booking lifecycle (confirm and reject).

package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avikr/exam-bus-booking/internal/booking"
	"github.com/avikr/exam-bus-booking/internal/repository"
)

// AdminBookingHandler serves the admin booking review endpoints.
type AdminBookingHandler struct {
	Service  *booking.Service
	Bookings *repository.BookingRepo
}

func NewAdminBookingHandler(svc *booking.Service, bookings *repository.BookingRepo) *AdminBookingHandler {
	if svc == nil || bookings == nil {
		panic("nil dependency passed to NewAdminBookingHandler")
	}
	return &AdminBookingHandler{Service: svc, Bookings: bookings}
}

// List handles GET /v1/admin/bookings.  All filters are optional query
// params: user_id, bus_id, date, from, to, status.
func (h *AdminBookingHandler) List(c echo.Context) error {
	f := repository.BookingFilter{
		TravelDate: c.QueryParam("date"),
		RouteFrom:  c.QueryParam("from"),
		RouteTo:    c.QueryParam("to"),
	}
	if raw := c.QueryParam("user_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user_id"})
		}
		f.UserID = id
	}
	if raw := c.QueryParam("bus_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid bus_id"})
		}
		f.BusID = id
	}
	if s := strings.ToUpper(strings.TrimSpace(c.QueryParam("status"))); s != "" {
		if !booking.ValidStatus(s) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		f.Status = s
	}
	items, err := h.Bookings.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]bookingResp, 0, len(items))
	for _, b := range items {
		out = append(out, toBookingResp(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// statusReq is the PATCH body for a lifecycle transition.
type statusReq struct {
	Status string `json:"status"`
}

// SetStatus handles PATCH /v1/admin/bookings/:id/status.  Rejecting a
// booking frees its seats in the same transaction, so the labels
// become claimable the moment the response is sent.
func (h *AdminBookingHandler) SetStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body statusReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	next := strings.ToUpper(strings.TrimSpace(body.Status))
	if !booking.ValidStatus(next) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	b, err := h.Service.SetStatus(c.Request().Context(), id, next)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, booking.ErrIllegalTransition):
			return c.JSON(http.StatusConflict, echo.Map{"error": "illegal status transition"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status update failed"})
		}
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}
