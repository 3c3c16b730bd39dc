// This file defines the customer-facing booking endpoints: creating a
// booking, listing and inspecting own bookings, cancelling a pending
// booking and fetching the ticket for a confirmed one.  All methods
// assume JWT authentication and role validation already ran in
// middleware.

package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avikr/exam-bus-booking/internal/booking"
	"github.com/avikr/exam-bus-booking/internal/model"
	"github.com/avikr/exam-bus-booking/internal/queue"
	"github.com/avikr/exam-bus-booking/internal/repository"
	queuepublisher "github.com/avikr/exam-bus-booking/internal/service"
)

// BookingHandler groups the booking service and repositories needed to
// serve customer booking endpoints.
type BookingHandler struct {
	Service  *booking.Service
	Bookings *repository.BookingRepo
}

// NewBookingHandler constructs a BookingHandler.  Both dependencies
// must be non-nil.
func NewBookingHandler(svc *booking.Service, bookings *repository.BookingRepo) *BookingHandler {
	if svc == nil || bookings == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Service: svc, Bookings: bookings}
}

// createBookingReq is the POST /v1/bookings request body.  Either
// bus_id or bus_name identifies the bus; bus_id wins when both are
// present.
type createBookingReq struct {
	BusID          uint64   `json:"bus_id"`
	BusName        string   `json:"bus_name"`
	TravelDate     string   `json:"travel_date"`
	Seats          []string `json:"seats"`
	PaymentMethod  string   `json:"payment_method"`
	PaymentRef     *string  `json:"payment_ref"`
	ScreenshotPath *string  `json:"screenshot_path"`
}

// bookingResp is the booking shape returned to customers.
type bookingResp struct {
	ID             uint64    `json:"id"`
	BusID          uint64    `json:"bus_id"`
	BusName        string    `json:"bus_name"`
	RouteFrom      string    `json:"route_from"`
	RouteTo        string    `json:"route_to"`
	TravelDate     string    `json:"travel_date"`
	Seats          []string  `json:"seats"`
	PriceCents     uint32    `json:"price_cents"`
	Status         string    `json:"status"`
	PaymentMethod  string    `json:"payment_method"`
	PaymentRef     *string   `json:"payment_ref,omitempty"`
	ScreenshotPath *string   `json:"screenshot_path,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toBookingResp(b model.Booking) bookingResp {
	return bookingResp{
		ID:             b.ID,
		BusID:          b.BusID,
		BusName:        b.BusName,
		RouteFrom:      b.RouteFrom,
		RouteTo:        b.RouteTo,
		TravelDate:     b.TravelDate,
		Seats:          b.SeatLabels,
		PriceCents:     b.PriceCents,
		Status:         b.Status,
		PaymentMethod:  b.PaymentMethod,
		PaymentRef:     b.PaymentRef,
		ScreenshotPath: b.ScreenshotPath,
		CreatedAt:      b.CreatedAt,
		UpdatedAt:      b.UpdatedAt,
	}
}

// Create handles POST /v1/bookings.  The seat claim is checked against
// persisted state inside the admission path; on overlap the response is
// 409 with the conflicting seat labels so the client can offer
// alternatives.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body createBookingReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.BusID == 0 && strings.TrimSpace(body.BusName) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "bus_id or bus_name is required"})
	}
	if len(body.Seats) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats is required"})
	}

	b, err := h.Service.RequestBooking(c.Request().Context(), booking.Request{
		BusID:          body.BusID,
		BusName:        body.BusName,
		TravelDate:     body.TravelDate,
		SeatLabels:     body.Seats,
		UserID:         userID,
		PaymentMethod:  body.PaymentMethod,
		PaymentRef:     body.PaymentRef,
		ScreenshotPath: body.ScreenshotPath,
	})
	if err != nil {
		var vErr *booking.ValidationError
		if errors.As(err, &vErr) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": vErr.Reason})
		}
		var sErr *booking.SeatsUnavailableError
		if errors.As(err, &sErr) {
			return c.JSON(http.StatusConflict, echo.Map{
				"error":             "seats already booked",
				"conflicting_seats": sErr.Seats,
			})
		}
		if errors.Is(err, repository.ErrBusNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
	}

	// Broker delivery is best effort; the booking is already durable.
	go func(b model.Booking) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ev := queue.BookingCreatedEvent{
			BookingID:     b.ID,
			UserID:        b.UserID,
			BusID:         b.BusID,
			BusName:       b.BusName,
			RouteFrom:     b.RouteFrom,
			RouteTo:       b.RouteTo,
			TravelDate:    b.TravelDate,
			SeatLabels:    b.SeatLabels,
			PriceCents:    b.PriceCents,
			Status:        b.Status,
			PaymentMethod: b.PaymentMethod,
			CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := queuepublisher.PublishBookingCreated(ctx, ev); err != nil {
			log.Printf("queue publish booking %d: %v", b.ID, err)
		}
	}(b)

	return c.JSON(http.StatusCreated, toBookingResp(b))
}

// ListMine handles GET /v1/my-bookings.  Optional status query param
// narrows the list.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f := repository.BookingFilter{UserID: userID}
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

// Get handles GET /v1/bookings/:id.  Customers may only see their own
// bookings; administrators may see any.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if b.UserID != userID && !isAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, toBookingResp(b))
}

// Cancel handles DELETE /v1/bookings/:id.  Only the owner may cancel,
// and only while the booking is still pending.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Service.Cancel(c.Request().Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, booking.ErrNotCancellable):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking can no longer be cancelled"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Ticket handles GET /v1/bookings/:id/ticket.  Only confirmed bookings
// produce a ticket; pending and rejected ones return 409.
func (h *BookingHandler) Ticket(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Service.Ticket(c.Request().Context(), id, userID, isAdmin(c))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, repository.ErrForbidden):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		case errors.Is(err, booking.ErrNotConfirmed):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking not confirmed"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "ticket failed"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ticket": echo.Map{
			"booking_id":  b.ID,
			"bus_name":    b.BusName,
			"route":       b.RouteFrom + " -> " + b.RouteTo,
			"travel_date": b.TravelDate,
			"seats":       b.SeatLabels,
			"price_cents": b.PriceCents,
			"issued_at":   time.Now().UTC(),
		},
	})
}
