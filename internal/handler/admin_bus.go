// This file defines administrator endpoints for managing the bus
// fleet.  All routes are gated by the ADMIN role in middleware.

package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avikr/exam-bus-booking/internal/model"
	"github.com/avikr/exam-bus-booking/internal/repository"
)

// AdminBusHandler manages bus records.
type AdminBusHandler struct {
	Buses *repository.BusRepo
}

func NewAdminBusHandler(buses *repository.BusRepo) *AdminBusHandler {
	if buses == nil {
		panic("nil repository passed to NewAdminBusHandler")
	}
	return &AdminBusHandler{Buses: buses}
}

// busReq is the create/update request body.
type busReq struct {
	Name          string   `json:"name"`
	Number        string   `json:"number"`
	Capacity      uint32   `json:"capacity"`
	BusType       string   `json:"bus_type"`
	Status        string   `json:"status"`
	FromCity      string   `json:"from_city"`
	ToCity        string   `json:"to_city"`
	TravelDate    string   `json:"travel_date"`
	DepartureTime string   `json:"departure_time"`
	PriceCents    uint32   `json:"price_cents"`
	ExamIDs       []uint64 `json:"exam_ids"`
}

func (r *busReq) validate() string {
	r.Name = strings.TrimSpace(r.Name)
	r.Number = strings.TrimSpace(r.Number)
	r.FromCity = strings.TrimSpace(r.FromCity)
	r.ToCity = strings.TrimSpace(r.ToCity)
	if r.Name == "" || r.Number == "" {
		return "name and number are required"
	}
	if r.Capacity == 0 || r.Capacity > 120 {
		return "capacity must be between 1 and 120"
	}
	if !model.ValidBusType(r.BusType) {
		return "invalid bus_type"
	}
	if r.Status == "" {
		r.Status = model.BusStatusActive
	}
	if r.Status != model.BusStatusActive && r.Status != model.BusStatusInactive {
		return "invalid status"
	}
	if r.FromCity == "" || r.ToCity == "" {
		return "from_city and to_city are required"
	}
	if _, err := time.Parse("2006-01-02", r.TravelDate); err != nil {
		return "travel_date must be YYYY-MM-DD"
	}
	if _, err := time.Parse("15:04", r.DepartureTime); err != nil {
		return "departure_time must be HH:MM"
	}
	if r.PriceCents == 0 {
		return "price_cents is required"
	}
	return ""
}

func (r *busReq) toModel() model.Bus {
	return model.Bus{
		Name:          r.Name,
		Number:        r.Number,
		Capacity:      r.Capacity,
		BusType:       r.BusType,
		Status:        r.Status,
		FromCity:      r.FromCity,
		ToCity:        r.ToCity,
		TravelDate:    r.TravelDate,
		DepartureTime: r.DepartureTime,
		PriceCents:    r.PriceCents,
		ExamIDs:       r.ExamIDs,
	}
}

// Create handles POST /v1/admin/buses.
func (h *AdminBusHandler) Create(c echo.Context) error {
	var body busReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	b := body.toModel()
	if err := h.Buses.Create(c.Request().Context(), &b); err != nil {
		if errors.Is(err, repository.ErrNumberExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "bus number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, publicBus(b))
}

// Update handles PUT /v1/admin/buses/:id.  The full record is
// replaced; capacity shrink below already-sold seats is rejected at
// the database layer by existing seat rows, not here.
func (h *AdminBusHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body busReq
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if msg := body.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	b := body.toModel()
	b.ID = id
	if err := h.Buses.Update(c.Request().Context(), &b); err != nil {
		switch {
		case errors.Is(err, repository.ErrBusNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		case errors.Is(err, repository.ErrNumberExists):
			return c.JSON(http.StatusConflict, echo.Map{"error": "bus number already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
		}
	}
	return c.JSON(http.StatusOK, publicBus(b))
}

// Delete handles DELETE /v1/admin/buses/:id.  Buses with live
// bookings should be set INACTIVE instead; deletion cascades to exam
// tags and route recommendations.
func (h *AdminBusHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Buses.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrBusNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// List handles GET /v1/admin/buses and returns every bus regardless
// of status.
func (h *AdminBusHandler) List(c echo.Context) error {
	buses, err := h.Buses.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicBus, 0, len(buses))
	for _, b := range buses {
		out = append(out, publicBus(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
