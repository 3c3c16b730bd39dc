// This file defines handlers for the public browsing API.  These
// routes let unauthenticated visitors look up cities, exams, buses
// and route recommendations before deciding to register.  Responses
// carry only fields safe for public consumption.

package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avikr/exam-bus-booking/internal/booking"
	"github.com/avikr/exam-bus-booking/internal/model"
	"github.com/avikr/exam-bus-booking/internal/repository"
)

// PublicHandler aggregates the dependencies needed for unauthenticated
// browsing.
type PublicHandler struct {
	Cities   *repository.CityRepo
	Exams    *repository.ExamRepo
	Buses    *repository.BusRepo
	Recs     *repository.RecommendationRepo
	Bookings *booking.Service // seat availability view
}

// PublicCity is a city exposed via the public API.
type PublicCity struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// PublicExam is an exam exposed via the public API.
type PublicExam struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	ExamDate string  `json:"exam_date"`
	CityID   *uint64 `json:"city_id,omitempty"`
}

// PublicBus is a bus in list and detail responses.  Price is exposed
// in cents so clients never do float arithmetic on money.
type PublicBus struct {
	ID            uint64   `json:"id"`
	Name          string   `json:"name"`
	Number        string   `json:"number"`
	BusType       string   `json:"bus_type"`
	Status        string   `json:"status"`
	Capacity      uint32   `json:"capacity"`
	FromCity      string   `json:"from_city"`
	ToCity        string   `json:"to_city"`
	TravelDate    string   `json:"travel_date"`
	DepartureTime string   `json:"departure_time"`
	PriceCents    uint32   `json:"price_cents"`
	ExamIDs       []uint64 `json:"exam_ids,omitempty"`
}

// PublicRecommendation is a suggested route for an exam.
type PublicRecommendation struct {
	ID       uint64  `json:"id"`
	FromCity string  `json:"from_city"`
	ToCity   string  `json:"to_city"`
	ExamID   *uint64 `json:"exam_id,omitempty"`
	Note     string  `json:"note"`
}

func publicBus(b model.Bus) PublicBus {
	return PublicBus{
		ID:            b.ID,
		Name:          b.Name,
		Number:        b.Number,
		BusType:       b.BusType,
		Status:        b.Status,
		Capacity:      b.Capacity,
		FromCity:      b.FromCity,
		ToCity:        b.ToCity,
		TravelDate:    b.TravelDate,
		DepartureTime: b.DepartureTime,
		PriceCents:    b.PriceCents,
		ExamIDs:       b.ExamIDs,
	}
}

// GetCities returns all cities buses run between.
func (h *PublicHandler) GetCities(c echo.Context) error {
	ctx := c.Request().Context()
	cities, err := h.Cities.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicCity, 0, len(cities))
	for _, city := range cities {
		out = append(out, PublicCity{ID: city.ID, Name: city.Name, State: city.State})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetExams returns the exams buses are scheduled around.
func (h *PublicHandler) GetExams(c echo.Context) error {
	ctx := c.Request().Context()
	exams, err := h.Exams.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicExam, 0, len(exams))
	for _, e := range exams {
		out = append(out, PublicExam{ID: e.ID, Name: e.Name, ExamDate: e.ExamDate, CityID: e.CityID})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// SearchBuses lists ACTIVE buses matching optional query filters:
// from, to, date (YYYY-MM-DD) and exam_id.  All filters are ANDed.
func (h *PublicHandler) SearchBuses(c echo.Context) error {
	ctx := c.Request().Context()
	f := repository.BusSearchFilter{
		FromCity:   c.QueryParam("from"),
		ToCity:     c.QueryParam("to"),
		TravelDate: c.QueryParam("date"),
	}
	if raw := c.QueryParam("exam_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid exam_id"})
		}
		f.ExamID = id
	}
	buses, err := h.Buses.Search(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicBus, 0, len(buses))
	for _, b := range buses {
		out = append(out, publicBus(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetBus returns one bus by id.
func (h *PublicHandler) GetBus(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	b, err := h.Buses.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBusNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, publicBus(b))
}

// GetBusSeats returns the seat view for a bus on a travel date:
// capacity, price and the labels already taken by live bookings.  The
// view is advisory; the admission check at booking time is what
// actually decides whether a seat can still be claimed.
func (h *PublicHandler) GetBusSeats(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date query param required"})
	}
	av, err := h.Bookings.SeatAvailability(ctx, id, date)
	if err != nil {
		switch err.(type) {
		case *booking.ValidationError:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		if err == repository.ErrBusNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "bus not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, av)
}

// GetRecommendations returns route suggestions, optionally filtered by
// exam_id.
func (h *PublicHandler) GetRecommendations(c echo.Context) error {
	ctx := c.Request().Context()
	recs, err := h.Recs.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	var examFilter *uint64
	if raw := c.QueryParam("exam_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid exam_id"})
		}
		examFilter = &id
	}
	out := make([]PublicRecommendation, 0, len(recs))
	for _, r := range recs {
		if examFilter != nil && (r.ExamID == nil || *r.ExamID != *examFilter) {
			continue
		}
		out = append(out, PublicRecommendation{ID: r.ID, FromCity: r.FromCity, ToCity: r.ToCity, ExamID: r.ExamID, Note: r.Note})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
