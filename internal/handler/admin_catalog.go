// This file defines administrator endpoints for the catalog data that
// frames bus search: cities, exams and route recommendations.

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

// AdminCatalogHandler manages cities, exams and recommendations.
type AdminCatalogHandler struct {
	Cities *repository.CityRepo
	Exams  *repository.ExamRepo
	Recs   *repository.RecommendationRepo
}

func NewAdminCatalogHandler(cities *repository.CityRepo, exams *repository.ExamRepo, recs *repository.RecommendationRepo) *AdminCatalogHandler {
	if cities == nil || exams == nil || recs == nil {
		panic("nil repository passed to NewAdminCatalogHandler")
	}
	return &AdminCatalogHandler{Cities: cities, Exams: exams, Recs: recs}
}

// CreateCity handles POST /v1/admin/cities.
func (h *AdminCatalogHandler) CreateCity(c echo.Context) error {
	var body struct {
		Name  string `json:"name"`
		State string `json:"state"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	city := model.City{Name: body.Name, State: strings.TrimSpace(body.State)}
	if err := h.Cities.Create(c.Request().Context(), &city); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "city already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, PublicCity{ID: city.ID, Name: city.Name, State: city.State})
}

// DeleteCity handles DELETE /v1/admin/cities/:id.
func (h *AdminCatalogHandler) DeleteCity(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Cities.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateExam handles POST /v1/admin/exams.
func (h *AdminCatalogHandler) CreateExam(c echo.Context) error {
	var body struct {
		Name     string  `json:"name"`
		ExamDate string  `json:"exam_date"`
		CityID   *uint64 `json:"city_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if _, err := time.Parse("2006-01-02", body.ExamDate); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "exam_date must be YYYY-MM-DD"})
	}
	exam := model.Exam{Name: body.Name, ExamDate: body.ExamDate, CityID: body.CityID}
	if err := h.Exams.Create(c.Request().Context(), &exam); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "exam already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, PublicExam{ID: exam.ID, Name: exam.Name, ExamDate: exam.ExamDate, CityID: exam.CityID})
}

// DeleteExam handles DELETE /v1/admin/exams/:id.
func (h *AdminCatalogHandler) DeleteExam(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Exams.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateRecommendation handles POST /v1/admin/recommendations.
func (h *AdminCatalogHandler) CreateRecommendation(c echo.Context) error {
	var body struct {
		FromCity string  `json:"from_city"`
		ToCity   string  `json:"to_city"`
		ExamID   *uint64 `json:"exam_id"`
		Note     string  `json:"note"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.FromCity = strings.TrimSpace(body.FromCity)
	body.ToCity = strings.TrimSpace(body.ToCity)
	if body.FromCity == "" || body.ToCity == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "from_city and to_city are required"})
	}
	rec := model.Recommendation{FromCity: body.FromCity, ToCity: body.ToCity, ExamID: body.ExamID, Note: strings.TrimSpace(body.Note)}
	if err := h.Recs.Create(c.Request().Context(), &rec); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, PublicRecommendation{ID: rec.ID, FromCity: rec.FromCity, ToCity: rec.ToCity, ExamID: rec.ExamID, Note: rec.Note})
}

// DeleteRecommendation handles DELETE /v1/admin/recommendations/:id.
func (h *AdminCatalogHandler) DeleteRecommendation(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Recs.Delete(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
