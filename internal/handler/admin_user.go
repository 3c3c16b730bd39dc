// This file defines administrator endpoints for account oversight.

package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avikr/exam-bus-booking/internal/repository"
)

// AdminUserHandler lists accounts and toggles their active flag.
type AdminUserHandler struct {
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAdminUserHandler(users *repository.UserRepo, tokens *repository.TokenRepo) *AdminUserHandler {
	if users == nil || tokens == nil {
		panic("nil repository passed to NewAdminUserHandler")
	}
	return &AdminUserHandler{Users: users, Tokens: tokens}
}

type adminUser struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// List handles GET /v1/admin/users.
func (h *AdminUserHandler) List(c echo.Context) error {
	users, err := h.Users.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]adminUser, 0, len(users))
	for _, u := range users {
		out = append(out, adminUser{ID: u.ID, Email: u.Email, Role: u.Role, IsActive: u.IsActive, CreatedAt: u.CreatedAt})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// SetActive handles PATCH /v1/admin/users/:id/active.  Deactivated
// accounts keep their bookings but can no longer log in.
func (h *AdminUserHandler) SetActive(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	if err := h.Users.SetActive(ctx, id, body.Active); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	if !body.Active {
		// Deactivation ends every open session immediately.
		if err := h.Tokens.RevokeAllForUser(ctx, id); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke sessions failed"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
