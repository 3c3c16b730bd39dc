// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avikr/exam-bus-booking/internal/config"
	"github.com/avikr/exam-bus-booking/internal/handler"
	"github.com/avikr/exam-bus-booking/internal/middleware"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth         *handler.AuthHandler
	Public       *handler.PublicHandler
	Booking      *handler.BookingHandler
	Events       *handler.EventsHandler
	AdminBus     *handler.AdminBusHandler
	AdminBooking *handler.AdminBookingHandler
	AdminCatalog *handler.AdminCatalogHandler
	AdminUser    *handler.AdminUserHandler
}

// Register wires all routes onto the Echo instance.
//
// Layout:
//
//	/healthz                     liveness
//	/v1/auth/*                   register/login/token lifecycle
//	/v1/cities,exams,buses,...   public browsing (cached)
//	/v1/buses/:id/seats          seat view (never cached)
//	/v1/...                      authenticated customer endpoints
//	/v1/admin/*                  ADMIN only
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client, h Handlers) {
	e.GET("/healthz", handler.Health)

	// Redis-backed token bucket over all /v1 traffic.  With no Redis
	// the limiter is a pass-through.
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	// auth
	authG := e.Group("/v1/auth", rl)
	authG.POST("/register", h.Auth.Register)
	authG.POST("/login", h.Auth.Login)
	authG.POST("/refresh", h.Auth.Refresh)
	authG.POST("/refresh-access", h.Auth.RefreshAccess)
	authG.POST("/logout", h.Auth.Logout)

	// public browsing, response-cached in Redis.  The seat view stays
	// uncached: stale taken lists would fight the admission check.
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	pub := e.Group("/v1", rl)
	pub.GET("/cities", h.Public.GetCities, cache)
	pub.GET("/exams", h.Public.GetExams, cache)
	pub.GET("/buses/search", h.Public.SearchBuses, cache)
	pub.GET("/buses/:id", h.Public.GetBus, cache)
	pub.GET("/buses/:id/seats", h.Public.GetBusSeats)
	pub.GET("/recommendations", h.Public.GetRecommendations, cache)

	// authenticated customer endpoints
	auth := e.Group("/v1", rl)
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	auth.Use(middleware.RequireRole("USER", "ADMIN"))
	auth.GET("/me", h.Auth.Me)
	auth.GET("/events", h.Events.Stream)
	auth.POST("/bookings", h.Booking.Create)
	auth.GET("/my-bookings", h.Booking.ListMine)
	auth.GET("/bookings/:id", h.Booking.Get)
	auth.DELETE("/bookings/:id", h.Booking.Cancel)
	auth.GET("/bookings/:id/ticket", h.Booking.Ticket)

	// admin endpoints
	admin := e.Group("/v1/admin", rl)
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireRole("ADMIN"))
	admin.GET("/buses", h.AdminBus.List)
	admin.POST("/buses", h.AdminBus.Create)
	admin.PUT("/buses/:id", h.AdminBus.Update)
	admin.DELETE("/buses/:id", h.AdminBus.Delete)
	admin.GET("/bookings", h.AdminBooking.List)
	admin.PATCH("/bookings/:id/status", h.AdminBooking.SetStatus)
	admin.POST("/cities", h.AdminCatalog.CreateCity)
	admin.DELETE("/cities/:id", h.AdminCatalog.DeleteCity)
	admin.POST("/exams", h.AdminCatalog.CreateExam)
	admin.DELETE("/exams/:id", h.AdminCatalog.DeleteExam)
	admin.POST("/recommendations", h.AdminCatalog.CreateRecommendation)
	admin.DELETE("/recommendations/:id", h.AdminCatalog.DeleteRecommendation)
	admin.GET("/users", h.AdminUser.List)
	admin.PATCH("/users/:id/active", h.AdminUser.SetActive)
}
