// Entry point: loads configuration, opens the database and Redis,
// starts the realtime hub and the broker consumer, then serves HTTP.
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/avikr/exam-bus-booking/internal/booking"
	"github.com/avikr/exam-bus-booking/internal/config"
	"github.com/avikr/exam-bus-booking/internal/database"
	"github.com/avikr/exam-bus-booking/internal/handler"
	"github.com/avikr/exam-bus-booking/internal/hub"
	"github.com/avikr/exam-bus-booking/internal/queue"
	"github.com/avikr/exam-bus-booking/internal/repository"
	"github.com/avikr/exam-bus-booking/internal/router"
)

func main() {
	// .env is optional; containers inject real environment variables.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it the rate limiter and response
	// cache become pass-throughs and the hub stays single-instance.
	rdb := config.NewRedisClient()

	// Realtime hub with cross-instance mirroring over Redis pub/sub.
	eventHub := hub.New()
	bridge := hub.NewBridge(eventHub, rdb)
	go bridge.Run(context.Background())

	// Broker consumer appends booking events to the audit log.  It
	// reconnects on its own; a missing broker only disables the log.
	go func() {
		if err := queue.StartBookingConsumer(); err != nil {
			log.Printf("booking consumer: %v", err)
		}
	}()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	buses := repository.NewBusRepo(db)
	bookings := repository.NewBookingRepo(db)
	cities := repository.NewCityRepo(db)
	exams := repository.NewExamRepo(db)
	recs := repository.NewRecommendationRepo(db)

	svc := booking.NewService(buses, bookings, bridge)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	router.Register(e, cfg, rdb, router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Public:       &handler.PublicHandler{Cities: cities, Exams: exams, Buses: buses, Recs: recs, Bookings: svc},
		Booking:      handler.NewBookingHandler(svc, bookings),
		Events:       handler.NewEventsHandler(eventHub),
		AdminBus:     handler.NewAdminBusHandler(buses),
		AdminBooking: handler.NewAdminBookingHandler(svc, bookings),
		AdminCatalog: handler.NewAdminCatalogHandler(cities, exams, recs),
		AdminUser:    handler.NewAdminUserHandler(users, tokens),
	})

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
