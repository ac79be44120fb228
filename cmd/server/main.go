package main // Entry point package

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/cinegate/cinema-booking/internal/config"
	"github.com/cinegate/cinema-booking/internal/database"
	"github.com/cinegate/cinema-booking/internal/handler"
	"github.com/cinegate/cinema-booking/internal/middleware"
	"github.com/cinegate/cinema-booking/internal/queue"
	"github.com/cinegate/cinema-booking/internal/repository"
	"github.com/cinegate/cinema-booking/internal/router"
	"github.com/cinegate/cinema-booking/internal/service"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	store := repository.NewMySQLStore(db)
	events := service.AMQPSink{}

	reservations := service.NewReservationService(store, cfg.HoldTTL)
	bookings := service.NewBookingService(store, events)
	sweeper := service.NewSweeper(store, cfg.SweepInterval, events)

	// The sweep runs for the lifetime of the process; it is mandatory for
	// correctness, not an optimization.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		if err := sweeper.Run(sweepCtx); err != nil && sweepCtx.Err() == nil {
			log.Printf("sweeper: stopped: %v", err)
		}
	}()

	// Audit-log consumer for booking lifecycle events.
	go func() {
		if err := queue.StartEventConsumer(); err != nil {
			log.Printf("event-consumer: stopped: %v", err)
		}
	}()

	e := echo.New()

	// Redis is optional: a nil client disables caching and rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; cache and rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e, db.PingContext)
	router.RegisterCatalog(e, handler.NewCatalogHandler(store), cache)
	router.RegisterBooking(e,
		handler.NewReservationHandler(reservations),
		handler.NewBookingHandler(bookings),
	)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, hold_ttl=%s, sweep=%s)", addr, cfg.Env, cfg.HoldTTL, cfg.SweepInterval)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
