package router // package router defines how HTTP routes are registered for the API

import (
	"context"

	"github.com/labstack/echo/v4" // the Echo web framework handles routing

	"github.com/cinegate/cinema-booking/internal/handler"
)

// RegisterRoutes registers the health check on the provided Echo instance.
// ping probes the primary store; pass nil for a plain liveness check. The
// endpoint is used by load balancers and monitoring to verify the service
// is up.
func RegisterRoutes(e *echo.Echo, ping func(context.Context) error) {
	e.GET("/healthz", handler.Health(ping))
}

// RegisterCatalog registers the read-only browse endpoints under /v1. They
// require no authentication: guests browse movies and seat maps before ever
// touching the reservation flow. cache, when non-nil, is applied to these
// routes only: catalog reads are the polling hot path, while everything
// state-changing must never be served from cache.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1")
	if cache != nil {
		g.Use(cache)
	}
	g.GET("/movies", h.ListMovies)
	g.GET("/movies/:id", h.GetMovie)
	g.GET("/movies/:id/screenings", h.ListScreenings)
	g.GET("/screenings/:id", h.GetScreening)
	// Seat availability for a screening; the poller hits this every few seconds.
	g.GET("/screenings/:id/seats", h.ListSeats)
}

// RegisterBooking registers the reservation and booking lifecycle
// endpoints under /v1. Reserve/release operate on a seat of a screening;
// bookings are created from a hold and finalized with the last observed
// version.
func RegisterBooking(e *echo.Echo, r *handler.ReservationHandler, b *handler.BookingHandler) {
	g := e.Group("/v1")
	g.POST("/screenings/:id/seats/:seatID/reserve", r.Reserve)
	g.POST("/screenings/:id/seats/:seatID/release", r.Release)
	g.POST("/bookings", b.Create)
	g.GET("/bookings/:id", b.Get)
	g.POST("/bookings/:id/confirm", b.Confirm)
	g.DELETE("/bookings/:id", b.Cancel)
	g.GET("/bookings/user/:email", b.ListByCustomer)
}
