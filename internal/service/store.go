// Package service hosts the protocol managers: reservation, booking
// lifecycle, the expiry sweep and the seat poller. Managers contain the
// business rules; atomicity lives in the Store implementations.
package service

import (
	"context"
	"time"

	"github.com/cinegate/cinema-booking/internal/model"
	"github.com/cinegate/cinema-booking/internal/repository"
)

// Store is the persistence surface the managers are written against. Every
// state-changing method is atomic: it either applies the whole transition
// (seat write, version bump, derived counters, dependent rows) or reports a
// ConflictError and leaves no partial mutation.
type Store interface {
	// Catalog (read-only; owned by an external process).
	ListMovies(ctx context.Context) ([]model.Movie, error)
	GetMovie(ctx context.Context, id uint64) (model.Movie, error)
	ListScreeningsByMovie(ctx context.Context, movieID uint64) ([]model.Screening, error)
	GetScreening(ctx context.Context, id uint64) (model.Screening, error)

	// Inventory.
	ListSeats(ctx context.Context, screeningID uint64) ([]model.Seat, error)
	GetSeat(ctx context.Context, seatID uint64) (model.Seat, error)

	// Holds.
	ReserveSeat(ctx context.Context, seatID uint64, expectedVersion uint32, token string, expiresAt time.Time) (model.Seat, error)
	GetHold(ctx context.Context, token string) (model.Hold, error)
	ReleaseHold(ctx context.Context, h model.Hold) (bool, error)
	ExpiredHolds(ctx context.Context, now time.Time) ([]model.Hold, error)

	// Bookings.
	CreateBooking(ctx context.Context, h model.Hold, customer model.Customer) (model.Booking, error)
	GetBooking(ctx context.Context, id uint64) (model.Booking, error)
	FinalizeBooking(ctx context.Context, id uint64, expectedVersion uint32, to model.BookingStatus) (model.Booking, error)
	ListBookingsByEmail(ctx context.Context, email string) ([]model.BookingDetail, error)
}

// Both stores satisfy the managers' contract.
var (
	_ Store = (*repository.MySQLStore)(nil)
	_ Store = (*repository.MemoryStore)(nil)
)
