package service

import (
	"context"
	"strings"
	"time"

	"github.com/cinegate/cinema-booking/internal/model"
	"github.com/cinegate/cinema-booking/internal/queue"
	"github.com/cinegate/cinema-booking/internal/repository"
)

// BookingService converts holds into bookings and walks them through the
// PENDING -> {CONFIRMED, CANCELLED} lifecycle. Terminal transitions publish
// events to the sink when one is configured; publishing never affects the
// outcome of the operation.
type BookingService struct {
	store  Store
	events EventSink
}

// NewBookingService builds a BookingService. events may be nil when no
// broker is available (tests, local runs).
func NewBookingService(store Store, events EventSink) *BookingService {
	if store == nil {
		panic("nil store passed to NewBookingService")
	}
	return &BookingService{store: store, events: events}
}

// Create converts a live hold into a PENDING booking. Customer fields are
// validated for shape only; they are otherwise opaque. The presented hold
// only identifies itself: the stored row is the authority on the seat,
// version and deadline, so a client cannot stretch its own expiry. An
// expired or already-consumed hold reports SeatUnavailable and leaves no
// partial state: the seat transition and the booking insert are a single
// atomic unit in the store.
func (s *BookingService) Create(ctx context.Context, h model.Hold, customer model.Customer) (model.Booking, error) {
	if err := validateCustomer(customer); err != nil {
		return model.Booking{}, err
	}
	if h.Token == "" || h.SeatID == 0 {
		return model.Booking{}, repository.NewConflict(repository.ValidationFailed, "hold is missing seat or token")
	}
	stored, err := s.store.GetHold(ctx, h.Token)
	if err != nil {
		if repository.IsConflict(err, repository.NotFound) {
			return model.Booking{}, repository.NewConflict(repository.SeatUnavailable,
				"seat %d is no longer held", h.SeatID)
		}
		return model.Booking{}, err
	}
	if stored.SeatID != h.SeatID {
		return model.Booking{}, repository.NewConflict(repository.ValidationFailed,
			"hold does not belong to seat %d", h.SeatID)
	}
	if stored.Expired(time.Now().UTC()) {
		return model.Booking{}, repository.NewConflict(repository.SeatUnavailable,
			"hold on seat %d has expired", h.SeatID)
	}
	return s.store.CreateBooking(ctx, stored, customer)
}

// Confirm finalizes a PENDING booking. Confirming a booking that is already
// CONFIRMED or CANCELLED reports AlreadyFinalized; a stale version reports
// VersionMismatch. Exactly one of two nearly simultaneous confirm/cancel
// attempts can win: the version check rejects the loser.
func (s *BookingService) Confirm(ctx context.Context, id uint64, expectedVersion uint32) (model.Booking, error) {
	b, err := s.store.FinalizeBooking(ctx, id, expectedVersion, model.BookingConfirmed)
	if err != nil {
		return model.Booking{}, err
	}
	if s.events != nil {
		s.events.Publish(ctx, queue.NewBookingConfirmed(b))
	}
	return b, nil
}

// Cancel finalizes a PENDING booking as CANCELLED and, atomically, returns
// its seat to AVAILABLE. Same failure modes as Confirm.
func (s *BookingService) Cancel(ctx context.Context, id uint64, expectedVersion uint32) (model.Booking, error) {
	b, err := s.store.FinalizeBooking(ctx, id, expectedVersion, model.BookingCancelled)
	if err != nil {
		return model.Booking{}, err
	}
	if s.events != nil {
		s.events.Publish(ctx, queue.NewBookingCancelled(b))
	}
	return b, nil
}

// Get returns a booking by ID.
func (s *BookingService) Get(ctx context.Context, id uint64) (model.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// ListByCustomer returns a customer's bookings, most recent first.
func (s *BookingService) ListByCustomer(ctx context.Context, email string) ([]model.BookingDetail, error) {
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return nil, repository.NewConflict(repository.ValidationFailed, "invalid customer email")
	}
	return s.store.ListBookingsByEmail(ctx, email)
}

// validateCustomer checks the shape of the booking form fields.
func validateCustomer(c model.Customer) error {
	if strings.TrimSpace(c.Name) == "" {
		return repository.NewConflict(repository.ValidationFailed, "customer name is required")
	}
	if !validEmail(strings.TrimSpace(c.Email)) {
		return repository.NewConflict(repository.ValidationFailed, "invalid customer email")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return repository.NewConflict(repository.ValidationFailed, "customer phone is required")
	}
	return nil
}

// validEmail applies a minimal sanity check; real verification belongs to
// an email delivery step, not this service.
func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t")
}
