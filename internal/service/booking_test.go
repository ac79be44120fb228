package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinegate/cinema-booking/internal/model"
	"github.com/cinegate/cinema-booking/internal/queue"
	"github.com/cinegate/cinema-booking/internal/repository"
)

// recordingSink captures published events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (s *recordingSink) Publish(ctx context.Context, ev queue.BookingEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *recordingSink) types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Type)
	}
	return out
}

func TestBookingLifecycleConfirm(t *testing.T) {
	store, screening, seats := newFixture(t)
	sink := &recordingSink{}
	reservations := NewReservationService(store, 5*time.Minute)
	bookings := NewBookingService(store, sink)

	hold, err := reservations.Reserve(context.Background(), screening.ID, seats[0].ID)
	require.NoError(t, err)

	booking, err := bookings.Create(context.Background(), hold, model.Customer{
		Name: "Omar", Email: "omar@example.com", Phone: "555-0102",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingPending, booking.Status)

	confirmed, err := bookings.Confirm(context.Background(), booking.ID, booking.Version)
	require.NoError(t, err)
	assert.Equal(t, model.BookingConfirmed, confirmed.Status)
	assert.Equal(t, booking.Version+1, confirmed.Version)

	// Cancelling a confirmed booking is rejected and the seat stays booked.
	_, err = bookings.Cancel(context.Background(), confirmed.ID, confirmed.Version)
	require.Error(t, err)
	assert.True(t, repository.IsConflict(err, repository.AlreadyFinalized), "expected AlreadyFinalized, got %v", err)

	seat, err := store.GetSeat(context.Background(), seats[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.SeatBooked, seat.Status)

	assert.Equal(t, []string{queue.TypeBookingConfirmed}, sink.types())
}

func TestBookingLifecycleCancelFreesSeat(t *testing.T) {
	store, screening, seats := newFixture(t)
	sink := &recordingSink{}
	reservations := NewReservationService(store, 5*time.Minute)
	bookings := NewBookingService(store, sink)

	hold, err := reservations.Reserve(context.Background(), screening.ID, seats[0].ID)
	require.NoError(t, err)
	booking, err := bookings.Create(context.Background(), hold, model.Customer{
		Name: "Omar", Email: "omar@example.com", Phone: "555-0102",
	})
	require.NoError(t, err)

	seatBefore, err := store.GetSeat(context.Background(), seats[0].ID)
	require.NoError(t, err)

	cancelled, err := bookings.Cancel(context.Background(), booking.ID, booking.Version)
	require.NoError(t, err)
	assert.Equal(t, model.BookingCancelled, cancelled.Status)

	seat, err := store.GetSeat(context.Background(), seats[0].ID)
	require.NoError(t, err)
	assert.Equal(t, model.SeatAvailable, seat.Status)
	assert.Equal(t, seatBefore.Version+1, seat.Version)

	// The freed seat can be reserved again by someone else.
	_, err = reservations.Reserve(context.Background(), screening.ID, seats[0].ID)
	require.NoError(t, err)

	assert.Equal(t, []string{queue.TypeBookingCancelled}, sink.types())
}

func TestCreateRejectsExpiredHold(t *testing.T) {
	store, screening, seats := newFixture(t)
	bookings := NewBookingService(store, nil)

	expired := NewReservationService(store, -time.Minute)
	hold, err := expired.Reserve(context.Background(), screening.ID, seats[0].ID)
	require.NoError(t, err)

	_, err = bookings.Create(context.Background(), hold, model.Customer{
		Name: "Omar", Email: "omar@example.com", Phone: "555-0102",
	})
	require.Error(t, err)
	assert.True(t, repository.IsConflict(err, repository.SeatUnavailable), "expected SeatUnavailable, got %v", err)
}

func TestCreateIgnoresClientSuppliedExpiry(t *testing.T) {
	store, screening, seats := newFixture(t)
	bookings := NewBookingService(store, nil)

	expired := NewReservationService(store, -time.Minute)
	hold, err := expired.Reserve(context.Background(), screening.ID, seats[0].ID)
	require.NoError(t, err)

	// A doctored deadline in the request must not revive the hold; the
	// stored row decides.
	doctored := hold
	doctored.ExpiresAt = time.Now().Add(time.Hour)
	_, err = bookings.Create(context.Background(), doctored, model.Customer{
		Name: "Omar", Email: "omar@example.com", Phone: "555-0102",
	})
	require.Error(t, err)
	assert.True(t, repository.IsConflict(err, repository.SeatUnavailable), "expected SeatUnavailable, got %v", err)
}

func TestCreateUnknownTokenIsSeatUnavailable(t *testing.T) {
	store, screening, seats := newFixture(t)
	reservations := NewReservationService(store, 5*time.Minute)
	bookings := NewBookingService(store, nil)

	hold, err := reservations.Reserve(context.Background(), screening.ID, seats[0].ID)
	require.NoError(t, err)

	forged := hold
	forged.Token = "no-such-token"
	_, err = bookings.Create(context.Background(), forged, model.Customer{
		Name: "Omar", Email: "omar@example.com", Phone: "555-0102",
	})
	require.Error(t, err)
	assert.True(t, repository.IsConflict(err, repository.SeatUnavailable), "expected SeatUnavailable, got %v", err)

	// Presenting someone's token against a different seat is malformed.
	crossed := hold
	crossed.SeatID = seats[1].ID
	_, err = bookings.Create(context.Background(), crossed, model.Customer{
		Name: "Omar", Email: "omar@example.com", Phone: "555-0102",
	})
	require.Error(t, err)
	assert.True(t, repository.IsConflict(err, repository.ValidationFailed), "expected ValidationFailed, got %v", err)
}

func TestCreateValidatesCustomer(t *testing.T) {
	store, screening, seats := newFixture(t)
	reservations := NewReservationService(store, 5*time.Minute)
	bookings := NewBookingService(store, nil)

	hold, err := reservations.Reserve(context.Background(), screening.ID, seats[0].ID)
	require.NoError(t, err)

	cases := []struct {
		name     string
		customer model.Customer
	}{
		{"empty name", model.Customer{Name: "  ", Email: "a@b.example", Phone: "555"}},
		{"bad email", model.Customer{Name: "Omar", Email: "not-an-email", Phone: "555"}},
		{"empty phone", model.Customer{Name: "Omar", Email: "a@b.example", Phone: ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := bookings.Create(context.Background(), hold, tc.customer)
			require.Error(t, err)
			assert.True(t, repository.IsConflict(err, repository.ValidationFailed), "expected ValidationFailed, got %v", err)
		})
	}

	// Validation failures must not consume the hold.
	assert.Equal(t, 1, store.HoldCount())
}

func TestConcurrentFinalizeExactlyOneWins(t *testing.T) {
	store, screening, seats := newFixture(t)
	reservations := NewReservationService(store, 5*time.Minute)
	bookings := NewBookingService(store, nil)

	hold, err := reservations.Reserve(context.Background(), screening.ID, seats[0].ID)
	require.NoError(t, err)
	booking, err := bookings.Create(context.Background(), hold, model.Customer{
		Name: "Omar", Email: "omar@example.com", Phone: "555-0102",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	var confirmErr, cancelErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, confirmErr = bookings.Confirm(context.Background(), booking.ID, booking.Version)
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = bookings.Cancel(context.Background(), booking.ID, booking.Version)
	}()
	wg.Wait()

	wins := 0
	for _, err := range []error{confirmErr, cancelErr} {
		if err == nil {
			wins++
			continue
		}
		_, ok := repository.AsConflict(err)
		assert.True(t, ok, "loser must fail with a conflict, got %v", err)
	}
	assert.Equal(t, 1, wins, "exactly one of confirm/cancel may win")

	got, err := bookings.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.True(t, got.Status.Terminal())
}

func TestListByCustomer(t *testing.T) {
	store, screening, seats := newFixture(t)
	reservations := NewReservationService(store, 5*time.Minute)
	bookings := NewBookingService(store, nil)

	for i := 0; i < 2; i++ {
		hold, err := reservations.Reserve(context.Background(), screening.ID, seats[i].ID)
		require.NoError(t, err)
		_, err = bookings.Create(context.Background(), hold, model.Customer{
			Name: "Omar", Email: "omar@example.com", Phone: "555-0102",
		})
		require.NoError(t, err)
	}

	list, err := bookings.ListByCustomer(context.Background(), " omar@example.com ")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, d := range list {
		assert.Equal(t, "Heat", d.MovieTitle)
		assert.NotEmpty(t, d.RowLabel)
	}

	_, err = bookings.ListByCustomer(context.Background(), "not an email")
	require.Error(t, err)
	assert.True(t, repository.IsConflict(err, repository.ValidationFailed))
}
