package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cinegate/cinema-booking/internal/model"
)

// MemoryStore is an in-memory implementation of the same operation set as
// MySQLStore. It exists for tests and local experimentation: the mutex
// stands in for the database's row locks, and the version checks behave
// exactly as the SQL compare-and-set does, so the concurrency properties of
// the protocol can be exercised without a running MySQL.
type MemoryStore struct {
	mu         sync.Mutex
	movies     map[uint64]model.Movie
	screenings map[uint64]model.Screening
	seats      map[uint64]model.Seat
	holds      map[string]model.Hold
	bookings   map[uint64]model.Booking
	nextID     uint64
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		movies:     make(map[uint64]model.Movie),
		screenings: make(map[uint64]model.Screening),
		seats:      make(map[uint64]model.Seat),
		holds:      make(map[string]model.Hold),
		bookings:   make(map[uint64]model.Booking),
	}
}

func (s *MemoryStore) nextIDLocked() uint64 {
	s.nextID++
	return s.nextID
}

// AddMovie seeds a movie and returns it with its assigned ID.
func (s *MemoryStore) AddMovie(m model.Movie) model.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.nextIDLocked()
	s.movies[m.ID] = m
	return m
}

// AddScreening seeds a screening of movieID with a rows x perRow seat grid,
// all seats AVAILABLE at version 0. Row labels run A, B, C, ...
func (s *MemoryStore) AddScreening(movieID uint64, startsAt time.Time, rows, perRow int) (model.Screening, []model.Seat) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := model.Screening{
		ID:             s.nextIDLocked(),
		MovieID:        movieID,
		StartsAt:       startsAt,
		TotalSeats:     uint32(rows * perRow),
		AvailableSeats: uint32(rows * perRow),
	}
	s.screenings[sc.ID] = sc
	var seats []model.Seat
	for r := 0; r < rows; r++ {
		for n := 1; n <= perRow; n++ {
			seat := model.Seat{
				ID:          s.nextIDLocked(),
				ScreeningID: sc.ID,
				RowLabel:    string(rune('A' + r)),
				SeatNumber:  uint32(n),
				Status:      model.SeatAvailable,
			}
			s.seats[seat.ID] = seat
			seats = append(seats, seat)
		}
	}
	return sc, seats
}

func (s *MemoryStore) ListMovies(ctx context.Context) ([]model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Movie, 0, len(s.movies))
	for _, m := range s.movies {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetMovie(ctx context.Context, id uint64) (model.Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return model.Movie{}, NewConflict(NotFound, "movie %d not found", id)
	}
	return m, nil
}

func (s *MemoryStore) ListScreeningsByMovie(ctx context.Context, movieID uint64) ([]model.Screening, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Screening
	for _, sc := range s.screenings {
		if sc.MovieID == movieID {
			out = append(out, sc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartsAt.Equal(out[j].StartsAt) {
			return out[i].StartsAt.Before(out[j].StartsAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) GetScreening(ctx context.Context, id uint64) (model.Screening, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.screenings[id]
	if !ok {
		return model.Screening{}, NewConflict(NotFound, "screening %d not found", id)
	}
	return sc, nil
}

func (s *MemoryStore) ListSeats(ctx context.Context, screeningID uint64) ([]model.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Seat
	for _, seat := range s.seats {
		if seat.ScreeningID == screeningID {
			out = append(out, seat)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RowLabel != out[j].RowLabel {
			return out[i].RowLabel < out[j].RowLabel
		}
		return out[i].SeatNumber < out[j].SeatNumber
	})
	return out, nil
}

func (s *MemoryStore) GetSeat(ctx context.Context, seatID uint64) (model.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[seatID]
	if !ok {
		return model.Seat{}, NewConflict(NotFound, "seat %d not found", seatID)
	}
	return seat, nil
}

// compareAndSetSeatLocked mirrors the SQL primitive, including the conflict
// classification and the available-seat bookkeeping. Callers hold s.mu.
func (s *MemoryStore) compareAndSetSeatLocked(seatID uint64, expectedVersion uint32, to model.SeatStatus) (model.Seat, error) {
	cur, ok := s.seats[seatID]
	if !ok {
		return model.Seat{}, NewConflict(NotFound, "seat %d not found", seatID)
	}
	if cur.Version != expectedVersion {
		return model.Seat{}, NewConflict(VersionMismatch,
			"seat %d is at version %d, not %d", seatID, cur.Version, expectedVersion)
	}
	if !model.CanTransition(cur.Status, to) {
		return model.Seat{}, NewConflict(SeatUnavailable,
			"seat %d is %s and cannot become %s", seatID, cur.Status, to)
	}
	if sc, ok := s.screenings[cur.ScreeningID]; ok {
		if cur.Status == model.SeatAvailable && to != model.SeatAvailable {
			sc.AvailableSeats--
			s.screenings[sc.ID] = sc
		} else if cur.Status != model.SeatAvailable && to == model.SeatAvailable {
			sc.AvailableSeats++
			s.screenings[sc.ID] = sc
		}
	}
	cur.Status = to
	cur.Version++
	s.seats[seatID] = cur
	return cur, nil
}

func (s *MemoryStore) ReserveSeat(ctx context.Context, seatID uint64, expectedVersion uint32, token string, expiresAt time.Time) (model.Seat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, err := s.compareAndSetSeatLocked(seatID, expectedVersion, model.SeatReserved)
	if err != nil {
		return model.Seat{}, err
	}
	s.holds[token] = model.Hold{
		Token:       token,
		ScreeningID: seat.ScreeningID,
		SeatID:      seat.ID,
		Version:     seat.Version,
		ExpiresAt:   expiresAt.UTC(),
	}
	return seat, nil
}

func (s *MemoryStore) GetHold(ctx context.Context, token string) (model.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[token]
	if !ok {
		return model.Hold{}, NewConflict(NotFound, "hold not found")
	}
	return h, nil
}

func (s *MemoryStore) ReleaseHold(ctx context.Context, h model.Hold) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	released := true
	if _, err := s.compareAndSetSeatLocked(h.SeatID, h.Version, model.SeatAvailable); err != nil {
		if _, ok := AsConflict(err); !ok {
			return false, err
		}
		// Lost the race; releasing is still a success.
		released = false
	}
	delete(s.holds, h.Token)
	return released, nil
}

func (s *MemoryStore) ExpiredHolds(ctx context.Context, now time.Time) ([]model.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Hold
	for _, h := range s.holds {
		if h.Expired(now) {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out, nil
}

func (s *MemoryStore) CreateBooking(ctx context.Context, h model.Hold, customer model.Customer) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, err := s.compareAndSetSeatLocked(h.SeatID, h.Version, model.SeatBooked)
	if err != nil {
		if ce, ok := AsConflict(err); ok && ce.Reason == VersionMismatch {
			return model.Booking{}, NewConflict(SeatUnavailable, "seat %d is no longer held", h.SeatID)
		}
		return model.Booking{}, err
	}
	b := model.Booking{
		ID:          s.nextIDLocked(),
		ScreeningID: seat.ScreeningID,
		SeatID:      seat.ID,
		Customer:    customer,
		Status:      model.BookingPending,
		CreatedAt:   time.Now().UTC(),
	}
	s.bookings[b.ID] = b
	delete(s.holds, h.Token)
	return b, nil
}

func (s *MemoryStore) GetBooking(ctx context.Context, id uint64) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, NewConflict(NotFound, "booking %d not found", id)
	}
	return b, nil
}

func (s *MemoryStore) FinalizeBooking(ctx context.Context, id uint64, expectedVersion uint32, to model.BookingStatus) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, NewConflict(NotFound, "booking %d not found", id)
	}
	if cur.Status.Terminal() {
		return model.Booking{}, NewConflict(AlreadyFinalized, "booking %d is already %s", id, cur.Status)
	}
	if cur.Version != expectedVersion {
		return model.Booking{}, NewConflict(VersionMismatch,
			"booking %d is at version %d, not %d", id, cur.Version, expectedVersion)
	}
	if to != model.BookingConfirmed && to != model.BookingCancelled {
		return model.Booking{}, NewConflict(ValidationFailed, "illegal booking transition to %s", to)
	}
	if to == model.BookingCancelled {
		seat, ok := s.seats[cur.SeatID]
		if !ok {
			return model.Booking{}, NewConflict(NotFound, "seat %d not found", cur.SeatID)
		}
		if _, err := s.compareAndSetSeatLocked(seat.ID, seat.Version, model.SeatAvailable); err != nil {
			return model.Booking{}, err
		}
	}
	cur.Status = to
	cur.Version++
	s.bookings[id] = cur
	return cur, nil
}

func (s *MemoryStore) ListBookingsByEmail(ctx context.Context, email string) ([]model.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.BookingDetail
	for _, b := range s.bookings {
		if b.Customer.Email != email {
			continue
		}
		d := model.BookingDetail{Booking: b}
		if seat, ok := s.seats[b.SeatID]; ok {
			d.RowLabel = seat.RowLabel
			d.SeatNumber = seat.SeatNumber
		}
		if sc, ok := s.screenings[b.ScreeningID]; ok {
			d.StartsAt = sc.StartsAt
			if m, ok := s.movies[sc.MovieID]; ok {
				d.MovieTitle = m.Title
			}
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// HoldCount reports the number of live hold rows; used by tests to verify
// that release and the sweep clean up after themselves.
func (s *MemoryStore) HoldCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.holds)
}
