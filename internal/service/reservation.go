package service

import (
	"context"
	"time"

	"github.com/cinegate/cinema-booking/internal/model"
	"github.com/cinegate/cinema-booking/internal/repository"
)

// ReservationService grants and revokes short-lived holds on seats. A hold
// pins one seat in status RESERVED at a known version for a fixed window,
// long enough to fill the booking form; abandoned holds are reclaimed by
// the Sweeper. At most one actor can hold a seat: concurrent reserve calls
// on the same seat are resolved by the store's compare-and-set so exactly
// one wins.
type ReservationService struct {
	store   Store
	holdTTL time.Duration
}

// NewReservationService builds a ReservationService. holdTTL is the hold
// window granted by Reserve; it comes from configuration, not a constant.
func NewReservationService(store Store, holdTTL time.Duration) *ReservationService {
	if store == nil {
		panic("nil store passed to NewReservationService")
	}
	return &ReservationService{store: store, holdTTL: holdTTL}
}

// Reserve claims a seat for the caller. The seat must currently be
// AVAILABLE; losing a race to another customer reports SeatUnavailable, as
// does the seat being held or booked already. On success the returned hold
// carries the seat's new version and the expiry deadline.
func (s *ReservationService) Reserve(ctx context.Context, screeningID, seatID uint64) (model.Hold, error) {
	seat, err := s.store.GetSeat(ctx, seatID)
	if err != nil {
		return model.Hold{}, err
	}
	if seat.ScreeningID != screeningID {
		return model.Hold{}, repository.NewConflict(repository.NotFound,
			"seat %d does not belong to screening %d", seatID, screeningID)
	}
	if seat.Status != model.SeatAvailable {
		return model.Hold{}, repository.NewConflict(repository.SeatUnavailable,
			"seat %s%d is already %s", seat.RowLabel, seat.SeatNumber, seat.Status)
	}
	token, err := repository.NewHoldToken()
	if err != nil {
		return model.Hold{}, err
	}
	expiresAt := time.Now().UTC().Add(s.holdTTL)
	reserved, err := s.store.ReserveSeat(ctx, seatID, seat.Version, token, expiresAt)
	if err != nil {
		// A version that moved between the read above and the write means
		// another customer got there first; callers only care that the seat
		// is gone.
		if repository.IsConflict(err, repository.VersionMismatch) {
			return model.Hold{}, repository.NewConflict(repository.SeatUnavailable,
				"seat %s%d was just taken", seat.RowLabel, seat.SeatNumber)
		}
		return model.Hold{}, err
	}
	return model.Hold{
		Token:       token,
		ScreeningID: reserved.ScreeningID,
		SeatID:      reserved.ID,
		Version:     reserved.Version,
		ExpiresAt:   expiresAt,
	}, nil
}

// Release gives a hold back. It is safe to call on every exit path
// (normal completion, navigation away, error) without checking whether the
// hold is still live: a hold that already expired, was swept, or was
// converted to a booking releases as a no-op success.
func (s *ReservationService) Release(ctx context.Context, h model.Hold) error {
	if h.SeatID == 0 || h.Token == "" {
		return repository.NewConflict(repository.ValidationFailed, "hold is missing seat or token")
	}
	_, err := s.store.ReleaseHold(ctx, h)
	if err != nil {
		if _, ok := repository.AsConflict(err); ok {
			return nil
		}
		return err
	}
	return nil
}
