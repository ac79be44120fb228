package service

import (
	"context"
	"sync"
	"time"

	"github.com/cinegate/cinema-booking/internal/model"
)

// SeatLister is the one read the poller needs. The store satisfies it
// directly; a remote consumer can satisfy it with an HTTP client, keeping
// the poller independent of any particular transport.
type SeatLister interface {
	ListSeats(ctx context.Context, screeningID uint64) ([]model.Seat, error)
}

// SeatPoller reconciles a consumer's cached view of a screening's seats
// with the store on a fixed interval. Seat occupancy changes are driven by
// other customers' actions the consumer cannot observe through its own
// writes, so it must poll; no push transport is assumed.
//
// The poller tracks at most one selected seat (the one the consumer holds).
// When a refresh shows that seat's status or version moved away from the
// recorded hold, the selection is cleared and OnDeselect fires: the
// consumer's hold is gone (expired, swept, or lost to a concurrent actor).
type SeatPoller struct {
	lister      SeatLister
	screeningID uint64
	interval    time.Duration

	// OnSeats receives every successfully refreshed seat list. Optional.
	OnSeats func([]model.Seat)
	// OnDeselect fires when the tracked seat is no longer held by the
	// consumer; the argument is the seat as last observed. Optional.
	OnDeselect func(model.Seat)

	mu       sync.Mutex
	selected *seatSelection
}

type seatSelection struct {
	seatID  uint64
	version uint32
}

// NewSeatPoller builds a poller for one screening. interval comes from
// configuration.
func NewSeatPoller(lister SeatLister, screeningID uint64, interval time.Duration) *SeatPoller {
	if lister == nil {
		panic("nil lister passed to NewSeatPoller")
	}
	return &SeatPoller{lister: lister, screeningID: screeningID, interval: interval}
}

// Select records the consumer's held seat and the version its hold was
// granted with.
func (p *SeatPoller) Select(seatID uint64, version uint32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = &seatSelection{seatID: seatID, version: version}
}

// Deselect clears the tracked seat without firing OnDeselect.
func (p *SeatPoller) Deselect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = nil
}

// Selected reports the currently tracked seat ID, or false when none.
func (p *SeatPoller) Selected() (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return 0, false
	}
	return p.selected.seatID, true
}

// Run polls until ctx is cancelled and then returns ctx.Err(). The first
// refresh happens immediately. Read failures do not stop the loop: the
// poller retries with a doubling backoff capped at eight intervals, and
// resumes the normal cadence after the next success.
func (p *SeatPoller) Run(ctx context.Context) error {
	backoff := p.interval
	for {
		if err := p.refresh(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if backoff < 8*p.interval {
				backoff *= 2
			}
		} else {
			backoff = p.interval
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// refresh performs one pull and reconciles the tracked selection.
func (p *SeatPoller) refresh(ctx context.Context) error {
	seats, err := p.lister.ListSeats(ctx, p.screeningID)
	if err != nil {
		return err
	}
	if p.OnSeats != nil {
		p.OnSeats(seats)
	}

	p.mu.Lock()
	sel := p.selected
	p.mu.Unlock()
	if sel == nil {
		return nil
	}

	var observed model.Seat
	found := false
	for _, seat := range seats {
		if seat.ID == sel.seatID {
			observed = seat
			found = true
			break
		}
	}
	stillHeld := found && observed.Status == model.SeatReserved && observed.Version == sel.version
	if stillHeld {
		return nil
	}

	p.mu.Lock()
	// Only clear if the selection hasn't changed under us.
	if p.selected != nil && p.selected.seatID == sel.seatID && p.selected.version == sel.version {
		p.selected = nil
	} else {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	if p.OnDeselect != nil {
		p.OnDeselect(observed)
	}
	return nil
}
