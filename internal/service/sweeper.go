package service

import (
	"context"
	"log"
	"time"

	"github.com/cinegate/cinema-booking/internal/queue"
)

// Sweeper reclaims holds whose deadline has passed, independent of any
// client call. A client that crashes, loses connectivity or just closes
// its tab must not strand a seat as perpetually RESERVED.
//
// Each release goes through the store's compare-and-set at the hold's
// version, so a hold that converts to a booking between the listing and
// the release is never clobbered: the sweep simply loses that race.
type Sweeper struct {
	store    Store
	interval time.Duration
	events   EventSink
}

// NewSweeper builds a Sweeper. interval comes from configuration; events
// may be nil.
func NewSweeper(store Store, interval time.Duration, events EventSink) *Sweeper {
	if store == nil {
		panic("nil store passed to NewSweeper")
	}
	return &Sweeper{store: store, interval: interval, events: events}
}

// Run sweeps on the configured interval until ctx is cancelled. Errors are
// logged and the loop keeps going; a transient store outage must not stop
// expiry enforcement.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("sweeper: sweep failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("sweeper: released %d expired hold(s)", n)
			}
		}
	}
}

// Sweep performs one pass: list expired holds, release each one. It returns
// the number of seats actually freed (holds that lost a race to a booking
// are skipped, not counted).
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	holds, err := s.store.ExpiredHolds(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	released := 0
	for _, h := range holds {
		freed, err := s.store.ReleaseHold(ctx, h)
		if err != nil {
			log.Printf("sweeper: release of seat %d failed: %v", h.SeatID, err)
			continue
		}
		if !freed {
			continue
		}
		released++
		if s.events != nil {
			s.events.Publish(ctx, queue.NewHoldExpired(h))
		}
	}
	return released, nil
}
