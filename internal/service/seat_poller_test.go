package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinegate/cinema-booking/internal/model"
)

// fakeLister serves a mutable seat list, optionally failing on demand.
type fakeLister struct {
	mu    sync.Mutex
	seats []model.Seat
	err   error
	calls int
}

func (f *fakeLister) ListSeats(ctx context.Context, screeningID uint64) ([]model.Seat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Seat, len(f.seats))
	copy(out, f.seats)
	return out, nil
}

func (f *fakeLister) set(seats []model.Seat, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seats = seats
	f.err = err
}

func TestPollerKeepsSelectionWhileHeld(t *testing.T) {
	lister := &fakeLister{seats: []model.Seat{
		{ID: 1, ScreeningID: 7, RowLabel: "A", SeatNumber: 1, Status: model.SeatReserved, Version: 3},
	}}
	p := NewSeatPoller(lister, 7, time.Minute)
	p.Select(1, 3)

	deselected := false
	p.OnDeselect = func(model.Seat) { deselected = true }

	require.NoError(t, p.refresh(context.Background()))
	assert.False(t, deselected)
	_, ok := p.Selected()
	assert.True(t, ok)
}

func TestPollerDeselectsWhenVersionMoves(t *testing.T) {
	lister := &fakeLister{seats: []model.Seat{
		{ID: 1, ScreeningID: 7, RowLabel: "A", SeatNumber: 1, Status: model.SeatReserved, Version: 3},
	}}
	p := NewSeatPoller(lister, 7, time.Minute)
	p.Select(1, 3)

	var lost model.Seat
	p.OnDeselect = func(seat model.Seat) { lost = seat }

	// The sweep released the seat and another customer re-reserved it: same
	// status, different version.
	lister.set([]model.Seat{
		{ID: 1, ScreeningID: 7, RowLabel: "A", SeatNumber: 1, Status: model.SeatReserved, Version: 5},
	}, nil)
	require.NoError(t, p.refresh(context.Background()))

	_, ok := p.Selected()
	assert.False(t, ok, "selection must be cleared when the hold is gone")
	assert.Equal(t, uint64(1), lost.ID)
	assert.Equal(t, uint32(5), lost.Version)
}

func TestPollerDeselectsWhenSeatFreed(t *testing.T) {
	lister := &fakeLister{seats: []model.Seat{
		{ID: 1, ScreeningID: 7, Status: model.SeatReserved, Version: 3},
	}}
	p := NewSeatPoller(lister, 7, time.Minute)
	p.Select(1, 3)

	deselects := 0
	p.OnDeselect = func(model.Seat) { deselects++ }

	lister.set([]model.Seat{
		{ID: 1, ScreeningID: 7, Status: model.SeatAvailable, Version: 4},
	}, nil)
	require.NoError(t, p.refresh(context.Background()))
	require.NoError(t, p.refresh(context.Background()))
	assert.Equal(t, 1, deselects, "deselect must fire once, not on every refresh")
}

func TestPollerReportsEverySnapshot(t *testing.T) {
	lister := &fakeLister{seats: []model.Seat{
		{ID: 1, ScreeningID: 7, Status: model.SeatAvailable},
		{ID: 2, ScreeningID: 7, Status: model.SeatBooked},
	}}
	p := NewSeatPoller(lister, 7, time.Minute)

	var got []model.Seat
	p.OnSeats = func(seats []model.Seat) { got = seats }

	require.NoError(t, p.refresh(context.Background()))
	assert.Len(t, got, 2)
}

func TestPollerRunSurvivesReadFailures(t *testing.T) {
	lister := &fakeLister{err: errors.New("store down")}
	p := NewSeatPoller(lister, 7, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	// Wait until the loop has retried at least twice, then stop it.
	deadline := time.After(time.Second)
	for {
		lister.mu.Lock()
		calls := lister.calls
		lister.mu.Unlock()
		if calls >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("poller stopped retrying after a failure")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancel")
	}
}
