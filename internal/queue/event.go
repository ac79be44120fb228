// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit log.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/cinegate/cinema-booking/internal/model"
)

// EventsQueue is the durable queue all booking lifecycle events go through.
const EventsQueue = "booking.events"

// Event type discriminators carried in BookingEvent.Type.
const (
	TypeBookingConfirmed = "booking.confirmed"
	TypeBookingCancelled = "booking.cancelled"
	TypeHoldExpired      = "hold.expired"
)

// BookingEvent is published whenever a booking reaches a terminal status or
// the sweep reclaims an expired hold. It carries enough information for
// downstream consumers to log, notify, or trigger analytics without
// querying the primary database. HoldToken is only set for hold.expired;
// BookingID and CustomerEmail only for the booking types.
type BookingEvent struct {
	EventID       string `json:"event_id"`
	Type          string `json:"type"`
	BookingID     uint64 `json:"booking_id,omitempty"`
	ScreeningID   uint64 `json:"screening_id"`
	SeatID        uint64 `json:"seat_id"`
	CustomerEmail string `json:"customer_email,omitempty"`
	HoldToken     string `json:"hold_token,omitempty"`
	OccurredAt    string `json:"occurred_at"`
}

// NewBookingConfirmed builds the event for a booking that reached CONFIRMED.
func NewBookingConfirmed(b model.Booking) BookingEvent {
	return newBookingEvent(TypeBookingConfirmed, b)
}

// NewBookingCancelled builds the event for a booking that reached CANCELLED.
func NewBookingCancelled(b model.Booking) BookingEvent {
	return newBookingEvent(TypeBookingCancelled, b)
}

func newBookingEvent(typ string, b model.Booking) BookingEvent {
	return BookingEvent{
		EventID:       uuid.NewString(),
		Type:          typ,
		BookingID:     b.ID,
		ScreeningID:   b.ScreeningID,
		SeatID:        b.SeatID,
		CustomerEmail: b.Customer.Email,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

// NewHoldExpired builds the event for a hold reclaimed by the expiry sweep.
func NewHoldExpired(h model.Hold) BookingEvent {
	return BookingEvent{
		EventID:     uuid.NewString(),
		Type:        TypeHoldExpired,
		ScreeningID: h.ScreeningID,
		SeatID:      h.SeatID,
		HoldToken:   h.Token,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}
}
