package model

import "time"

// BookingStatus enumerates the lifecycle of a booking.  The only legal
// transitions are PENDING -> CONFIRMED and PENDING -> CANCELLED; both
// targets are terminal.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// Terminal reports whether s permits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingConfirmed || s == BookingCancelled
}

// Customer carries the contact fields collected by the booking form.  The
// values are opaque to this service beyond minimal shape validation.
type Customer struct {
	Name  string `json:"customer_name"`
	Email string `json:"customer_email"`
	Phone string `json:"customer_phone"`
}

// Booking records one customer's claim on one seat of one screening.  It is
// created in status PENDING when a hold is converted, and finalized by a
// later confirm or cancel call carrying the version last observed.
//
// Fields:
//  ID          – primary key identifier.
//  ScreeningID – screening being booked.
//  SeatID      – the single seat covered by this booking.
//  Customer    – contact fields supplied with the booking form.
//  Status      – PENDING, CONFIRMED or CANCELLED.
//  Version     – optimistic locking stamp, incremented on every transition.
//  CreatedAt   – creation timestamp (UTC).
type Booking struct {
	ID          uint64        `json:"id"`           // bookings.id
	ScreeningID uint64        `json:"screening_id"` // bookings.screening_id
	SeatID      uint64        `json:"seat_id"`      // bookings.seat_id
	Customer    Customer      `json:"customer"`     // bookings.customer_*
	Status      BookingStatus `json:"status"`       // bookings.status
	Version     uint32        `json:"version"`      // bookings.version
	CreatedAt   time.Time     `json:"created_at"`   // bookings.created_at
}

// BookingDetail is the listing shape returned for a customer's booking
// history: the booking joined with seat and screening information for
// display without further lookups.
type BookingDetail struct {
	Booking
	RowLabel   string    `json:"row_label"`
	SeatNumber uint32    `json:"seat_number"`
	MovieTitle string    `json:"movie_title"`
	StartsAt   time.Time `json:"starts_at"`
}
