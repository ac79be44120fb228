package model

import "time"

// Hold is a time-bounded claim on a seat, granted when a customer selects
// it and kept alive until the booking form is submitted, the customer
// releases it, or the expiry sweep reclaims it.  A hold is not a booking;
// it only pins the seat in status RESERVED at a known version.
//
// Fields:
//  Token       – opaque random token returned to the client for correlation.
//  ScreeningID – screening the held seat belongs to.
//  SeatID      – seat being held.
//  Version     – seat version after the reserve write; presenting it is how
//                release and booking creation prove the hold is still live.
//  ExpiresAt   – deadline past which the sweep may reclaim the seat (UTC).
type Hold struct {
	Token       string    `json:"token"`        // seat_holds.hold_token
	ScreeningID uint64    `json:"screening_id"` // seat_holds.screening_id
	SeatID      uint64    `json:"seat_id"`      // seat_holds.seat_id
	Version     uint32    `json:"version"`      // seat version granted with the hold
	ExpiresAt   time.Time `json:"expires_at"`   // seat_holds.expires_at
}

// Expired reports whether the hold's deadline has passed at time now.
func (h Hold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}
