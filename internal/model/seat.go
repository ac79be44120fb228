package model

// SeatStatus enumerates the states a seat moves through.  The legal
// transitions are AVAILABLE -> RESERVED -> {BOOKED, AVAILABLE} and
// BOOKED -> AVAILABLE (when the owning booking is cancelled).
type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE" // free for anyone to reserve
	SeatReserved  SeatStatus = "RESERVED"  // temporarily held, not yet booked
	SeatBooked    SeatStatus = "BOOKED"    // owned by a non-cancelled booking
)

// Seat is one seat for one screening.  Seats are never deleted for the
// lifetime of their screening and are mutated only through the store's
// compare-and-set primitive, which bumps Version by exactly one on every
// successful write.
//
// Fields:
//  ID          – primary key identifier.
//  ScreeningID – screening this seat belongs to.
//  RowLabel    – letter or string designating the row.
//  SeatNumber  – number of the seat within the row.
//  Status      – current availability status.
//  Version     – optimistic locking stamp; writers must present the
//                version they last observed.
type Seat struct {
	ID          uint64     `json:"id"`           // seats.id
	ScreeningID uint64     `json:"screening_id"` // seats.screening_id
	RowLabel    string     `json:"row_label"`    // seats.row_label
	SeatNumber  uint32     `json:"seat_number"`  // seats.seat_number
	Status      SeatStatus `json:"status"`       // seats.status
	Version     uint32     `json:"version"`      // seats.version
}

// CanTransition reports whether moving a seat from status from to status to
// is a legal edge of the seat state machine.
func CanTransition(from, to SeatStatus) bool {
	switch from {
	case SeatAvailable:
		return to == SeatReserved
	case SeatReserved:
		return to == SeatBooked || to == SeatAvailable
	case SeatBooked:
		return to == SeatAvailable
	}
	return false
}
