package model

import "time"

// Screening is a scheduled showing of a movie.  TotalSeats is fixed when
// the screening is created; AvailableSeats is derived and maintained by the
// store as the count of seats whose status is AVAILABLE.
//
// Fields:
//  ID             – primary key identifier.
//  MovieID        – movie being shown.
//  StartsAt       – scheduled start time (UTC).
//  TotalSeats     – number of seats in the room.
//  AvailableSeats – seats currently in status AVAILABLE.
type Screening struct {
	ID             uint64    `json:"id"`              // screenings.id
	MovieID        uint64    `json:"movie_id"`        // screenings.movie_id
	StartsAt       time.Time `json:"starts_at"`       // screenings.starts_at
	TotalSeats     uint32    `json:"total_seats"`     // screenings.total_seats
	AvailableSeats uint32    `json:"available_seats"` // screenings.available_seats
}
