package repository

import (
	"context"
	"database/sql"

	"github.com/cinegate/cinema-booking/internal/model"
)

// ListScreeningsByMovie returns the screenings of a movie ordered by start
// time. Screenings in the past are still listed; filtering is a concern of
// the caller.
func (s *MySQLStore) ListScreeningsByMovie(ctx context.Context, movieID uint64) ([]model.Screening, error) {
	const q = `SELECT id, movie_id, starts_at, total_seats, available_seats
			   FROM screenings WHERE movie_id = ? ORDER BY starts_at, id`
	rows, err := s.db.QueryContext(ctx, q, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var screenings []model.Screening
	for rows.Next() {
		var sc model.Screening
		if err := rows.Scan(&sc.ID, &sc.MovieID, &sc.StartsAt, &sc.TotalSeats, &sc.AvailableSeats); err != nil {
			return nil, err
		}
		screenings = append(screenings, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return screenings, nil
}

// GetScreening returns a single screening by ID, or a NotFound conflict.
func (s *MySQLStore) GetScreening(ctx context.Context, id uint64) (model.Screening, error) {
	const q = `SELECT id, movie_id, starts_at, total_seats, available_seats FROM screenings WHERE id = ?`
	var sc model.Screening
	err := s.db.QueryRowContext(ctx, q, id).Scan(&sc.ID, &sc.MovieID, &sc.StartsAt, &sc.TotalSeats, &sc.AvailableSeats)
	if err == sql.ErrNoRows {
		return model.Screening{}, NewConflict(NotFound, "screening %d not found", id)
	}
	if err != nil {
		return model.Screening{}, err
	}
	return sc, nil
}

// adjustAvailableTx shifts a screening's derived available-seat count by
// delta. It is called from the seat compare-and-set whenever a transition
// crosses the AVAILABLE boundary and must run in the same transaction.
func adjustAvailableTx(ctx context.Context, tx *sql.Tx, screeningID uint64, delta int) error {
	if delta == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE screenings SET available_seats = available_seats + ? WHERE id = ?`,
		delta, screeningID,
	)
	return err
}
