package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cinegate/cinema-booking/internal/model"
)

// insertHoldTx records a hold within the provided transaction. Expiration
// comparisons are always performed in UTC, so the deadline is normalized on
// the way in.
func insertHoldTx(ctx context.Context, tx *sql.Tx, h model.Hold) error {
	const q = `INSERT INTO seat_holds (hold_token, screening_id, seat_id, seat_version, expires_at)
			   VALUES (?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, h.Token, h.ScreeningID, h.SeatID, h.Version,
		h.ExpiresAt.UTC().Format("2006-01-02 15:04:05"))
	return err
}

// GetHold returns the stored hold for a token, or a NotFound conflict. The
// stored row, not anything the client presents, is the authority on the
// hold's seat, version and deadline.
func (s *MySQLStore) GetHold(ctx context.Context, token string) (model.Hold, error) {
	const q = `SELECT hold_token, screening_id, seat_id, seat_version, expires_at
	           FROM seat_holds WHERE hold_token = ?`
	var h model.Hold
	err := s.db.QueryRowContext(ctx, q, token).Scan(&h.Token, &h.ScreeningID, &h.SeatID, &h.Version, &h.ExpiresAt)
	if err == sql.ErrNoRows {
		return model.Hold{}, NewConflict(NotFound, "hold not found")
	}
	if err != nil {
		return model.Hold{}, err
	}
	return h, nil
}

// deleteHoldTx removes a hold by token. Missing rows are not an error; the
// hold may already have been consumed by a booking or reclaimed by the sweep.
func deleteHoldTx(ctx context.Context, tx *sql.Tx, token string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM seat_holds WHERE hold_token = ?`, token)
	return err
}

// ReleaseHold undoes a hold: the seat moves RESERVED -> AVAILABLE at the
// hold's version and the hold row is removed. It is idempotent in effect.
// If the seat has since progressed (booked, swept and re-reserved, or the
// hold was already released) the compare-and-set loses cleanly and the
// operation still succeeds after clearing the hold row, so callers on every
// exit path can release unconditionally. The returned bool reports whether
// this call actually freed the seat.
func (s *MySQLStore) ReleaseHold(ctx context.Context, h model.Hold) (bool, error) {
	released := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := compareAndSetSeatTx(ctx, tx, h.SeatID, h.Version, model.SeatAvailable)
		if err != nil {
			if _, ok := AsConflict(err); ok {
				// Lost the race or nothing to undo; still drop the hold row.
				return deleteHoldTx(ctx, tx, h.Token)
			}
			return err
		}
		released = true
		return deleteHoldTx(ctx, tx, h.Token)
	})
	if err != nil {
		return false, err
	}
	return released, nil
}

// ExpiredHolds returns every hold whose deadline is at or before now. The
// sweep releases each one through ReleaseHold, which re-checks the seat
// version, so a hold that converts to a booking between the listing and the
// release is never clobbered.
func (s *MySQLStore) ExpiredHolds(ctx context.Context, now time.Time) ([]model.Hold, error) {
	const q = `SELECT hold_token, screening_id, seat_id, seat_version, expires_at
			   FROM seat_holds WHERE expires_at <= ?`
	rows, err := s.db.QueryContext(ctx, q, now.UTC().Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var holds []model.Hold
	for rows.Next() {
		var h model.Hold
		if err := rows.Scan(&h.Token, &h.ScreeningID, &h.SeatID, &h.Version, &h.ExpiresAt); err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return holds, nil
}
