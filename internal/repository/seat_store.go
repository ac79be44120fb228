package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cinegate/cinema-booking/internal/model"
)

// ListSeats returns every seat of a screening ordered by row label and then
// seat number, so the map renders deterministically on every refresh.
func (s *MySQLStore) ListSeats(ctx context.Context, screeningID uint64) ([]model.Seat, error) {
	const q = `SELECT id, screening_id, row_label, seat_number, status, version
			   FROM seats WHERE screening_id = ? ORDER BY row_label, seat_number`
	rows, err := s.db.QueryContext(ctx, q, screeningID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var st model.Seat
		if err := rows.Scan(&st.ID, &st.ScreeningID, &st.RowLabel, &st.SeatNumber, &st.Status, &st.Version); err != nil {
			return nil, err
		}
		seats = append(seats, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// GetSeat returns a single seat by ID, or a NotFound conflict.
func (s *MySQLStore) GetSeat(ctx context.Context, seatID uint64) (model.Seat, error) {
	const q = `SELECT id, screening_id, row_label, seat_number, status, version FROM seats WHERE id = ?`
	var st model.Seat
	err := s.db.QueryRowContext(ctx, q, seatID).Scan(&st.ID, &st.ScreeningID, &st.RowLabel, &st.SeatNumber, &st.Status, &st.Version)
	if err == sql.ErrNoRows {
		return model.Seat{}, NewConflict(NotFound, "seat %d not found", seatID)
	}
	if err != nil {
		return model.Seat{}, err
	}
	return st, nil
}

// compareAndSetSeatTx is the sole seat-mutating primitive. It locks the
// seat row, verifies the presented version and the legality of the
// requested transition, bumps the version by exactly one and keeps the
// screening's available-seat count in step. All conflicts are reported
// through the ConflictError taxonomy:
//
//   - unknown seat            -> NotFound
//   - stale expected version  -> VersionMismatch
//   - illegal transition      -> SeatUnavailable
//
// The caller owns the transaction and must commit or roll back.
func compareAndSetSeatTx(ctx context.Context, tx *sql.Tx, seatID uint64, expectedVersion uint32, to model.SeatStatus) (model.Seat, error) {
	const sel = `SELECT id, screening_id, row_label, seat_number, status, version
				 FROM seats WHERE id = ? FOR UPDATE`
	var cur model.Seat
	err := tx.QueryRowContext(ctx, sel, seatID).Scan(&cur.ID, &cur.ScreeningID, &cur.RowLabel, &cur.SeatNumber, &cur.Status, &cur.Version)
	if err == sql.ErrNoRows {
		return model.Seat{}, NewConflict(NotFound, "seat %d not found", seatID)
	}
	if err != nil {
		return model.Seat{}, err
	}
	if cur.Version != expectedVersion {
		return model.Seat{}, NewConflict(VersionMismatch,
			"seat %d is at version %d, not %d", seatID, cur.Version, expectedVersion)
	}
	if !model.CanTransition(cur.Status, to) {
		return model.Seat{}, NewConflict(SeatUnavailable,
			"seat %d is %s and cannot become %s", seatID, cur.Status, to)
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE seats SET status = ?, version = version + 1, updated_at = UTC_TIMESTAMP() WHERE id = ? AND version = ?`,
		string(to), seatID, expectedVersion,
	)
	if err != nil {
		return model.Seat{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Seat{}, err
	}
	if n != 1 {
		return model.Seat{}, NewConflict(VersionMismatch, "seat %d moved concurrently", seatID)
	}
	delta := 0
	if cur.Status == model.SeatAvailable && to != model.SeatAvailable {
		delta = -1
	} else if cur.Status != model.SeatAvailable && to == model.SeatAvailable {
		delta = 1
	}
	if err := adjustAvailableTx(ctx, tx, cur.ScreeningID, delta); err != nil {
		return model.Seat{}, err
	}
	cur.Status = to
	cur.Version++
	return cur, nil
}

// ReserveSeat transitions a seat AVAILABLE -> RESERVED at the presented
// version and records a hold with the given token and deadline, all in one
// transaction. On success the returned seat carries the new version that
// the hold is granted with.
func (s *MySQLStore) ReserveSeat(ctx context.Context, seatID uint64, expectedVersion uint32, token string, expiresAt time.Time) (model.Seat, error) {
	var reserved model.Seat
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		seat, err := compareAndSetSeatTx(ctx, tx, seatID, expectedVersion, model.SeatReserved)
		if err != nil {
			return err
		}
		if err := insertHoldTx(ctx, tx, model.Hold{
			Token:       token,
			ScreeningID: seat.ScreeningID,
			SeatID:      seat.ID,
			Version:     seat.Version,
			ExpiresAt:   expiresAt,
		}); err != nil {
			return err
		}
		reserved = seat
		return nil
	})
	if err != nil {
		return model.Seat{}, err
	}
	return reserved, nil
}
