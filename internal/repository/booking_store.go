package repository

import (
	"context"
	"database/sql"

	"github.com/cinegate/cinema-booking/internal/model"
)

// scanBooking reads one bookings row from a row scanner.
func scanBooking(row interface {
	Scan(dest ...interface{}) error
}) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.ScreeningID, &b.SeatID,
		&b.Customer.Name, &b.Customer.Email, &b.Customer.Phone,
		&b.Status, &b.Version, &b.CreatedAt)
	return b, err
}

const bookingColumns = `id, screening_id, seat_id, customer_name, customer_email, customer_phone, status, version, created_at`

// CreateBooking converts a hold into a PENDING booking. In one transaction
// the seat moves RESERVED -> BOOKED at the hold's version, the booking row
// is inserted and the hold row is removed. If the seat's version has moved
// (the hold was swept and the seat possibly reassigned), the compare-and-set
// rejects the write and nothing is persisted; the conflict is reported as
// SeatUnavailable because from the caller's perspective the seat is gone,
// not merely stale.
func (s *MySQLStore) CreateBooking(ctx context.Context, h model.Hold, customer model.Customer) (model.Booking, error) {
	var created model.Booking
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		seat, err := compareAndSetSeatTx(ctx, tx, h.SeatID, h.Version, model.SeatBooked)
		if err != nil {
			if ce, ok := AsConflict(err); ok && ce.Reason == VersionMismatch {
				return NewConflict(SeatUnavailable, "seat %d is no longer held", h.SeatID)
			}
			return err
		}
		const ins = `INSERT INTO bookings (screening_id, seat_id, customer_name, customer_email, customer_phone, status, version)
					 VALUES (?, ?, ?, ?, ?, ?, 0)`
		res, err := tx.ExecContext(ctx, ins, seat.ScreeningID, seat.ID,
			customer.Name, customer.Email, customer.Phone, string(model.BookingPending))
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := deleteHoldTx(ctx, tx, h.Token); err != nil {
			return err
		}
		// Read the row back so DB-default timestamps are populated.
		created, err = scanBooking(tx.QueryRowContext(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
		return err
	})
	if err != nil {
		return model.Booking{}, err
	}
	return created, nil
}

// GetBooking returns a single booking by ID, or a NotFound conflict.
func (s *MySQLStore) GetBooking(ctx context.Context, id uint64) (model.Booking, error) {
	b, err := scanBooking(s.db.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Booking{}, NewConflict(NotFound, "booking %d not found", id)
	}
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// FinalizeBooking applies a terminal transition to a PENDING booking. Legal
// targets are CONFIRMED and CANCELLED; a booking already in a terminal
// status reports AlreadyFinalized regardless of the presented version, and
// a stale version on a PENDING booking reports VersionMismatch. Cancelling
// also returns the seat BOOKED -> AVAILABLE in the same transaction, using
// the seat's current version read under the row lock.
func (s *MySQLStore) FinalizeBooking(ctx context.Context, id uint64, expectedVersion uint32, to model.BookingStatus) (model.Booking, error) {
	var final model.Booking
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		cur, err := scanBooking(tx.QueryRowContext(ctx,
			`SELECT `+bookingColumns+` FROM bookings WHERE id = ? FOR UPDATE`, id))
		if err == sql.ErrNoRows {
			return NewConflict(NotFound, "booking %d not found", id)
		}
		if err != nil {
			return err
		}
		if cur.Status.Terminal() {
			return NewConflict(AlreadyFinalized, "booking %d is already %s", id, cur.Status)
		}
		if cur.Version != expectedVersion {
			return NewConflict(VersionMismatch,
				"booking %d is at version %d, not %d", id, cur.Version, expectedVersion)
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE bookings SET status = ?, version = version + 1, updated_at = UTC_TIMESTAMP() WHERE id = ? AND version = ?`,
			string(to), id, expectedVersion,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n != 1 {
			return NewConflict(VersionMismatch, "booking %d moved concurrently", id)
		}
		if to == model.BookingCancelled {
			seat, err := s.lockSeatVersionTx(ctx, tx, cur.SeatID)
			if err != nil {
				return err
			}
			if _, err := compareAndSetSeatTx(ctx, tx, cur.SeatID, seat.Version, model.SeatAvailable); err != nil {
				return err
			}
		}
		cur.Status = to
		cur.Version++
		final = cur
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return final, nil
}

// lockSeatVersionTx reads a seat under the row lock so the follow-up
// compare-and-set cannot race another writer between read and write.
func (s *MySQLStore) lockSeatVersionTx(ctx context.Context, tx *sql.Tx, seatID uint64) (model.Seat, error) {
	var st model.Seat
	err := tx.QueryRowContext(ctx,
		`SELECT id, screening_id, row_label, seat_number, status, version FROM seats WHERE id = ? FOR UPDATE`,
		seatID,
	).Scan(&st.ID, &st.ScreeningID, &st.RowLabel, &st.SeatNumber, &st.Status, &st.Version)
	if err == sql.ErrNoRows {
		return model.Seat{}, NewConflict(NotFound, "seat %d not found", seatID)
	}
	if err != nil {
		return model.Seat{}, err
	}
	return st, nil
}

// ListBookingsByEmail returns a customer's booking history, most recent
// first, joined with seat and screening details for display.
func (s *MySQLStore) ListBookingsByEmail(ctx context.Context, email string) ([]model.BookingDetail, error) {
	const q = `SELECT b.id, b.screening_id, b.seat_id,
					  b.customer_name, b.customer_email, b.customer_phone,
					  b.status, b.version, b.created_at,
					  st.row_label, st.seat_number, m.title, sc.starts_at
			   FROM bookings b
			   JOIN seats st ON st.id = b.seat_id
			   JOIN screenings sc ON sc.id = b.screening_id
			   JOIN movies m ON m.id = sc.movie_id
			   WHERE b.customer_email = ?
			   ORDER BY b.created_at DESC, b.id DESC`
	rows, err := s.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.BookingDetail
	for rows.Next() {
		var d model.BookingDetail
		if err := rows.Scan(&d.ID, &d.ScreeningID, &d.SeatID,
			&d.Customer.Name, &d.Customer.Email, &d.Customer.Phone,
			&d.Status, &d.Version, &d.CreatedAt,
			&d.RowLabel, &d.SeatNumber, &d.MovieTitle, &d.StartsAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
