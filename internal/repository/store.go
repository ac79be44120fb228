package repository

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
)

// MySQLStore is the production store. Every state-changing operation runs
// in a single transaction and funnels seat writes through the
// compare-and-set primitive in seat_store.go, so concurrent writers on the
// same seat are serialized by the row lock and resolved by the version
// check. Operations on distinct seats never contend.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQLStore returns a MySQLStore bound to the provided database.
func NewMySQLStore(db *sql.DB) *MySQLStore { return &MySQLStore{db: db} }

// DB exposes the underlying sql.DB for health checks.
func (s *MySQLStore) DB() *sql.DB { return s.db }

// withTx runs fn inside a transaction, rolling back on error or panic and
// committing otherwise. All multi-statement store operations go through it.
func (s *MySQLStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// NewHoldToken generates a random hexadecimal token used to correlate a
// hold between the server and a client session. The underlying call to
// crypto/rand ensures cryptographically secure random bytes; 32 bytes give
// a 64 character hex string.
func NewHoldToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
