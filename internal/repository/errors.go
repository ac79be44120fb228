// Package repository provides the persistent stores behind the reservation
// and booking managers. This file defines the single conflict taxonomy
// shared by every store operation. Higher layers such as handlers match on
// the reason to decide between an HTTP 409 (another actor won a race), 404
// (unknown entity) and 400 (caller error); they never need per-operation
// bespoke error types.
package repository

import (
	"errors"
	"fmt"
)

// ConflictReason classifies why an operation was rejected.
type ConflictReason string

const (
	// SeatUnavailable: the seat is not in a state the caller can act on,
	// typically because another customer reserved or booked it first.
	SeatUnavailable ConflictReason = "SEAT_UNAVAILABLE"
	// VersionMismatch: the presented version is stale; the entity was
	// modified after the caller last read it.
	VersionMismatch ConflictReason = "VERSION_MISMATCH"
	// AlreadyFinalized: the booking is CONFIRMED or CANCELLED and permits
	// no further transitions.
	AlreadyFinalized ConflictReason = "ALREADY_FINALIZED"
	// NotFound: the referenced movie, screening, seat or booking does not exist.
	NotFound ConflictReason = "NOT_FOUND"
	// ValidationFailed: the request itself is malformed (empty customer
	// fields, bad email, zero IDs).
	ValidationFailed ConflictReason = "VALIDATION_FAILED"
)

// ConflictError is the uniform rejection type for every state-changing
// operation in the protocol. Reason drives transport mapping; Message is a
// human-readable detail safe to return to clients.
type ConflictError struct {
	Reason  ConflictReason
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// NewConflict builds a ConflictError with a formatted message.
func NewConflict(reason ConflictReason, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

// AsConflict extracts a ConflictError from err, unwrapping as needed.
func AsConflict(err error) (*ConflictError, bool) {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// IsConflict reports whether err is a ConflictError with the given reason.
func IsConflict(err error, reason ConflictReason) bool {
	ce, ok := AsConflict(err)
	return ok && ce.Reason == reason
}
