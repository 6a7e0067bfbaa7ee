// Package booking contains the reservation and validation engines:
// the two paths with real correctness hazards.  Reservation consumes
// one unit of a ticket type's finite capacity under concurrent
// demand; validation admits a ticket exactly once under concurrent
// scans.  Both are defined against narrow store interfaces so the
// invariants can be exercised without a database.
package booking

import "errors"

// Sentinel errors returned by the engines.  Handlers translate these
// into HTTP responses; none of them is retried inside the engine.
var (
	// ErrAccountNotFound means the purchaser identity does not
	// resolve to an existing user.  Nothing is persisted.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTicketTypeNotFound means the reservation referenced an
	// unknown ticket type.
	ErrTicketTypeNotFound = errors.New("ticket type not found")

	// ErrSoldOut means capacity was already exhausted at the atomic
	// check.  No partial ticket is persisted.
	ErrSoldOut = errors.New("tickets sold out")

	// ErrTicketNotFound means a validation reference does not
	// resolve to a ticket.  No validation record is appended.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrTokenNotFound means an opaque token does not resolve to an
	// active QR code.
	ErrTokenNotFound = errors.New("token not found")

	// ErrTokenIssuance means post-purchase token generation failed.
	// The ticket purchase stands; the caller may retry issuance.
	ErrTokenIssuance = errors.New("token issuance failed")
)
