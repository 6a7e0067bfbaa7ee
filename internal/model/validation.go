package model

import (
	"time"

	"github.com/google/uuid"
)

// Validation methods and outcomes as stored in ticket_validations.
// MANUAL means a staff member checked the ticket by its identifier;
// QR_SCAN means an opaque token was scanned at the gate.
const (
	MethodManual = "MANUAL"
	MethodQrScan = "QR_SCAN"

	ValidationValid   = "VALID"
	ValidationInvalid = "INVALID"
)

// TicketValidation is one append-only log entry capturing an
// admission attempt and its outcome.  Rows are never mutated or
// deleted.  A ticket is used once any row for it carries VALID;
// every later attempt is recorded INVALID regardless of method.
//
// Fields:
//  ID          – primary key identifier.
//  TicketID    – ticket the attempt was made against.
//  Method      – MANUAL or QR_SCAN.
//  Status      – VALID (first admission) or INVALID (repeat).
//  ValidatedAt – when the attempt happened.
type TicketValidation struct {
	ID          uuid.UUID // ticket_validations.id
	TicketID    uuid.UUID // ticket_validations.ticket_id
	Method      string    // ticket_validations.method
	Status      string    // ticket_validations.status
	ValidatedAt time.Time // ticket_validations.validated_at
}
