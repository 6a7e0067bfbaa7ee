package model

import (
	"time"

	"github.com/google/uuid"
)

// QR code statuses.  Only ACTIVE codes resolve during validation;
// EXPIRED codes remain for audit but no longer admit anyone.
const (
	QrCodeActive  = "ACTIVE"
	QrCodeExpired = "EXPIRED"
)

// QrCode binds an opaque, unguessable token to a ticket and its
// purchaser at issuance time.  The token carries no capacity or
// validation state; it only resolves to a ticket.  Rendering the
// token as a scannable image is outside this service.
//
// Fields:
//  Token       – the random token (primary key).
//  TicketID    – ticket this token resolves to.
//  PurchaserID – owner of the ticket at issuance time.
//  Status      – ACTIVE or EXPIRED.
//  CreatedAt   – issuance timestamp.
type QrCode struct {
	Token       uuid.UUID // qr_codes.token
	TicketID    uuid.UUID // qr_codes.ticket_id
	PurchaserID uuid.UUID // qr_codes.purchaser_id
	Status      string    // qr_codes.status
	CreatedAt   time.Time // qr_codes.created_at
}
