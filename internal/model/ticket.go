package model

import (
	"time"

	"github.com/google/uuid"
)

// Ticket statuses as stored in tickets.status.  A ticket is created
// in PURCHASED status by a successful reservation and only leaves it
// when cancelled.  Cancelled tickets release one unit of capacity.
const (
	TicketPurchased = "PURCHASED"
	TicketCancelled = "CANCELLED"
)

// Ticket is one issued unit of a ticket type's capacity, owned by
// exactly one purchaser.  Tickets are created only by the reservation
// path; a ticket row without a backing reservation must not exist.
//
// Fields:
//  ID           – primary key identifier.
//  TicketTypeID – type whose capacity this ticket consumes.
//  PurchaserID  – user who bought the ticket.
//  Status       – PURCHASED or CANCELLED.
//  CreatedAt    – purchase timestamp.
//  UpdatedAt    – last update timestamp.
type Ticket struct {
	ID           uuid.UUID // tickets.id
	TicketTypeID uuid.UUID // tickets.ticket_type_id
	PurchaserID  uuid.UUID // tickets.purchaser_id
	Status       string    // tickets.status
	CreatedAt    time.Time // tickets.created_at
	UpdatedAt    time.Time // tickets.updated_at
}
