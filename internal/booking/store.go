package booking

import (
	"context"

	"github.com/google/uuid"

	"github.com/ritik/event-backend/internal/model"
)

// InventoryStore is the durable record of ticket-type capacity,
// issued tickets and validation history.  WithTx runs fn inside a
// single transaction; calls made with the context passed to fn
// observe and join that transaction.  Implementations must make
// TicketTypeForUpdate take an exclusive row lock when called inside
// a transaction, so the check-then-create sequence in Reserve is
// atomic with respect to other writers even across service
// instances.
type InventoryStore interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// TicketTypeForUpdate loads a ticket type, locking its row for
	// the remainder of the enclosing transaction.  Returns
	// ErrTicketTypeNotFound when no such type exists.
	TicketTypeForUpdate(ctx context.Context, id uuid.UUID) (*model.TicketType, error)

	// CountIssued returns the number of non-cancelled tickets
	// referencing the ticket type.
	CountIssued(ctx context.Context, ticketTypeID uuid.UUID) (int, error)

	// CreateTicket persists a new ticket row.
	CreateTicket(ctx context.Context, t *model.Ticket) error

	// GetTicket loads a ticket by identity.  Returns
	// ErrTicketNotFound when no such ticket exists.
	GetTicket(ctx context.Context, id uuid.UUID) (*model.Ticket, error)

	// Validations returns the ticket's validation history in
	// insertion order.
	Validations(ctx context.Context, ticketID uuid.UUID) ([]model.TicketValidation, error)

	// AppendValidation appends one validation record.  Existing
	// records are never touched.
	AppendValidation(ctx context.Context, v *model.TicketValidation) error
}

// AccountLookup verifies purchaser identities before reservation.
type AccountLookup interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// TokenIssuer produces an opaque token bound 1:1 to a ticket and its
// purchaser.  The engines treat tokens as opaque; they neither
// generate nor decode their encoding.
type TokenIssuer interface {
	Issue(ctx context.Context, ticketID, purchaserID uuid.UUID) (*model.QrCode, error)
}

// TokenResolver resolves an opaque token back to the ticket and
// purchaser it was issued for.  Returns ErrTokenNotFound when the
// token is unknown or no longer active.
type TokenResolver interface {
	Resolve(ctx context.Context, token uuid.UUID) (ticketID, purchaserID uuid.UUID, err error)
}
