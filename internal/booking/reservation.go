package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ritik/event-backend/internal/model"
)

// ReservationManager decides whether a purchase may consume one unit
// of a ticket type's capacity.  For a type with capacity C, any set
// of N concurrent Reserve calls yields exactly min(N, C) tickets;
// the rest fail with ErrSoldOut.  No interleaving can push the count
// of non-cancelled tickets past C.
type ReservationManager struct {
	store    InventoryStore
	accounts AccountLookup
	tokens   TokenIssuer
	locks    *KeyedMutex
}

// NewReservationManager wires a manager to its collaborators.  All
// dependencies must be non-nil.
func NewReservationManager(store InventoryStore, accounts AccountLookup, tokens TokenIssuer) *ReservationManager {
	if store == nil || accounts == nil || tokens == nil {
		panic("nil dependency passed to NewReservationManager")
	}
	return &ReservationManager{
		store:    store,
		accounts: accounts,
		tokens:   tokens,
		locks:    NewKeyedMutex(),
	}
}

// Reserve atomically checks remaining capacity for the ticket type
// and, if a unit is free, creates a PURCHASED ticket for the
// purchaser.  The check-then-create step runs under an exclusive
// lock scoped to the ticket type and inside one store transaction,
// so no concurrent reservation observes a stale count.  Token
// issuance happens after the ticket is durable and outside the
// lock: if it fails, the returned error wraps ErrTokenIssuance but
// the ticket is still returned.  The purchase stands and the token
// can be regenerated later.
func (m *ReservationManager) Reserve(ctx context.Context, purchaserID, ticketTypeID uuid.UUID) (*model.Ticket, error) {
	ok, err := m.accounts.Exists(ctx, purchaserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAccountNotFound
	}

	unlock := m.locks.Lock("ticket-type:" + ticketTypeID.String())
	var ticket *model.Ticket
	err = m.store.WithTx(ctx, func(ctx context.Context) error {
		tt, err := m.store.TicketTypeForUpdate(ctx, ticketTypeID)
		if err != nil {
			return err
		}
		issued, err := m.store.CountIssued(ctx, ticketTypeID)
		if err != nil {
			return err
		}
		if issued+1 > tt.TotalAvailable {
			return ErrSoldOut
		}
		now := time.Now().UTC()
		ticket = &model.Ticket{
			ID:           uuid.New(),
			TicketTypeID: ticketTypeID,
			PurchaserID:  purchaserID,
			Status:       model.TicketPurchased,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return m.store.CreateTicket(ctx, ticket)
	})
	unlock()
	if err != nil {
		return nil, err
	}

	if _, err := m.tokens.Issue(ctx, ticket.ID, purchaserID); err != nil {
		return ticket, fmt.Errorf("%w: %v", ErrTokenIssuance, err)
	}
	return ticket, nil
}
