package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ritik/event-backend/internal/model"
)

// ValidationEngine decides, for a ticket and an admission attempt,
// whether this is the first successful admission or a repeat.  Every
// attempt appends exactly one record to the ticket's validation
// history; across any number of concurrent attempts at most one
// record ever carries VALID.
type ValidationEngine struct {
	store    InventoryStore
	resolver TokenResolver
	locks    *KeyedMutex
}

// NewValidationEngine wires an engine to its collaborators.  All
// dependencies must be non-nil.
func NewValidationEngine(store InventoryStore, resolver TokenResolver) *ValidationEngine {
	if store == nil || resolver == nil {
		panic("nil dependency passed to NewValidationEngine")
	}
	return &ValidationEngine{
		store:    store,
		resolver: resolver,
		locks:    NewKeyedMutex(),
	}
}

// ValidateManual records an admission attempt made by direct ticket
// identity, as when staff look a ticket up at the door.
func (e *ValidationEngine) ValidateManual(ctx context.Context, ticketID uuid.UUID) (*model.TicketValidation, error) {
	return e.validate(ctx, ticketID, model.MethodManual)
}

// ValidateScan resolves an opaque token to its ticket and records an
// admission attempt for it.  An unknown or inactive token fails with
// ErrTokenNotFound before anything is appended.
func (e *ValidationEngine) ValidateScan(ctx context.Context, token uuid.UUID) (*model.TicketValidation, error) {
	ticketID, _, err := e.resolver.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	return e.validate(ctx, ticketID, model.MethodQrScan)
}

// validate appends one record for the attempt.  The history read and
// the append run under an exclusive lock scoped to the ticket and
// inside one transaction, so two concurrent scans of the same ticket
// cannot both observe "no prior VALID" and both admit.  A repeat
// attempt is recorded INVALID regardless of method: a manual check
// after a scan does not grant re-entry.
func (e *ValidationEngine) validate(ctx context.Context, ticketID uuid.UUID, method string) (*model.TicketValidation, error) {
	if _, err := e.store.GetTicket(ctx, ticketID); err != nil {
		return nil, err
	}

	unlock := e.locks.Lock("ticket:" + ticketID.String())
	defer unlock()

	var record *model.TicketValidation
	err := e.store.WithTx(ctx, func(ctx context.Context) error {
		history, err := e.store.Validations(ctx, ticketID)
		if err != nil {
			return err
		}
		status := model.ValidationValid
		for _, prior := range history {
			if prior.Status == model.ValidationValid {
				status = model.ValidationInvalid
				break
			}
		}
		record = &model.TicketValidation{
			ID:          uuid.New(),
			TicketID:    ticketID,
			Method:      method,
			Status:      status,
			ValidatedAt: time.Now().UTC(),
		}
		return e.store.AppendValidation(ctx, record)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
