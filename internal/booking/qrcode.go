package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ritik/event-backend/internal/model"
)

// TokenStore persists opaque QR tokens.
type TokenStore interface {
	// CreateCode persists a newly issued code.
	CreateCode(ctx context.Context, code *model.QrCode) error

	// ActiveCode loads an ACTIVE code by token.  Returns
	// ErrTokenNotFound when the token is unknown or expired.
	ActiveCode(ctx context.Context, token uuid.UUID) (*model.QrCode, error)
}

// TokenService implements TokenIssuer and TokenResolver over a
// TokenStore.  Tokens are random UUIDs: unguessable, bound to one
// ticket and one purchaser at issuance, carrying no state of their
// own.  Rendering a token as a scannable image is left to clients.
type TokenService struct {
	store TokenStore
}

// NewTokenService returns a TokenService over the given store.
func NewTokenService(store TokenStore) *TokenService {
	if store == nil {
		panic("nil store passed to NewTokenService")
	}
	return &TokenService{store: store}
}

// Issue creates and persists a fresh ACTIVE token for the ticket.
func (s *TokenService) Issue(ctx context.Context, ticketID, purchaserID uuid.UUID) (*model.QrCode, error) {
	code := &model.QrCode{
		Token:       uuid.New(),
		TicketID:    ticketID,
		PurchaserID: purchaserID,
		Status:      model.QrCodeActive,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.store.CreateCode(ctx, code); err != nil {
		return nil, err
	}
	return code, nil
}

// Resolve maps an opaque token back to the ticket and purchaser it
// was issued for.
func (s *TokenService) Resolve(ctx context.Context, token uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	code, err := s.store.ActiveCode(ctx, token)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return code.TicketID, code.PurchaserID, nil
}
