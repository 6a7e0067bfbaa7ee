package booking

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/ritik/event-backend/internal/model"
)

// fakeStore is an in-memory InventoryStore.  Its own mutex only keeps
// the maps safe; the atomicity of check-then-create is supplied by
// the engines, which is exactly what the tests exercise.
type fakeStore struct {
	mu          sync.Mutex
	types       map[uuid.UUID]*model.TicketType
	tickets     map[uuid.UUID]*model.Ticket
	validations map[uuid.UUID][]model.TicketValidation

	txErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		types:       make(map[uuid.UUID]*model.TicketType),
		tickets:     make(map[uuid.UUID]*model.Ticket),
		validations: make(map[uuid.UUID][]model.TicketValidation),
	}
}

func (s *fakeStore) addType(capacity int) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.types[id] = &model.TicketType{ID: id, TotalAvailable: capacity}
	return id
}

func (s *fakeStore) addTicket() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.tickets[id] = &model.Ticket{ID: id, Status: model.TicketPurchased}
	return id
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txErr != nil {
		return s.txErr
	}
	return fn(ctx)
}

func (s *fakeStore) TicketTypeForUpdate(ctx context.Context, id uuid.UUID) (*model.TicketType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.types[id]
	if !ok {
		return nil, ErrTicketTypeNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) CountIssued(ctx context.Context, ticketTypeID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tickets {
		if t.TicketTypeID == ticketTypeID && t.Status != model.TicketCancelled {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) CreateTicket(ctx context.Context, t *model.Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *t
	s.tickets[t.ID] = &cp
	return nil
}

func (s *fakeStore) GetTicket(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeStore) Validations(ctx context.Context, ticketID uuid.UUID) ([]model.TicketValidation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TicketValidation, len(s.validations[ticketID]))
	copy(out, s.validations[ticketID])
	return out, nil
}

func (s *fakeStore) AppendValidation(ctx context.Context, v *model.TicketValidation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validations[v.TicketID] = append(s.validations[v.TicketID], *v)
	return nil
}

// fakeAccounts accepts every ID unless told otherwise.
type fakeAccounts struct {
	missing map[uuid.UUID]bool
}

func (a *fakeAccounts) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	return !a.missing[userID], nil
}

// fakeIssuer records issued tokens and can be told to fail.
type fakeIssuer struct {
	mu     sync.Mutex
	issued int
	fail   bool
}

func (f *fakeIssuer) Issue(ctx context.Context, ticketID, purchaserID uuid.UUID) (*model.QrCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("issuer unavailable")
	}
	f.issued++
	return &model.QrCode{Token: uuid.New(), TicketID: ticketID, PurchaserID: purchaserID, Status: model.QrCodeActive}, nil
}

// fakeResolver maps tokens to tickets.
type fakeResolver struct {
	byToken map[uuid.UUID]uuid.UUID
}

func (f *fakeResolver) Resolve(ctx context.Context, token uuid.UUID) (uuid.UUID, uuid.UUID, error) {
	ticketID, ok := f.byToken[token]
	if !ok {
		return uuid.Nil, uuid.Nil, ErrTokenNotFound
	}
	return ticketID, uuid.Nil, nil
}
