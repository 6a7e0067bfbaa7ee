package booking

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritik/event-backend/internal/model"
)

func TestValidateManualFirstAttemptAdmits(t *testing.T) {
	store := newFakeStore()
	ticketID := store.addTicket()
	e := NewValidationEngine(store, &fakeResolver{})

	rec, err := e.ValidateManual(context.Background(), ticketID)
	require.NoError(t, err)
	assert.Equal(t, model.ValidationValid, rec.Status)
	assert.Equal(t, model.MethodManual, rec.Method)
	assert.Equal(t, ticketID, rec.TicketID)
}

func TestValidateRepeatIsRecordedInvalid(t *testing.T) {
	store := newFakeStore()
	ticketID := store.addTicket()
	e := NewValidationEngine(store, &fakeResolver{})

	first, err := e.ValidateManual(context.Background(), ticketID)
	require.NoError(t, err)
	second, err := e.ValidateManual(context.Background(), ticketID)
	require.NoError(t, err)

	assert.Equal(t, model.ValidationValid, first.Status)
	assert.Equal(t, model.ValidationInvalid, second.Status)

	history, err := store.Validations(context.Background(), ticketID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

// A manual check after a scan must not admit again; the first VALID
// record wins regardless of method.
func TestValidateCrossMethodSingleAdmission(t *testing.T) {
	store := newFakeStore()
	ticketID := store.addTicket()
	token := uuid.New()
	e := NewValidationEngine(store, &fakeResolver{byToken: map[uuid.UUID]uuid.UUID{token: ticketID}})

	scan, err := e.ValidateScan(context.Background(), token)
	require.NoError(t, err)
	manual, err := e.ValidateManual(context.Background(), ticketID)
	require.NoError(t, err)

	assert.Equal(t, model.ValidationValid, scan.Status)
	assert.Equal(t, model.MethodQrScan, scan.Method)
	assert.Equal(t, model.ValidationInvalid, manual.Status)
	assert.Equal(t, model.MethodManual, manual.Method)
}

func TestValidateUnknownTicket(t *testing.T) {
	store := newFakeStore()
	e := NewValidationEngine(store, &fakeResolver{})

	rec, err := e.ValidateManual(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTicketNotFound)
	assert.Nil(t, rec)
}

func TestValidateScanUnknownToken(t *testing.T) {
	store := newFakeStore()
	ticketID := store.addTicket()
	e := NewValidationEngine(store, &fakeResolver{})

	rec, err := e.ValidateScan(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTokenNotFound)
	assert.Nil(t, rec)

	// Nothing is appended for an unresolved token.
	history, _ := store.Validations(context.Background(), ticketID)
	assert.Empty(t, history)
}

// K concurrent attempts must leave exactly K records with exactly one
// VALID among them.
func TestValidateConcurrentSingleAdmission(t *testing.T) {
	const attempts = 40

	store := newFakeStore()
	ticketID := store.addTicket()
	token := uuid.New()
	e := NewValidationEngine(store, &fakeResolver{byToken: map[uuid.UUID]uuid.UUID{token: ticketID}})

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		scan := i%2 == 0
		wg.Add(1)
		go func() {
			defer wg.Done()
			var err error
			if scan {
				_, err = e.ValidateScan(context.Background(), token)
			} else {
				_, err = e.ValidateManual(context.Background(), ticketID)
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	history, err := store.Validations(context.Background(), ticketID)
	require.NoError(t, err)
	require.Len(t, history, attempts)

	valid := 0
	for _, rec := range history {
		if rec.Status == model.ValidationValid {
			valid++
		}
	}
	assert.Equal(t, 1, valid)
}

func TestTokenServiceIssueAndResolve(t *testing.T) {
	store := newFakeCodeStore()
	svc := NewTokenService(store)
	ticketID, purchaserID := uuid.New(), uuid.New()

	code, err := svc.Issue(context.Background(), ticketID, purchaserID)
	require.NoError(t, err)
	assert.Equal(t, model.QrCodeActive, code.Status)
	assert.NotEqual(t, uuid.Nil, code.Token)

	gotTicket, gotPurchaser, err := svc.Resolve(context.Background(), code.Token)
	require.NoError(t, err)
	assert.Equal(t, ticketID, gotTicket)
	assert.Equal(t, purchaserID, gotPurchaser)

	_, _, err = svc.Resolve(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

type fakeCodeStore struct {
	mu    sync.Mutex
	codes map[uuid.UUID]*model.QrCode
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{codes: make(map[uuid.UUID]*model.QrCode)}
}

func (s *fakeCodeStore) CreateCode(ctx context.Context, code *model.QrCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *code
	s.codes[code.Token] = &cp
	return nil
}

func (s *fakeCodeStore) ActiveCode(ctx context.Context, token uuid.UUID) (*model.QrCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.codes[token]
	if !ok || code.Status != model.QrCodeActive {
		return nil, ErrTokenNotFound
	}
	cp := *code
	return &cp, nil
}
