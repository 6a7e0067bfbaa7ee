package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ritik/event-backend/internal/model"
)

func newManager(store *fakeStore) (*ReservationManager, *fakeIssuer) {
	issuer := &fakeIssuer{}
	return NewReservationManager(store, &fakeAccounts{}, issuer), issuer
}

func TestReserveIssuesTicketAndToken(t *testing.T) {
	store := newFakeStore()
	typeID := store.addType(5)
	m, issuer := newManager(store)
	userID := uuid.New()

	ticket, err := m.Reserve(context.Background(), userID, typeID)
	require.NoError(t, err)
	require.NotNil(t, ticket)

	assert.Equal(t, typeID, ticket.TicketTypeID)
	assert.Equal(t, userID, ticket.PurchaserID)
	assert.Equal(t, model.TicketPurchased, ticket.Status)
	assert.Equal(t, 1, issuer.issued)

	stored, err := store.GetTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, stored.ID)
}

func TestReserveUnknownAccount(t *testing.T) {
	store := newFakeStore()
	typeID := store.addType(5)
	userID := uuid.New()
	m := NewReservationManager(store, &fakeAccounts{missing: map[uuid.UUID]bool{userID: true}}, &fakeIssuer{})

	ticket, err := m.Reserve(context.Background(), userID, typeID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	assert.Nil(t, ticket)
	n, _ := store.CountIssued(context.Background(), typeID)
	assert.Zero(t, n)
}

func TestReserveUnknownTicketType(t *testing.T) {
	store := newFakeStore()
	m, _ := newManager(store)

	ticket, err := m.Reserve(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, ErrTicketTypeNotFound)
	assert.Nil(t, ticket)
}

func TestReserveSoldOut(t *testing.T) {
	store := newFakeStore()
	typeID := store.addType(1)
	m, _ := newManager(store)

	_, err := m.Reserve(context.Background(), uuid.New(), typeID)
	require.NoError(t, err)

	ticket, err := m.Reserve(context.Background(), uuid.New(), typeID)
	assert.ErrorIs(t, err, ErrSoldOut)
	assert.Nil(t, ticket)

	n, _ := store.CountIssued(context.Background(), typeID)
	assert.Equal(t, 1, n)
}

func TestReserveZeroCapacity(t *testing.T) {
	store := newFakeStore()
	typeID := store.addType(0)
	m, _ := newManager(store)

	_, err := m.Reserve(context.Background(), uuid.New(), typeID)
	assert.ErrorIs(t, err, ErrSoldOut)
}

// Concurrent demand above capacity must yield exactly capacity
// tickets, never one more.
func TestReserveConcurrentCapacityBound(t *testing.T) {
	const capacity = 10
	const demand = 50

	store := newFakeStore()
	typeID := store.addType(capacity)
	m, issuer := newManager(store)

	var wg sync.WaitGroup
	var mu sync.Mutex
	won, soldOut := 0, 0
	for i := 0; i < demand; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Reserve(context.Background(), uuid.New(), typeID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, ErrSoldOut):
				soldOut++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, capacity, won)
	assert.Equal(t, demand-capacity, soldOut)
	n, _ := store.CountIssued(context.Background(), typeID)
	assert.Equal(t, capacity, n)
	assert.Equal(t, capacity, issuer.issued)
}

// Two types must not serialize against each other.
func TestReserveIndependentTypes(t *testing.T) {
	store := newFakeStore()
	typeA := store.addType(1)
	typeB := store.addType(1)
	m, _ := newManager(store)

	_, errA := m.Reserve(context.Background(), uuid.New(), typeA)
	_, errB := m.Reserve(context.Background(), uuid.New(), typeB)
	assert.NoError(t, errA)
	assert.NoError(t, errB)
}

func TestReserveTokenIssuanceFailureKeepsTicket(t *testing.T) {
	store := newFakeStore()
	typeID := store.addType(3)
	issuer := &fakeIssuer{fail: true}
	m := NewReservationManager(store, &fakeAccounts{}, issuer)

	ticket, err := m.Reserve(context.Background(), uuid.New(), typeID)
	require.ErrorIs(t, err, ErrTokenIssuance)
	require.NotNil(t, ticket)

	// The purchase stands and keeps consuming capacity.
	n, _ := store.CountIssued(context.Background(), typeID)
	assert.Equal(t, 1, n)
	_, err = store.GetTicket(context.Background(), ticket.ID)
	assert.NoError(t, err)
}

func TestReserveStoreFailureCreatesNothing(t *testing.T) {
	store := newFakeStore()
	typeID := store.addType(3)
	store.txErr = errors.New("db down")
	m, issuer := newManager(store)

	ticket, err := m.Reserve(context.Background(), uuid.New(), typeID)
	assert.Error(t, err)
	assert.Nil(t, ticket)
	assert.Zero(t, issuer.issued)
}
