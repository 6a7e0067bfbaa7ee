package repository

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlanTicketTypeChangesCreatesUpdatesDeletes(t *testing.T) {
	keep := uuid.New()
	drop := uuid.New()

	plan, err := planTicketTypeChanges(
		[]uuid.UUID{keep, drop},
		[]TicketTypeChange{
			{ID: &keep, Name: "VIP", PriceCents: 15000, TotalAvailable: 20},
			{ID: nil, Name: "Standing", PriceCents: 4000, TotalAvailable: 500},
		})
	require.NoError(t, err)

	require.Len(t, plan.creates, 1)
	assert.Equal(t, "Standing", plan.creates[0].Name)
	require.Len(t, plan.updates, 1)
	assert.Equal(t, keep, *plan.updates[0].ID)
	assert.Equal(t, []uuid.UUID{drop}, plan.deletes)
}

func TestPlanTicketTypeChangesUnknownID(t *testing.T) {
	stranger := uuid.New()
	_, err := planTicketTypeChanges(
		[]uuid.UUID{uuid.New()},
		[]TicketTypeChange{{ID: &stranger, Name: "Ghost"}})
	assert.ErrorIs(t, err, ErrTicketTypeNotFound)
}

func TestPlanTicketTypeChangesEmptyRequestDeletesAll(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	plan, err := planTicketTypeChanges([]uuid.UUID{a, b}, nil)
	require.NoError(t, err)
	assert.Empty(t, plan.creates)
	assert.Empty(t, plan.updates)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, plan.deletes)
}

func TestPlanTicketTypeChangesAllNew(t *testing.T) {
	plan, err := planTicketTypeChanges(nil, []TicketTypeChange{
		{Name: "GA"}, {Name: "VIP"},
	})
	require.NoError(t, err)
	assert.Len(t, plan.creates, 2)
	assert.Empty(t, plan.deletes)
}
