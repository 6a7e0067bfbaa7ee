package repository

import "github.com/google/uuid"

// TicketTypeChange is one requested state of a ticket type inside an
// event update.  A nil ID requests creation; a non-nil ID must match
// an existing type of the event.
type TicketTypeChange struct {
	ID             *uuid.UUID
	Name           string
	Description    string
	PriceCents     int64
	TotalAvailable int
}

// typePlan is the reconciliation outcome: which ticket types to
// create, update and delete to make the stored set match the request.
type typePlan struct {
	creates []TicketTypeChange
	updates []TicketTypeChange
	deletes []uuid.UUID
}

// planTicketTypeChanges diffs the requested ticket types against the
// existing IDs.  Requested entries with a nil ID become creates,
// entries matching an existing ID become updates, and existing IDs
// absent from the request become deletes.  An entry referencing an
// ID the event does not have fails with ErrTicketTypeNotFound.
func planTicketTypeChanges(existing []uuid.UUID, requested []TicketTypeChange) (typePlan, error) {
	known := make(map[uuid.UUID]bool, len(existing))
	for _, id := range existing {
		known[id] = true
	}

	var plan typePlan
	kept := make(map[uuid.UUID]bool, len(requested))
	for _, req := range requested {
		switch {
		case req.ID == nil:
			plan.creates = append(plan.creates, req)
		case known[*req.ID]:
			plan.updates = append(plan.updates, req)
			kept[*req.ID] = true
		default:
			return typePlan{}, ErrTicketTypeNotFound
		}
	}
	for _, id := range existing {
		if !kept[id] {
			plan.deletes = append(plan.deletes, id)
		}
	}
	return plan, nil
}
