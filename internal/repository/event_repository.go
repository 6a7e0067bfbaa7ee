package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/ritik/event-backend/internal/model"
)

// EventRepo provides CRUD operations for events and their child
// ticket types.  Events are owned by a single organizer; public
// reads are restricted to PUBLISHED events.  All timestamps are
// stored in UTC.
type EventRepo struct {
	db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions
// spanning multiple repositories.
func (r *EventRepo) DB() *sql.DB { return r.db }

const eventColumns = `id, organizer_id, name, venue, starts_at, ends_at, sales_start, sales_end, status, created_at, updated_at`

func scanEvent(row interface {
	Scan(dest ...interface{}) error
}) (model.Event, error) {
	var (
		ev                         model.Event
		endsAt, salesFrom, salesTo sql.NullTime
	)
	err := row.Scan(&ev.ID, &ev.OrganizerID, &ev.Name, &ev.Venue, &ev.StartsAt,
		&endsAt, &salesFrom, &salesTo, &ev.Status, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return model.Event{}, err
	}
	if endsAt.Valid {
		t := endsAt.Time
		ev.EndsAt = &t
	}
	if salesFrom.Valid {
		t := salesFrom.Time
		ev.SalesStart = &t
	}
	if salesTo.Valid {
		t := salesTo.Time
		ev.SalesEnd = &t
	}
	return ev, nil
}

// CreateWithTicketTypes inserts an event together with its child
// ticket types in a single transaction.  IDs must be assigned by the
// caller before the call.
func (r *EventRepo) CreateWithTicketTypes(ctx context.Context, ev *model.Event, types []model.TicketType) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO events (id, organizer_id, name, venue, starts_at, ends_at, sales_start, sales_end, status)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		ev.ID, ev.OrganizerID, ev.Name, ev.Venue, ev.StartsAt, ev.EndsAt, ev.SalesStart, ev.SalesEnd, ev.Status)
	if err != nil {
		return err
	}
	if err := insertTicketTypesTx(ctx, tx, types); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// insertTicketTypesTx bulk-inserts ticket type rows in one statement.
// Passing an empty slice has no effect and returns nil.
func insertTicketTypesTx(ctx context.Context, tx *sql.Tx, types []model.TicketType) error {
	if len(types) == 0 {
		return nil
	}
	query := `INSERT INTO ticket_types (id, event_id, name, description, price_cents, total_available) VALUES `
	args := make([]interface{}, 0, len(types)*6)
	for i, t := range types {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?)"
		args = append(args, t.ID, t.EventID, t.Name, t.Description, t.PriceCents, t.TotalAvailable)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// TicketTypes returns all ticket types of an event ordered by name.
func (r *EventRepo) TicketTypes(ctx context.Context, eventID uuid.UUID) ([]model.TicketType, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, event_id, name, description, price_cents, total_available, created_at, updated_at
		 FROM ticket_types WHERE event_id = ? ORDER BY name, id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TicketType, 0)
	for rows.Next() {
		var t model.TicketType
		if err := rows.Scan(&t.ID, &t.EventID, &t.Name, &t.Description,
			&t.PriceCents, &t.TotalAvailable, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetForOrganizer returns one event with its ticket types, enforcing
// ownership.  Returns ErrEventNotFound when the event does not exist
// or belongs to a different organizer.
func (r *EventRepo) GetForOrganizer(ctx context.Context, eventID, organizerID uuid.UUID) (*model.Event, []model.TicketType, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ? AND organizer_id = ?`,
		eventID, organizerID)
	ev, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, err
	}
	types, err := r.TicketTypes(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return &ev, types, nil
}

// ListForOrganizer returns a page of the organizer's events ordered
// newest first, along with the total count for pagination.
func (r *EventRepo) ListForOrganizer(ctx context.Context, organizerID uuid.UUID, page, pageSize int) ([]model.Event, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE organizer_id = ?`, organizerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE organizer_id = ?
		 ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		organizerID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]model.Event, 0, pageSize)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, ev)
	}
	return events, total, rows.Err()
}

// UpdateForOrganizer updates an event's own fields and reconciles
// its ticket types against the request in one transaction: types
// without an ID are created, types with a known ID are updated, and
// existing types absent from the request are deleted.  A request
// referencing an unknown type ID fails with ErrTicketTypeNotFound.
// Returns ErrEventNotFound when the event does not exist or belongs
// to a different organizer.
func (r *EventRepo) UpdateForOrganizer(ctx context.Context, ev *model.Event, changes []TicketTypeChange) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE events SET name=?, venue=?, starts_at=?, ends_at=?, sales_start=?, sales_end=?, status=?
		 WHERE id = ? AND organizer_id = ?`,
		ev.Name, ev.Venue, ev.StartsAt, ev.EndsAt, ev.SalesStart, ev.SalesEnd, ev.Status,
		ev.ID, ev.OrganizerID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		// Either missing or not ours; an unchanged row also reports 0,
		// so re-check existence before failing.
		var one int
		err := tx.QueryRowContext(ctx,
			`SELECT 1 FROM events WHERE id = ? AND organizer_id = ?`, ev.ID, ev.OrganizerID).Scan(&one)
		if err == sql.ErrNoRows {
			return ErrEventNotFound
		}
		if err != nil {
			return err
		}
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM ticket_types WHERE event_id = ?`, ev.ID)
	if err != nil {
		return err
	}
	existing := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		existing = append(existing, id)
	}
	if err := rows.Close(); err != nil {
		return err
	}

	plan, err := planTicketTypeChanges(existing, changes)
	if err != nil {
		return err
	}

	for _, id := range plan.deletes {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM ticket_types WHERE id = ? AND event_id = ?`, id, ev.ID); err != nil {
			return err
		}
	}
	for _, u := range plan.updates {
		if _, err := tx.ExecContext(ctx,
			`UPDATE ticket_types SET name=?, description=?, price_cents=?, total_available=?
			 WHERE id = ? AND event_id = ?`,
			u.Name, u.Description, u.PriceCents, u.TotalAvailable, *u.ID, ev.ID); err != nil {
			return err
		}
	}
	creates := make([]model.TicketType, 0, len(plan.creates))
	for _, c := range plan.creates {
		creates = append(creates, model.TicketType{
			ID:             uuid.New(),
			EventID:        ev.ID,
			Name:           c.Name,
			Description:    c.Description,
			PriceCents:     c.PriceCents,
			TotalAvailable: c.TotalAvailable,
		})
	}
	if err := insertTicketTypesTx(ctx, tx, creates); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeleteForOrganizer removes an event and its ticket types.  Returns
// ErrEventNotFound when the event does not exist or belongs to a
// different organizer.  Tickets already sold keep their rows; the
// foreign key on tickets restricts deleting a type with sales, which
// surfaces as a driver error the handler maps to a conflict.
func (r *EventRepo) DeleteForOrganizer(ctx context.Context, eventID, organizerID uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM events WHERE id = ? AND organizer_id = ?`, eventID, organizerID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrEventNotFound
	}
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM ticket_types WHERE event_id = ?`, eventID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM events WHERE id = ?`, eventID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListPublished returns a page of PUBLISHED events for public
// browsing, soonest first.
func (r *EventRepo) ListPublished(ctx context.Context, page, pageSize int) ([]model.Event, int64, error) {
	return r.publishedPage(ctx, "", page, pageSize)
}

// SearchPublished returns PUBLISHED events whose name or venue
// matches the query, case-insensitively.
func (r *EventRepo) SearchPublished(ctx context.Context, query string, page, pageSize int) ([]model.Event, int64, error) {
	return r.publishedPage(ctx, query, page, pageSize)
}

func (r *EventRepo) publishedPage(ctx context.Context, query string, page, pageSize int) ([]model.Event, int64, error) {
	cond := `status = ?`
	args := []interface{}{model.EventPublished}
	if query != "" {
		cond += ` AND (LOWER(name) LIKE ? OR LOWER(venue) LIKE ?)`
		like := "%" + strings.ToLower(query) + "%"
		args = append(args, like, like)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	argsData := append(append([]interface{}{}, args...), pageSize, (page-1)*pageSize)
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE `+cond+`
		 ORDER BY starts_at ASC, id LIMIT ? OFFSET ?`, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]model.Event, 0, pageSize)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, ev)
	}
	return events, total, rows.Err()
}

// GetPublished returns a PUBLISHED event with its ticket types for
// public display.  Returns ErrEventNotFound for drafts and unknown
// IDs alike so unpublished events stay invisible.
func (r *EventRepo) GetPublished(ctx context.Context, eventID uuid.UUID) (*model.Event, []model.TicketType, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ? AND status = ?`,
		eventID, model.EventPublished)
	ev, err := scanEvent(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, ErrEventNotFound
		}
		return nil, nil, err
	}
	types, err := r.TicketTypes(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	return &ev, types, nil
}
