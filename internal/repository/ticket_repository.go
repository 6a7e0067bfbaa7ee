package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
)

// TicketRepo provides the display reads over issued tickets.  These
// queries take no locks; listing a wallet may lag a concurrent
// purchase without harm.  The write path lives in BookingStore.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// TicketDetail is a ticket joined with its type and event for
// display to the purchaser.
type TicketDetail struct {
	ID             uuid.UUID `json:"id"`
	Status         string    `json:"status"`
	TicketTypeID   uuid.UUID `json:"ticket_type_id"`
	TicketTypeName string    `json:"ticket_type_name"`
	PriceCents     int64     `json:"price_cents"`
	EventID        uuid.UUID `json:"event_id"`
	EventName      string    `json:"event_name"`
	Venue          string    `json:"venue"`
	StartsAt       string    `json:"starts_at"`
	PurchasedAt    string    `json:"purchased_at"`
}

const ticketDetailQuery = `SELECT t.id, t.status,
		tt.id, tt.name, tt.price_cents,
		e.id, e.name, e.venue,
		DATE_FORMAT(e.starts_at, '%Y-%m-%dT%TZ'),
		DATE_FORMAT(t.created_at, '%Y-%m-%dT%TZ')
	FROM tickets t
	JOIN ticket_types tt ON tt.id = t.ticket_type_id
	JOIN events e ON e.id = tt.event_id`

func scanTicketDetail(row interface {
	Scan(dest ...interface{}) error
}) (TicketDetail, error) {
	var d TicketDetail
	err := row.Scan(&d.ID, &d.Status,
		&d.TicketTypeID, &d.TicketTypeName, &d.PriceCents,
		&d.EventID, &d.EventName, &d.Venue, &d.StartsAt, &d.PurchasedAt)
	return d, err
}

// ListForUser returns a page of the user's tickets, newest first,
// with the total count for pagination.
func (r *TicketRepo) ListForUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]TicketDetail, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE purchaser_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		ticketDetailQuery+` WHERE t.purchaser_id = ?
		ORDER BY t.created_at DESC, t.id LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	out := make([]TicketDetail, 0, pageSize)
	for rows.Next() {
		d, err := scanTicketDetail(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// GetForUser returns one ticket with its type and event details,
// enforcing ownership.  Returns ErrTicketNotFound when the ticket
// does not exist or belongs to a different purchaser.
func (r *TicketRepo) GetForUser(ctx context.Context, ticketID, userID uuid.UUID) (*TicketDetail, error) {
	row := r.db.QueryRowContext(ctx,
		ticketDetailQuery+` WHERE t.id = ? AND t.purchaser_id = ?`, ticketID, userID)
	d, err := scanTicketDetail(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &d, nil
}
