package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ritik/event-backend/internal/booking"
	"github.com/ritik/event-backend/internal/model"
)

// BookingStore implements the booking package's InventoryStore,
// AccountLookup and TokenStore over MySQL.  WithTx carries the
// transaction in the context so the engine's store calls join it
// without threading *sql.Tx through the interface.  The ticket-type
// row lock taken by TicketTypeForUpdate makes the engine's
// check-then-create atomic across service instances, not just
// within this process.
type BookingStore struct {
	db *sql.DB
}

// NewBookingStore returns a BookingStore bound to the given database.
func NewBookingStore(db *sql.DB) *BookingStore { return &BookingStore{db: db} }

type txKey struct{}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// WithTx runs fn inside a transaction.  Nested calls join the
// enclosing transaction.  fn returning an error rolls back.
func (s *BookingStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

func (s *BookingStore) q(ctx context.Context) querier {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return s.db
}

// TicketTypeForUpdate loads a ticket type.  Inside a transaction the
// row is locked with FOR UPDATE for the remainder of the
// transaction, serializing reservations of the same type.
func (s *BookingStore) TicketTypeForUpdate(ctx context.Context, id uuid.UUID) (*model.TicketType, error) {
	query := `SELECT id, event_id, name, description, price_cents, total_available, created_at, updated_at
		FROM ticket_types WHERE id = ?`
	if txFromContext(ctx) != nil {
		query += ` FOR UPDATE`
	}
	var t model.TicketType
	err := s.q(ctx).QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.EventID, &t.Name, &t.Description,
		&t.PriceCents, &t.TotalAvailable, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, booking.ErrTicketTypeNotFound
		}
		return nil, err
	}
	return &t, nil
}

// CountIssued counts the non-cancelled tickets of a type.  Cancelled
// tickets release their unit of capacity.
func (s *BookingStore) CountIssued(ctx context.Context, ticketTypeID uuid.UUID) (int, error) {
	var n int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tickets WHERE ticket_type_id = ? AND status <> ?`,
		ticketTypeID, model.TicketCancelled).Scan(&n)
	return n, err
}

// CreateTicket persists a new ticket row.
func (s *BookingStore) CreateTicket(ctx context.Context, t *model.Ticket) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO tickets (id, ticket_type_id, purchaser_id, status) VALUES (?,?,?,?)`,
		t.ID, t.TicketTypeID, t.PurchaserID, t.Status)
	return err
}

// GetTicket loads a ticket by identity.
func (s *BookingStore) GetTicket(ctx context.Context, id uuid.UUID) (*model.Ticket, error) {
	var t model.Ticket
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, ticket_type_id, purchaser_id, status, created_at, updated_at
		 FROM tickets WHERE id = ?`, id).Scan(
		&t.ID, &t.TicketTypeID, &t.PurchaserID, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, booking.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Validations returns a ticket's validation history in insertion
// order.  The id tie-break keeps ordering deterministic for records
// sharing a timestamp.
func (s *BookingStore) Validations(ctx context.Context, ticketID uuid.UUID) ([]model.TicketValidation, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, ticket_id, method, status, validated_at
		 FROM ticket_validations WHERE ticket_id = ? ORDER BY validated_at, id`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TicketValidation, 0)
	for rows.Next() {
		var v model.TicketValidation
		if err := rows.Scan(&v.ID, &v.TicketID, &v.Method, &v.Status, &v.ValidatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// AppendValidation appends one validation record.
func (s *BookingStore) AppendValidation(ctx context.Context, v *model.TicketValidation) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO ticket_validations (id, ticket_id, method, status, validated_at) VALUES (?,?,?,?,?)`,
		v.ID, v.TicketID, v.Method, v.Status, v.ValidatedAt)
	return err
}

// Exists reports whether an active user with the given ID exists.
func (s *BookingStore) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var one int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE id = ? AND is_active = 1`, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CreateCode persists a newly issued QR code.
func (s *BookingStore) CreateCode(ctx context.Context, code *model.QrCode) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO qr_codes (token, ticket_id, purchaser_id, status) VALUES (?,?,?,?)`,
		code.Token, code.TicketID, code.PurchaserID, code.Status)
	return err
}

// ActiveCode loads an ACTIVE code by token.
func (s *BookingStore) ActiveCode(ctx context.Context, token uuid.UUID) (*model.QrCode, error) {
	var code model.QrCode
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT token, ticket_id, purchaser_id, status, created_at
		 FROM qr_codes WHERE token = ? AND status = ? LIMIT 1`,
		token, model.QrCodeActive).Scan(
		&code.Token, &code.TicketID, &code.PurchaserID, &code.Status, &code.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, booking.ErrTokenNotFound
		}
		return nil, err
	}
	return &code, nil
}
