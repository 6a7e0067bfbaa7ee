package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/ritik/event-backend/internal/model"
)

// QrCodeRepo provides display reads over issued QR codes.  Issuance
// and token resolution live in BookingStore, behind the booking
// package's TokenStore interface.
type QrCodeRepo struct {
	db *sql.DB
}

// NewQrCodeRepo returns a new QrCodeRepo bound to the given database.
func NewQrCodeRepo(db *sql.DB) *QrCodeRepo { return &QrCodeRepo{db: db} }

// ActiveForUserTicket returns the active code for a ticket, enforcing
// that the caller is the purchaser it was issued to.  Returns
// ErrQrCodeNotFound when the ticket has no active code, which the
// handler treats as a signal to re-issue one.
func (r *QrCodeRepo) ActiveForUserTicket(ctx context.Context, ticketID, userID uuid.UUID) (*model.QrCode, error) {
	var code model.QrCode
	err := r.db.QueryRowContext(ctx,
		`SELECT token, ticket_id, purchaser_id, status, created_at
		 FROM qr_codes WHERE ticket_id = ? AND purchaser_id = ? AND status = ? LIMIT 1`,
		ticketID, userID, model.QrCodeActive).
		Scan(&code.Token, &code.TicketID, &code.PurchaserID, &code.Status, &code.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrQrCodeNotFound
		}
		return nil, err
	}
	return &code, nil
}
