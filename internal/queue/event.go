// Package queue defines the message payloads exchanged over the
// broker and the publisher/consumer pair that moves them.
package queue

const (
	// PurchasedQueue carries one message per issued ticket.
	PurchasedQueue = "ticket.purchased"
	// ValidatedQueue carries one message per validation attempt,
	// accepted or rejected.
	ValidatedQueue = "ticket.validated"
)

// TicketPurchasedEvent is published after a ticket has been committed.
// It carries enough context for downstream consumers to log or notify
// without querying the primary database.
type TicketPurchasedEvent struct {
	TicketID     string `json:"ticket_id"`
	TicketTypeID string `json:"ticket_type_id"`
	EventID      string `json:"event_id"`
	EventName    string `json:"event_name"`
	PurchaserID  string `json:"purchaser_id"`
	PriceCents   int64  `json:"price_cents"`
	PurchasedAt  string `json:"purchased_at"`
}

// TicketValidatedEvent is published for every validation attempt.
// Status mirrors the stored validation record, so rejected duplicate
// scans show up here too.
type TicketValidatedEvent struct {
	ValidationID string `json:"validation_id"`
	TicketID     string `json:"ticket_id"`
	Method       string `json:"method"`
	Status       string `json:"status"`
	ValidatedAt  string `json:"validated_at"`
}
