package model

import (
	"time"

	"github.com/google/uuid"
)

// Event statuses as stored in events.status.  Only PUBLISHED events
// are visible to attendees; DRAFT events exist solely for their
// organizer.
const (
	EventDraft     = "DRAFT"
	EventPublished = "PUBLISHED"
	EventCancelled = "CANCELLED"
	EventCompleted = "COMPLETED"
)

// Event represents a ticketed event owned by a single organizer.
// Ticket types are children of the event and are loaded separately.
//
// Fields:
//  ID          – primary key identifier.
//  OrganizerID – user who created and manages the event.
//  Name        – display name of the event.
//  Venue       – where the event takes place.
//  StartsAt    – when the event begins.
//  EndsAt      – when the event ends (nullable for open-ended events).
//  SalesStart  – when ticket sales open (nullable).
//  SalesEnd    – when ticket sales close (nullable).
//  Status      – lifecycle state (DRAFT, PUBLISHED, CANCELLED, COMPLETED).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Event struct {
	ID          uuid.UUID  // events.id
	OrganizerID uuid.UUID  // events.organizer_id
	Name        string     // events.name
	Venue       string     // events.venue
	StartsAt    time.Time  // events.starts_at
	EndsAt      *time.Time // events.ends_at (nullable)
	SalesStart  *time.Time // events.sales_start (nullable)
	SalesEnd    *time.Time // events.sales_end (nullable)
	Status      string     // events.status
	CreatedAt   time.Time  // events.created_at
	UpdatedAt   time.Time  // events.updated_at
}

// TicketType is a purchasable category within an event with a fixed
// capacity and price.  The count of non-cancelled tickets referencing
// a type must never exceed TotalAvailable; the reservation path
// enforces this under an exclusive per-type lock.
//
// Fields:
//  ID             – primary key identifier.
//  EventID        – parent event.
//  Name           – display name (e.g. "General Admission").
//  Description    – free-form description.
//  PriceCents     – price in cents.
//  TotalAvailable – capacity of this type; non-negative.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type TicketType struct {
	ID             uuid.UUID // ticket_types.id
	EventID        uuid.UUID // ticket_types.event_id
	Name           string    // ticket_types.name
	Description    string    // ticket_types.description
	PriceCents     int64     // ticket_types.price_cents
	TotalAvailable int       // ticket_types.total_available
	CreatedAt      time.Time // ticket_types.created_at
	UpdatedAt      time.Time // ticket_types.updated_at
}
