package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ritik/event-backend/internal/model"
	"github.com/ritik/event-backend/internal/repository"
)

// OrganizerEventHandler exposes event management to organizers.  All
// operations are scoped to the authenticated organizer; touching
// another organizer's event reports not found rather than forbidden.
type OrganizerEventHandler struct {
	Events *repository.EventRepo
}

func NewOrganizerEventHandler(e *repository.EventRepo) *OrganizerEventHandler {
	return &OrganizerEventHandler{Events: e}
}

// ----- DTOs -----

type ticketTypeReq struct {
	ID             *uuid.UUID `json:"id,omitempty"` // nil means create
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	PriceCents     int64      `json:"price_cents"`
	TotalAvailable int        `json:"total_available"`
}

type eventReq struct {
	Name        string          `json:"name"`
	Venue       string          `json:"venue"`
	StartsAt    time.Time       `json:"starts_at"`
	EndsAt      *time.Time      `json:"ends_at,omitempty"`
	SalesStart  *time.Time      `json:"sales_start,omitempty"`
	SalesEnd    *time.Time      `json:"sales_end,omitempty"`
	Status      string          `json:"status"`
	TicketTypes []ticketTypeReq `json:"ticket_types"`
}

type ticketTypeResp struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	PriceCents     int64     `json:"price_cents"`
	TotalAvailable int       `json:"total_available"`
}

type eventResp struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Venue       string           `json:"venue"`
	StartsAt    time.Time        `json:"starts_at"`
	EndsAt      *time.Time       `json:"ends_at,omitempty"`
	SalesStart  *time.Time       `json:"sales_start,omitempty"`
	SalesEnd    *time.Time       `json:"sales_end,omitempty"`
	Status      string           `json:"status"`
	TicketTypes []ticketTypeResp `json:"ticket_types,omitempty"`
}

func toEventResp(ev *model.Event, types []model.TicketType) eventResp {
	resp := eventResp{
		ID:         ev.ID,
		Name:       ev.Name,
		Venue:      ev.Venue,
		StartsAt:   ev.StartsAt,
		EndsAt:     ev.EndsAt,
		SalesStart: ev.SalesStart,
		SalesEnd:   ev.SalesEnd,
		Status:     ev.Status,
	}
	for _, t := range types {
		resp.TicketTypes = append(resp.TicketTypes, ticketTypeResp{
			ID:             t.ID,
			Name:           t.Name,
			Description:    t.Description,
			PriceCents:     t.PriceCents,
			TotalAvailable: t.TotalAvailable,
		})
	}
	return resp
}

func validateEventReq(req *eventReq) string {
	req.Name = strings.TrimSpace(req.Name)
	req.Venue = strings.TrimSpace(req.Venue)
	if req.Name == "" {
		return "name required"
	}
	if req.Venue == "" {
		return "venue required"
	}
	if req.StartsAt.IsZero() {
		return "starts_at required"
	}
	req.Status = strings.ToUpper(strings.TrimSpace(req.Status))
	switch req.Status {
	case "":
		req.Status = model.EventDraft
	case model.EventDraft, model.EventPublished, model.EventCancelled, model.EventCompleted:
	default:
		return "invalid status"
	}
	for i := range req.TicketTypes {
		tt := &req.TicketTypes[i]
		tt.Name = strings.TrimSpace(tt.Name)
		if tt.Name == "" {
			return "ticket type name required"
		}
		if tt.PriceCents < 0 {
			return "ticket type price must be non-negative"
		}
		if tt.TotalAvailable < 0 {
			return "ticket type capacity must be non-negative"
		}
	}
	return ""
}

// Create inserts a new event with its ticket types.
func (h *OrganizerEventHandler) Create(c echo.Context) error {
	organizerID := currentUserID(c)
	if organizerID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validateEventReq(&req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ev := model.Event{
		ID:          uuid.New(),
		OrganizerID: organizerID,
		Name:        req.Name,
		Venue:       req.Venue,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt,
		SalesStart:  req.SalesStart,
		SalesEnd:    req.SalesEnd,
		Status:      req.Status,
	}
	types := make([]model.TicketType, 0, len(req.TicketTypes))
	for _, tt := range req.TicketTypes {
		types = append(types, model.TicketType{
			ID:             uuid.New(),
			EventID:        ev.ID,
			Name:           tt.Name,
			Description:    tt.Description,
			PriceCents:     tt.PriceCents,
			TotalAvailable: tt.TotalAvailable,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.CreateWithTicketTypes(ctx, &ev, types); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create event failed"})
	}
	return c.JSON(http.StatusCreated, toEventResp(&ev, types))
}

// List returns the organizer's own events, paginated.
func (h *OrganizerEventHandler) List(c echo.Context) error {
	organizerID := currentUserID(c)
	if organizerID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, pageSize := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, total, err := h.Events.ListForOrganizer(ctx, organizerID, page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list events failed"})
	}
	items := make([]eventResp, 0, len(events))
	for i := range events {
		items = append(items, toEventResp(&events[i], nil))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Get returns one of the organizer's events with its ticket types.
func (h *OrganizerEventHandler) Get(c echo.Context) error {
	organizerID := currentUserID(c)
	if organizerID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathUUID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, types, err := h.Events.GetForOrganizer(ctx, eventID, organizerID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	return c.JSON(http.StatusOK, toEventResp(ev, types))
}

// Update replaces an event's fields and reconciles its ticket types:
// entries without an id are created, entries with a known id are
// updated, and existing types missing from the request are deleted.
func (h *OrganizerEventHandler) Update(c echo.Context) error {
	organizerID := currentUserID(c)
	if organizerID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathUUID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := validateEventReq(&req); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	ev := model.Event{
		ID:          eventID,
		OrganizerID: organizerID,
		Name:        req.Name,
		Venue:       req.Venue,
		StartsAt:    req.StartsAt.UTC(),
		EndsAt:      req.EndsAt,
		SalesStart:  req.SalesStart,
		SalesEnd:    req.SalesEnd,
		Status:      req.Status,
	}
	changes := make([]repository.TicketTypeChange, 0, len(req.TicketTypes))
	for _, tt := range req.TicketTypes {
		changes = append(changes, repository.TicketTypeChange{
			ID:             tt.ID,
			Name:           tt.Name,
			Description:    tt.Description,
			PriceCents:     tt.PriceCents,
			TotalAvailable: tt.TotalAvailable,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.UpdateForOrganizer(ctx, &ev, changes); err != nil {
		switch err {
		case repository.ErrEventNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case repository.ErrTicketTypeNotFound:
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown ticket type id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update event failed"})
	}

	updated, types, err := h.Events.GetForOrganizer(ctx, eventID, organizerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	return c.JSON(http.StatusOK, toEventResp(updated, types))
}

// Delete removes an event and its ticket types.  Deleting an event
// whose types have sold tickets violates the tickets foreign key and
// is reported as a conflict.
func (h *OrganizerEventHandler) Delete(c echo.Context) error {
	organizerID := currentUserID(c)
	if organizerID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathUUID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.DeleteForOrganizer(ctx, eventID, organizerID); err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		// MySQL error 1451 = row referenced by a foreign key.
		if strings.Contains(err.Error(), "1451") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "event has sold tickets"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete event failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
