package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/ritik/event-backend/internal/booking"
	"github.com/ritik/event-backend/internal/model"
	"github.com/ritik/event-backend/internal/queue"
	"github.com/ritik/event-backend/internal/repository"
)

// TicketHandler covers the attendee ticket surface: purchase, wallet
// reads and QR code retrieval.
type TicketHandler struct {
	Reservations *booking.ReservationManager
	Tokens       *booking.TokenService
	Events       *repository.EventRepo
	Tickets      *repository.TicketRepo
	QrCodes      *repository.QrCodeRepo
}

func NewTicketHandler(rm *booking.ReservationManager, ts *booking.TokenService,
	e *repository.EventRepo, t *repository.TicketRepo, q *repository.QrCodeRepo) *TicketHandler {
	return &TicketHandler{Reservations: rm, Tokens: ts, Events: e, Tickets: t, QrCodes: q}
}

type qrCodeResp struct {
	Token    uuid.UUID `json:"token"`
	TicketID uuid.UUID `json:"ticket_id"`
	Status   string    `json:"status"`
}

type purchaseResp struct {
	Ticket *repository.TicketDetail `json:"ticket"`
	QrCode *qrCodeResp              `json:"qr_code,omitempty"`
}

// Purchase buys one ticket of the given type.  Capacity is enforced
// by the reservation manager; a full type reports a conflict.  When
// QR issuance fails the purchase still stands and the response omits
// the code, which /tickets/:id/qr-code regenerates on demand.
func (h *TicketHandler) Purchase(c echo.Context) error {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathUUID(c, "event_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	typeID, ok := pathUUID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket type id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	ev, types, err := h.Events.GetPublished(ctx, eventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	var ticketType *model.TicketType
	for i := range types {
		if types[i].ID == typeID {
			ticketType = &types[i]
			break
		}
	}
	if ticketType == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
	}
	now := time.Now().UTC()
	if ev.SalesStart != nil && now.Before(*ev.SalesStart) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "sales not open yet"})
	}
	if ev.SalesEnd != nil && now.After(*ev.SalesEnd) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "sales closed"})
	}

	ticket, err := h.Reservations.Reserve(ctx, userID, typeID)
	if err != nil && !errors.Is(err, booking.ErrTokenIssuance) {
		switch {
		case errors.Is(err, booking.ErrSoldOut):
			return c.JSON(http.StatusConflict, echo.Map{"error": "sold out"})
		case errors.Is(err, booking.ErrTicketTypeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket type not found"})
		case errors.Is(err, booking.ErrAccountNotFound):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "account inactive"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "purchase failed"})
	}
	tokenFailed := err != nil

	detail, derr := h.Tickets.GetForUser(ctx, ticket.ID, userID)
	if derr != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ticket failed"})
	}

	resp := purchaseResp{Ticket: detail}
	if !tokenFailed {
		if code, err := h.QrCodes.ActiveForUserTicket(ctx, ticket.ID, userID); err == nil {
			resp.QrCode = &qrCodeResp{Token: code.Token, TicketID: code.TicketID, Status: code.Status}
		}
	} else {
		logrus.WithField("ticket_id", ticket.ID).Warn("qr issuance failed, purchase kept")
	}

	// Best effort, a broker outage must not fail the purchase.
	_ = queue.PublishTicketPurchased(ctx, queue.TicketPurchasedEvent{
		TicketID:     ticket.ID.String(),
		TicketTypeID: typeID.String(),
		EventID:      ev.ID.String(),
		EventName:    ev.Name,
		PurchaserID:  userID.String(),
		PriceCents:   ticketType.PriceCents,
		PurchasedAt:  ticket.CreatedAt.Format(time.RFC3339),
	})

	return c.JSON(http.StatusCreated, resp)
}

// List returns the caller's tickets, newest first.
func (h *TicketHandler) List(c echo.Context) error {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	page, pageSize := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tickets, total, err := h.Tickets.ListForUser(ctx, userID, page, pageSize)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list tickets failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"items":     tickets,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// Get returns one of the caller's tickets.
func (h *TicketHandler) Get(c echo.Context) error {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, ok := pathUUID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	detail, err := h.Tickets.GetForUser(ctx, ticketID, userID)
	if err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ticket failed"})
	}
	return c.JSON(http.StatusOK, detail)
}

// QrCode returns the ticket's active QR token, issuing a fresh one
// when none exists.  This is the retry path for purchases whose
// initial issuance failed.
func (h *TicketHandler) QrCode(c echo.Context) error {
	userID := currentUserID(c)
	if userID == uuid.Nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ticketID, ok := pathUUID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Tickets.GetForUser(ctx, ticketID, userID); err != nil {
		if err == repository.ErrTicketNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load ticket failed"})
	}

	code, err := h.QrCodes.ActiveForUserTicket(ctx, ticketID, userID)
	if err == repository.ErrQrCodeNotFound {
		issued, ierr := h.Tokens.Issue(ctx, ticketID, userID)
		if ierr != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue qr code failed"})
		}
		return c.JSON(http.StatusOK, qrCodeResp{Token: issued.Token, TicketID: issued.TicketID, Status: issued.Status})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load qr code failed"})
	}
	return c.JSON(http.StatusOK, qrCodeResp{Token: code.Token, TicketID: code.TicketID, Status: code.Status})
}
