package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ritik/event-backend/internal/booking"
	"github.com/ritik/event-backend/internal/model"
	"github.com/ritik/event-backend/internal/queue"
)

// ValidationHandler exposes door-scan and manual admission checks to
// staff.  Every attempt is recorded; only the first one per ticket
// comes back VALID.
type ValidationHandler struct {
	Engine *booking.ValidationEngine
}

func NewValidationHandler(e *booking.ValidationEngine) *ValidationHandler {
	return &ValidationHandler{Engine: e}
}

type validateReq struct {
	// ID is a ticket ID for MANUAL, or a QR token for QR_SCAN.
	ID     string `json:"id"`
	Method string `json:"method"`
}

type validateResp struct {
	ValidationID uuid.UUID `json:"validation_id"`
	TicketID     uuid.UUID `json:"ticket_id"`
	Method       string    `json:"method"`
	Status       string    `json:"status"`
	ValidatedAt  time.Time `json:"validated_at"`
}

// Validate records one admission attempt and reports whether it
// admits.  A rejected duplicate is not an HTTP error; the attempt was
// processed and its outcome is INVALID.
func (h *ValidationHandler) Validate(c echo.Context) error {
	var req validateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	id, err := uuid.Parse(strings.TrimSpace(req.ID))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var record *model.TicketValidation
	switch strings.ToUpper(strings.TrimSpace(req.Method)) {
	case model.MethodManual:
		record, err = h.Engine.ValidateManual(ctx, id)
	case model.MethodQrScan:
		record, err = h.Engine.ValidateScan(ctx, id)
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "method must be MANUAL or QR_SCAN"})
	}
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrTicketNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
		case errors.Is(err, booking.ErrTokenNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "qr code not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "validation failed"})
	}

	// Best effort audit trail.
	_ = queue.PublishTicketValidated(ctx, queue.TicketValidatedEvent{
		ValidationID: record.ID.String(),
		TicketID:     record.TicketID.String(),
		Method:       record.Method,
		Status:       record.Status,
		ValidatedAt:  record.ValidatedAt.Format(time.RFC3339),
	})

	return c.JSON(http.StatusOK, validateResp{
		ValidationID: record.ID,
		TicketID:     record.TicketID,
		Method:       record.Method,
		Status:       record.Status,
		ValidatedAt:  record.ValidatedAt,
	})
}
