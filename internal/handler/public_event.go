package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ritik/event-backend/internal/repository"
)

// PublicEventHandler serves the unauthenticated browse surface.  Only
// PUBLISHED events are visible here.
type PublicEventHandler struct {
	Events *repository.EventRepo
}

func NewPublicEventHandler(e *repository.EventRepo) *PublicEventHandler {
	return &PublicEventHandler{Events: e}
}

// List returns published events, soonest first.  A non-empty q query
// parameter filters by name or venue, case-insensitively.
func (h *PublicEventHandler) List(c echo.Context) error {
	page, pageSize := pageParams(c)
	query := strings.TrimSpace(c.QueryParam("q"))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, total, err := h.Events.SearchPublished(ctx, query, page, pageSize)
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

// Get returns one published event with its ticket types.  Drafts and
// unknown IDs both report not found.
func (h *PublicEventHandler) Get(c echo.Context) error {
	eventID, ok := pathUUID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, types, err := h.Events.GetPublished(ctx, eventID)
	if err != nil {
		if err == repository.ErrEventNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load event failed"})
	}
	return c.JSON(http.StatusOK, toEventResp(ev, types))
}
