package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func mustTime() time.Time {
	return time.Date(2026, 10, 1, 20, 0, 0, 0, time.UTC)
}

func testContext(target string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestCurrentUserID(t *testing.T) {
	c := testContext("/")
	assert.Equal(t, uuid.Nil, currentUserID(c))

	c.Set("user_id", "garbage")
	assert.Equal(t, uuid.Nil, currentUserID(c))

	id := uuid.New()
	c.Set("user_id", id.String())
	assert.Equal(t, id, currentUserID(c))
}

func TestPathUUID(t *testing.T) {
	c := testContext("/")
	c.SetParamNames("id")
	c.SetParamValues("nope")
	_, ok := pathUUID(c, "id")
	assert.False(t, ok)

	id := uuid.New()
	c.SetParamValues(id.String())
	got, ok := pathUUID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, id, got)
}

func TestPageParams(t *testing.T) {
	page, size := pageParams(testContext("/"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = pageParams(testContext("/?page=3&page_size=50"))
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, size)

	page, size = pageParams(testContext("/?page=-1&page_size=9999"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 100, size)
}

func TestValidateEventReq(t *testing.T) {
	base := func() eventReq {
		return eventReq{Name: "Show", Venue: "Hall", StartsAt: mustTime()}
	}

	req := base()
	assert.Empty(t, validateEventReq(&req))
	assert.Equal(t, "DRAFT", req.Status)

	req = base()
	req.Name = "  "
	assert.Equal(t, "name required", validateEventReq(&req))

	req = base()
	req.Status = "published"
	assert.Empty(t, validateEventReq(&req))
	assert.Equal(t, "PUBLISHED", req.Status)

	req = base()
	req.Status = "ALMOST"
	assert.Equal(t, "invalid status", validateEventReq(&req))

	req = base()
	req.TicketTypes = []ticketTypeReq{{Name: "GA", PriceCents: -1}}
	assert.Equal(t, "ticket type price must be non-negative", validateEventReq(&req))
}
