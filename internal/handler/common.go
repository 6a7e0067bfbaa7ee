// Package handler contains the HTTP endpoints.  Handlers bind and
// validate request bodies, call into repositories and the booking
// engines, and map domain errors to HTTP statuses.
package handler

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// currentUserID extracts the authenticated user ID set by the JWT
// middleware.  Returns uuid.Nil when the context carries no valid ID;
// callers on protected routes treat that as unauthorized.
func currentUserID(c echo.Context) uuid.UUID {
	raw, _ := c.Get("user_id").(string)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// pathUUID parses a route parameter as a UUID.
func pathUUID(c echo.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// pageParams reads page/page_size query parameters with defaults and
// clamps page_size to keep list responses bounded.
func pageParams(c echo.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.QueryParam("page_size"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
