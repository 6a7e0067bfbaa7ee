// Package router maps HTTP routes to handlers and applies the
// authentication and role middleware per group.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/ritik/event-backend/internal/handler"
	"github.com/ritik/event-backend/internal/middleware"
	"github.com/ritik/event-backend/internal/model"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth        *handler.AuthHandler
	Health      *handler.HealthHandler
	Organizer   *handler.OrganizerEventHandler
	Public      *handler.PublicEventHandler
	Tickets     *handler.TicketHandler
	Validations *handler.ValidationHandler
}

// Register mounts all routes.  Public browse and auth endpoints take
// no JWT; everything else is grouped by the role it requires.  The
// cache middleware applies only to the unauthenticated browse routes,
// keyed responses must never cross user boundaries.
func Register(e *echo.Echo, h Handlers, jwtSecret string, cache echo.MiddlewareFunc) {
	e.GET("/healthz", h.Health.Check)

	// Session endpoints.  Logout stays outside the JWT middleware so a
	// client holding only a refresh token can still end its session.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/refresh-access", h.Auth.RefreshAccess)
	auth.POST("/logout", h.Auth.Logout)

	// Unauthenticated browse over published events.
	e.GET("/v1/events", h.Public.List, cache)
	e.GET("/v1/events/:id", h.Public.Get, cache)

	me := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	me.GET("/me", h.Auth.Me)

	// Organizer event management.
	org := e.Group("/v1/organizer", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOrganizer))
	org.POST("/events", h.Organizer.Create)
	org.GET("/events", h.Organizer.List)
	org.GET("/events/:id", h.Organizer.Get)
	org.PUT("/events/:id", h.Organizer.Update)
	org.DELETE("/events/:id", h.Organizer.Delete)

	// Attendee purchase and wallet.
	att := e.Group("/v1", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAttendee))
	att.POST("/events/:event_id/ticket-types/:id/tickets", h.Tickets.Purchase)
	att.GET("/tickets", h.Tickets.List)
	att.GET("/tickets/:id", h.Tickets.Get)
	att.GET("/tickets/:id/qr-code", h.Tickets.QrCode)

	// Admission checks at the door.
	staff := e.Group("/v1", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleStaff))
	staff.POST("/ticket-validations", h.Validations.Validate)
}
