package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-reservation/internal/handler"
	"github.com/iliyamo/desk-reservation/internal/middleware"
)

// RegisterDesks registers the reservation endpoints under /v1.  All
// routes require a valid JWT; both roles may browse desks, place and
// release holds, confirm bookings, follow the event streams and manage
// their own bookings.
func RegisterDesks(e *echo.Echo, d *handler.DeskHandler, ho *handler.HoldHandler, b *handler.BookingHandler, s *handler.StreamHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("EMPLOYEE", "ADMIN"),
	)

	// ---- Desks ----
	g.GET("/desks", d.List)

	// ---- Holds ----
	g.POST("/desks/:id/hold", ho.Create)
	g.DELETE("/desks/:id/hold", ho.Release)

	// ---- Bookings ----
	g.POST("/bookings", b.Create)
	g.GET("/my-bookings", b.Mine)
	g.DELETE("/bookings/:id", b.Cancel)

	// ---- Event streams ----
	g.GET("/stream/desks", s.Desks)
	g.GET("/stream/bookings", s.Bookings)
}

// RegisterAdmin registers ADMIN-scoped endpoints under /v1/admin.  All
// routes require a valid JWT and the ADMIN role.  Admins see every
// booking and edit the desk map.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)

	g.GET("/bookings", a.Bookings)

	// ---- Desk map ----
	g.POST("/desks", a.CreateDesk)
	g.PUT("/desks/:id", a.UpdateDesk)
	g.PATCH("/desks/:id", a.UpdateDesk) // alias for clients that use PATCH
	g.DELETE("/desks/:id", a.DeleteDesk)
}
