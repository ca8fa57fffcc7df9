package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-reservation/internal/handler"
	"github.com/iliyamo/desk-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  The health check serves load balancers,
// and the floor layout is public so the booking page can render the desk
// map before login.  The layout route takes the Redis response cache
// middleware when one is configured.
func RegisterRoutes(e *echo.Echo, d *handler.DeskHandler, cacheMW echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)
	if cacheMW != nil {
		e.GET("/v1/desks/layout", d.Layout, cacheMW)
	} else {
		e.GET("/v1/desks/layout", d.Layout)
	}
}

// RegisterAuth registers all authentication-related routes and applies
// the necessary middleware.  Unauthenticated operations live under
// /v1/auth, while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout does not require JWT authentication; the handler accepts a
	// refresh token in the body or a bearer token in the header.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("EMPLOYEE", "ADMIN"))
	auth.GET("/me", a.Me)

	// Clients can call either /v1/auth/logout or /v1/logout.
	e.POST("/v1/logout", a.Logout)
}
