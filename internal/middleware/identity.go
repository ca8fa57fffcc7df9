package middleware

// identity.go defines helper functions shared across middleware files.
// It provides a userID extraction function used by the rate limiter and
// the cache to build per-user keys.  The value was stored by JWTAuth;
// when no user is authenticated, "guest" is returned.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// userID extracts a user identifier from the request context.  It
// returns "guest" when no user is authenticated.
func userID(c echo.Context) string {
	v := c.Get("user_id")
	if v == nil {
		return "guest"
	}
	switch id := v.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return fmt.Sprintf("%.0f", id)
	case uint64:
		return fmt.Sprintf("%d", id)
	}
	return "guest"
}
