package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-reservation/internal/availability"
	"github.com/iliyamo/desk-reservation/internal/repository"
	"github.com/iliyamo/desk-reservation/internal/reservation"
)

// getUserID extracts the authenticated user's id from the context.  The
// JWT middleware stores the raw claim, which the JSON decoder delivers
// as float64.
func getUserID(c echo.Context) (uint64, bool) {
	switch v := c.Get("user_id").(type) {
	case float64:
		return uint64(v), true
	case uint64:
		return v, true
	case string:
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

// getUserName extracts the authenticated user's display name.
func getUserName(c echo.Context) string {
	if s, ok := c.Get("user_name").(string); ok {
		return s
	}
	return ""
}

// isAdmin reports whether the authenticated user carries the ADMIN role.
func isAdmin(c echo.Context) bool {
	role, _ := c.Get("role").(string)
	return role == "ADMIN"
}

// writeError maps domain errors onto HTTP responses.  Conflict errors
// carry user-facing messages naming the current occupant, so the message
// is passed through verbatim for the UI to display.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, reservation.ErrDeskNotFound), errors.Is(err, reservation.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrConflict), reservation.IsConflict(err):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case availability.IsValidation(err):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		c.Logger().Errorf("internal error: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}

// rangeFromQuery parses the requested time window from query parameters.
func rangeFromQuery(c echo.Context) (availability.TimeRange, error) {
	return availability.ParseRange(
		c.QueryParam("from_date"), c.QueryParam("from_time"),
		c.QueryParam("to_date"), c.QueryParam("to_time"),
	)
}
