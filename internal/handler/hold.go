package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-reservation/internal/availability"
	"github.com/iliyamo/desk-reservation/internal/reservation"
)

// HoldHandler serves the hold lifecycle: a hold marks a desk as "being
// selected" while the user confirms their booking, and lapses on its own
// if they never do.
type HoldHandler struct {
	Coord *reservation.Coordinator
}

func NewHoldHandler(coord *reservation.Coordinator) *HoldHandler {
	return &HoldHandler{Coord: coord}
}

type holdReq struct {
	FromDate string `json:"from_date"`
	FromTime string `json:"from_time"`
	ToDate   string `json:"to_date"`
	ToTime   string `json:"to_time"`
}

// Create places a hold on the desk for the requested range.
// POST /v1/desks/:id/hold
func (h *HoldHandler) Create(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req holdReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	rng, err := availability.ParseRange(req.FromDate, req.FromTime, req.ToDate, req.ToTime)
	if err != nil {
		return writeError(c, err)
	}
	desk, err := h.Coord.CreateHold(c.Request().Context(), c.Param("id"), uid, getUserName(c), rng)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"desk": toHeldDeskView(desk)})
}

// Release clears the caller's hold on the desk.  The operation is
// idempotent: releasing a hold that is absent, expired or owned by
// someone else succeeds without effect.
// DELETE /v1/desks/:id/hold
func (h *HoldHandler) Release(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Coord.ReleaseHold(c.Request().Context(), c.Param("id"), uid); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
