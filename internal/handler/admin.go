package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-reservation/internal/repository"
	"github.com/iliyamo/desk-reservation/internal/reservation"
)

// AdminHandler serves the ADMIN-only surface: the full bookings overview
// and desk map editing.
type AdminHandler struct {
	Coord *reservation.Coordinator
	Desks *repository.DeskRepo
}

func NewAdminHandler(coord *reservation.Coordinator, desks *repository.DeskRepo) *AdminHandler {
	return &AdminHandler{Coord: coord, Desks: desks}
}

// Bookings returns every booking across all users, newest first.
// GET /v1/admin/bookings
func (h *AdminHandler) Bookings(c echo.Context) error {
	bookings, err := h.Coord.AllBookings(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingView(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

type deskReq struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	PosX int32  `json:"pos_x"`
	PosY int32  `json:"pos_y"`
}

// CreateDesk adds a desk to the floor plan.
// POST /v1/admin/desks
func (h *AdminHandler) CreateDesk(c echo.Context) error {
	var req deskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.ID = strings.TrimSpace(req.ID)
	req.Name = strings.TrimSpace(req.Name)
	if req.ID == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "id and name required"})
	}
	if err := h.Desks.Create(c.Request().Context(), req.ID, req.Name, req.PosX, req.PosY); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return c.JSON(http.StatusConflict, echo.Map{"error": "desk id already exists"})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"desk": req})
}

// UpdateDesk renames or repositions a desk.
// PUT /v1/admin/desks/:id
func (h *AdminHandler) UpdateDesk(c echo.Context) error {
	var req deskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	id := c.Param("id")
	if err := h.Desks.Update(c.Request().Context(), id, req.Name, req.PosX, req.PosY); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "desk not found"})
		}
		return writeError(c, err)
	}
	req.ID = id
	return c.JSON(http.StatusOK, echo.Map{"desk": req})
}

// DeleteDesk removes a desk.  A desk with bookings on record cannot be
// deleted; the bookings have to be cancelled first.
// DELETE /v1/admin/desks/:id
func (h *AdminHandler) DeleteDesk(c echo.Context) error {
	if err := h.Desks.Delete(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "desk not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "desk has bookings; cancel them first"})
		}
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
