package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-reservation/internal/availability"
	"github.com/iliyamo/desk-reservation/internal/model"
	"github.com/iliyamo/desk-reservation/internal/repository"
	"github.com/iliyamo/desk-reservation/internal/reservation"
)

// DeskHandler serves desk listing endpoints.
type DeskHandler struct {
	Coord *reservation.Coordinator
	Desks *repository.DeskRepo
}

func NewDeskHandler(coord *reservation.Coordinator, desks *repository.DeskRepo) *DeskHandler {
	return &DeskHandler{Coord: coord, Desks: desks}
}

// deskView is the JSON shape of a desk with its availability for the
// requested range.  Occupant names are only present when the desk is
// blocked by someone else.
type deskView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PosX       int32  `json:"pos_x"`
	PosY       int32  `json:"pos_y"`
	Status     string `json:"status"`
	HolderName string `json:"held_by,omitempty"`
	BookerName string `json:"booked_by,omitempty"`
	BookingID  string `json:"booking_id,omitempty"`
}

// layoutView is the static floor plan shape served by Layout.  It omits
// availability so the response stays cacheable.
type layoutView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	PosX int32  `json:"pos_x"`
	PosY int32  `json:"pos_y"`
}

func toDeskView(s availability.DeskStatus) deskView {
	return deskView{
		ID:         s.Desk.ID,
		Name:       s.Desk.Name,
		PosX:       s.Desk.PosX,
		PosY:       s.Desk.PosY,
		Status:     s.Status,
		HolderName: s.HolderName,
		BookerName: s.BookerName,
		BookingID:  s.BookingID,
	}
}

// List returns every desk annotated with availability for the range
// given in from_date/from_time/to_date/to_time query parameters.
func (h *DeskHandler) List(c echo.Context) error {
	req, err := rangeFromQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	statuses, err := h.Coord.ListDesksWithAvailability(c.Request().Context(), req, uid)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]deskView, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, toDeskView(s))
	}
	return c.JSON(http.StatusOK, echo.Map{"desks": out})
}

// Layout returns the static floor plan without availability.  The route
// sits behind the Redis response cache because the payload only changes
// when an admin edits the desk map.
func (h *DeskHandler) Layout(c echo.Context) error {
	desks, err := h.Desks.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]layoutView, 0, len(desks))
	for _, d := range desks {
		out = append(out, layoutView{ID: d.ID, Name: d.Name, PosX: d.PosX, PosY: d.PosY})
	}
	return c.JSON(http.StatusOK, echo.Map{"desks": out})
}

// heldDeskView is the JSON shape returned after a hold is placed.
type heldDeskView struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Availability  string     `json:"availability"`
	HeldBy        string     `json:"held_by"`
	HeldFrom      *time.Time `json:"held_from"`
	HeldTo        *time.Time `json:"held_to"`
	HeldExpiresAt *time.Time `json:"held_expires_at"`
}

func toHeldDeskView(d model.Desk) heldDeskView {
	v := heldDeskView{
		ID:            d.ID,
		Name:          d.Name,
		Availability:  d.Availability,
		HeldFrom:      d.HeldFrom,
		HeldTo:        d.HeldTo,
		HeldExpiresAt: d.HeldExpiresAt,
	}
	if d.HeldBy != nil {
		v.HeldBy = *d.HeldBy
	}
	return v
}
