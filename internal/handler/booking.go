package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-reservation/internal/availability"
	"github.com/iliyamo/desk-reservation/internal/model"
	"github.com/iliyamo/desk-reservation/internal/queue"
	"github.com/iliyamo/desk-reservation/internal/reservation"
	queue_publisher "github.com/iliyamo/desk-reservation/internal/service"
)

// BookingHandler serves booking creation, listing and cancellation.
type BookingHandler struct {
	Coord *reservation.Coordinator
}

func NewBookingHandler(coord *reservation.Coordinator) *BookingHandler {
	return &BookingHandler{Coord: coord}
}

type bookingReq struct {
	DeskID   string `json:"desk_id"`
	FromDate string `json:"from_date"`
	FromTime string `json:"from_time"`
	ToDate   string `json:"to_date"`
	ToTime   string `json:"to_time"`
}

// bookingView is the JSON shape of a booking.  Legacy date-only rows
// carry booking_date instead of the from/to pair.
type bookingView struct {
	ID          string     `json:"id"`
	DeskID      string     `json:"desk_id"`
	UserID      uint64     `json:"user_id"`
	UserName    string     `json:"user_name"`
	FromAt      *time.Time `json:"from_at,omitempty"`
	ToAt        *time.Time `json:"to_at,omitempty"`
	BookingDate *string    `json:"booking_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toBookingView(b model.Booking) bookingView {
	return bookingView{
		ID:          b.ID,
		DeskID:      b.DeskID,
		UserID:      b.UserID,
		UserName:    b.UserName,
		FromAt:      b.FromAt,
		ToAt:        b.ToAt,
		BookingDate: b.BookingDate,
		CreatedAt:   b.CreatedAt,
	}
}

// Create confirms a booking for the requested desk and range.
// POST /v1/bookings
func (h *BookingHandler) Create(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookingReq
	if err := c.Bind(&req); err != nil || req.DeskID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "desk_id and time range required"})
	}
	rng, err := availability.ParseRange(req.FromDate, req.FromTime, req.ToDate, req.ToTime)
	if err != nil {
		return writeError(c, err)
	}
	b, err := h.Coord.CreateBooking(c.Request().Context(), req.DeskID, uid, getUserName(c), rng)
	if err != nil {
		return writeError(c, err)
	}
	publishBookingEvent(c, queue.KindBookingCreated, b)
	return c.JSON(http.StatusCreated, echo.Map{"booking": toBookingView(b)})
}

// Mine returns the caller's bookings, newest first.
// GET /v1/my-bookings
func (h *BookingHandler) Mine(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookings, err := h.Coord.MyBookings(c.Request().Context(), uid)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingView(b))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// Cancel deletes the caller's booking.  Admins may cancel anyone's.
// DELETE /v1/bookings/:id
func (h *BookingHandler) Cancel(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	cancelled, err := h.Coord.CancelBooking(c.Request().Context(), c.Param("id"), uid, isAdmin(c))
	if err != nil {
		return writeError(c, err)
	}
	// Publish the booking that was deleted, not the canceller: an admin
	// cancelling on someone's behalf must not appear as the booker.
	publishBookingEvent(c, queue.KindBookingCancelled, cancelled)
	return c.NoContent(http.StatusNoContent)
}

// publishBookingEvent sends the event to the broker best-effort; a
// broker outage never fails the request.
func publishBookingEvent(c echo.Context, kind string, b model.Booking) {
	ev := queue.BookingEvent{
		Kind:       kind,
		BookingID:  b.ID,
		DeskID:     b.DeskID,
		UserID:     b.UserID,
		UserName:   b.UserName,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if b.FromAt != nil {
		ev.FromAt = b.FromAt.Format(time.RFC3339)
	}
	if b.ToAt != nil {
		ev.ToAt = b.ToAt.Format(time.RFC3339)
	}
	if err := queue_publisher.PublishBookingEvent(c.Request().Context(), ev); err != nil {
		c.Logger().Warnf("booking event publish failed: %v", err)
	}
}
