package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/desk-reservation/internal/realtime"
)

// StreamHandler serves Server-Sent Events feeds backed by the realtime
// hub.  Clients reconcile by re-fetching the desk list or their bookings
// when an event arrives; the events themselves only signal that a change
// happened.
type StreamHandler struct {
	Hub *realtime.Hub
}

func NewStreamHandler(hub *realtime.Hub) *StreamHandler {
	return &StreamHandler{Hub: hub}
}

func sseHeaders(c echo.Context) {
	h := c.Response().Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Flush()
}

func writeSSE(c echo.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(c.Response(), "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	c.Response().Flush()
	return nil
}

// Desks streams desk change events until the client disconnects.
// GET /v1/stream/desks
func (h *StreamHandler) Desks(c echo.Context) error {
	ch, cancel := h.Hub.SubscribeDesks()
	defer cancel()
	sseHeaders(c)
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}
			if err := writeSSE(c, ev.Type, ev); err != nil {
				return nil
			}
		}
	}
}

// Bookings streams the caller's booking change events.
// GET /v1/stream/bookings
func (h *StreamHandler) Bookings(c echo.Context) error {
	uid, ok := getUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ch, cancel := h.Hub.SubscribeBookings(uid)
	defer cancel()
	sseHeaders(c)
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, chOK := <-ch:
			if !chOK {
				return nil
			}
			if err := writeSSE(c, ev.Type, ev); err != nil {
				return nil
			}
		}
	}
}
