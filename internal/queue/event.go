// Package queue defines message payloads exchanged over the message broker.
package queue

// Event kinds carried in BookingEvent.Kind.
const (
	KindBookingCreated   = "booking.created"
	KindBookingCancelled = "booking.cancelled"
)

// BookingEvent is published when a desk booking is created or cancelled.
// It contains enough information for downstream consumers to log, notify,
// or trigger analytics without querying the primary database.
type BookingEvent struct {
	Kind       string `json:"kind"`
	BookingID  string `json:"booking_id"`
	DeskID     string `json:"desk_id"`
	DeskName   string `json:"desk_name,omitempty"`
	UserID     uint64 `json:"user_id"`
	UserName   string `json:"user_name"`
	FromAt     string `json:"from_at,omitempty"`
	ToAt       string `json:"to_at,omitempty"`
	OccurredAt string `json:"occurred_at"`
}
