// Package realtime implements the in-process change feed that replaces
// the hosted store's snapshot listeners: the coordinator publishes desk
// and booking change events after each committed write, and subscribers
// (SSE handlers, tests) receive them on buffered channels.  No library
// in the surrounding stack provides an in-process pub/sub of this shape,
// so the hub is built on channels and a mutex.
package realtime

import "sync"

// Event types carried on the feeds.
const (
	DeskUpdated      = "desk.updated"
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
)

// DeskEvent announces that a desk row changed (hold placed or released,
// booking written, sweep reclaimed an expired hold).  Subscribers
// re-derive availability from the store; the event is a change signal,
// not an authoritative snapshot.
type DeskEvent struct {
	Type   string `json:"type"`
	DeskID string `json:"desk_id"`
}

// BookingEvent announces a created or cancelled booking.
type BookingEvent struct {
	Type      string `json:"type"`
	BookingID string `json:"booking_id"`
	DeskID    string `json:"desk_id"`
	UserID    uint64 `json:"user_id"`
}

const subscriberBuffer = 16

type bookingSub struct {
	ch     chan BookingEvent
	userID uint64 // 0 subscribes to all users' bookings
}

// Hub fans out desk and booking events to subscribers.  Publishing never
// blocks: a subscriber that has fallen more than subscriberBuffer events
// behind misses events and must re-read from the store, matching the
// change-signal contract above.
type Hub struct {
	mu          sync.Mutex
	nextID      uint64
	deskSubs    map[uint64]chan DeskEvent
	bookingSubs map[uint64]bookingSub
}

// NewHub returns an empty hub ready for subscribers.
func NewHub() *Hub {
	return &Hub{
		deskSubs:    make(map[uint64]chan DeskEvent),
		bookingSubs: make(map[uint64]bookingSub),
	}
}

// SubscribeDesks registers a desk change subscriber.  The returned
// cancel function is idempotent and closes the channel.
func (h *Hub) SubscribeDesks() (<-chan DeskEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan DeskEvent, subscriberBuffer)
	h.deskSubs[id] = ch
	return ch, func() { h.unsubscribeDesk(id) }
}

// SubscribeBookings registers a booking change subscriber.  A userID of
// zero receives events for all users; otherwise only that user's
// bookings are delivered.  The returned cancel function is idempotent
// and closes the channel.
func (h *Hub) SubscribeBookings(userID uint64) (<-chan BookingEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan BookingEvent, subscriberBuffer)
	h.bookingSubs[id] = bookingSub{ch: ch, userID: userID}
	return ch, func() { h.unsubscribeBooking(id) }
}

func (h *Hub) unsubscribeDesk(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.deskSubs[id]; ok {
		delete(h.deskSubs, id)
		close(ch)
	}
}

func (h *Hub) unsubscribeBooking(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s, ok := h.bookingSubs[id]; ok {
		delete(h.bookingSubs, id)
		close(s.ch)
	}
}

// PublishDesk delivers a desk event to every desk subscriber.
func (h *Hub) PublishDesk(e DeskEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.deskSubs {
		select {
		case ch <- e:
		default: // subscriber too slow, drop
		}
	}
}

// PublishBooking delivers a booking event to matching subscribers.
func (h *Hub) PublishBooking(e BookingEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, s := range h.bookingSubs {
		if s.userID != 0 && s.userID != e.UserID {
			continue
		}
		select {
		case s.ch <- e:
		default:
		}
	}
}
