package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeskEventsFanOut(t *testing.T) {
	h := NewHub()
	ch1, cancel1 := h.SubscribeDesks()
	ch2, cancel2 := h.SubscribeDesks()
	defer cancel1()
	defer cancel2()

	h.PublishDesk(DeskEvent{Type: DeskUpdated, DeskID: "desk-1"})

	ev1 := <-ch1
	ev2 := <-ch2
	assert.Equal(t, "desk-1", ev1.DeskID)
	assert.Equal(t, "desk-1", ev2.DeskID)
	assert.Equal(t, DeskUpdated, ev1.Type)
}

func TestBookingEventsFilteredByUser(t *testing.T) {
	h := NewHub()
	alice, cancelAlice := h.SubscribeBookings(1)
	all, cancelAll := h.SubscribeBookings(0)
	defer cancelAlice()
	defer cancelAll()

	h.PublishBooking(BookingEvent{Type: BookingCreated, BookingID: "b-1", DeskID: "desk-1", UserID: 2})

	// The wildcard subscriber sees Bob's event; Alice's channel stays
	// empty.
	ev := <-all
	assert.Equal(t, "b-1", ev.BookingID)
	select {
	case got := <-alice:
		t.Fatalf("unexpected event for user 1: %+v", got)
	default:
	}

	h.PublishBooking(BookingEvent{Type: BookingCancelled, BookingID: "b-2", DeskID: "desk-2", UserID: 1})
	ev = <-alice
	assert.Equal(t, "b-2", ev.BookingID)
	assert.Equal(t, BookingCancelled, ev.Type)
}

func TestCancelClosesChannelAndIsIdempotent(t *testing.T) {
	h := NewHub()
	ch, cancel := h.SubscribeDesks()

	cancel()
	cancel() // second call must not panic

	_, open := <-ch
	assert.False(t, open)

	// Publishing after cancel must not panic or deliver.
	h.PublishDesk(DeskEvent{Type: DeskUpdated, DeskID: "desk-1"})
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	ch, cancel := h.SubscribeDesks()
	defer cancel()

	// Overfill the buffer; publishes beyond capacity are dropped and the
	// publisher never blocks.
	for i := 0; i < subscriberBuffer*2; i++ {
		h.PublishDesk(DeskEvent{Type: DeskUpdated, DeskID: "desk-1"})
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			require.Equal(t, subscriberBuffer, received)
			return
		}
	}
}
