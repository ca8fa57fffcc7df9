package reservation

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/desk-reservation/internal/availability"
	"github.com/iliyamo/desk-reservation/internal/model"
	"github.com/iliyamo/desk-reservation/internal/realtime"
	"github.com/iliyamo/desk-reservation/internal/repository"
)

// Coordinator mutates desk hold and booking state.  Every mutating
// method opens a transaction, locks the target desk row, reclaims
// expired holds opportunistically, re-runs the conflict checks against
// the data read inside the transaction and only then writes.  The
// conflict-check sequence therefore executes against a serialised view
// of the desk, while keeping the same error taxonomy and blocking
// semantics as the best-effort read-check-write design it hardens.
type Coordinator struct {
	db       *sql.DB
	desks    *repository.DeskRepo
	bookings *repository.BookingRepo
	hub      *realtime.Hub
	holdTTL  time.Duration
	now      func() time.Time
}

// NewCoordinator wires the coordinator to its store handles and the
// realtime hub.  hub may be nil when no change feed is needed (tests).
// holdTTL is the fixed time-to-live applied to every new hold.
func NewCoordinator(db *sql.DB, desks *repository.DeskRepo, bookings *repository.BookingRepo, hub *realtime.Hub, holdTTL time.Duration) *Coordinator {
	return &Coordinator{
		db:       db,
		desks:    desks,
		bookings: bookings,
		hub:      hub,
		holdTTL:  holdTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (c *Coordinator) publishDesk(id string) {
	if c.hub != nil {
		c.hub.PublishDesk(realtime.DeskEvent{Type: realtime.DeskUpdated, DeskID: id})
	}
}

func (c *Coordinator) publishBooking(eventType string, b *model.Booking) {
	if c.hub != nil {
		c.hub.PublishBooking(realtime.BookingEvent{
			Type:      eventType,
			BookingID: b.ID,
			DeskID:    b.DeskID,
			UserID:    b.UserID,
		})
	}
}

// ListDesksWithAvailability returns every desk annotated with its status
// for the requested range from the requesting user's point of view.
// Expired holds are swept opportunistically first, so staleness is
// bounded by reads as well as by the periodic sweeper.
func (c *Coordinator) ListDesksWithAvailability(ctx context.Context, req availability.TimeRange, userID uint64) ([]availability.DeskStatus, error) {
	// Sweep failures must not block reads; expired holds are still
	// excluded by the engine's expiry comparison.
	_, _ = c.ExpireHolds(ctx)
	desks, err := c.desks.List(ctx)
	if err != nil {
		return nil, storeErr("list desks", err)
	}
	bookings, err := c.bookings.ListAll(ctx)
	if err != nil {
		return nil, storeErr("list bookings", err)
	}
	return availability.Annotate(desks, bookings, req, userID, c.now()), nil
}

// CreateHold places a short-lived hold on the desk for the requested
// range.  Preconditions are checked in order, failing fast with a
// distinct error per condition: the desk must exist, must not be held by
// another user for an overlapping window, the user must not hold or have
// booked any desk for an overlapping range, and the desk must not have a
// confirmed overlapping booking.  On success the desk is tagged held
// with expiry = now + TTL and the updated desk row is returned.
func (c *Coordinator) CreateHold(ctx context.Context, deskID string, userID uint64, userName string, req availability.TimeRange) (model.Desk, error) {
	var out model.Desk
	err := c.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := c.desks.ExpireHoldsTx(ctx, tx); err != nil {
			return storeErr("expire holds", err)
		}
		desk, err := c.desks.GetForUpdateTx(ctx, tx, deskID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrDeskNotFound
			}
			return storeErr("load desk", err)
		}
		desks, err := c.desks.ListTx(ctx, tx)
		if err != nil {
			return storeErr("list desks", err)
		}
		bookings, err := c.bookings.ListAllTx(ctx, tx)
		if err != nil {
			return storeErr("list bookings", err)
		}
		now := c.now()
		if err := checkConflicts(&desk, desks, bookings, req, userID, now); err != nil {
			return err
		}
		expiresAt := now.Add(c.holdTTL)
		if err := c.desks.SetHeldTx(ctx, tx, deskID, userName, userID, req.Start, req.End, expiresAt); err != nil {
			return storeErr("set held", err)
		}
		desk.Availability = model.DeskHeld
		desk.HeldBy = &userName
		desk.HeldByUserID = &userID
		start, end := req.Start, req.End
		desk.HeldFrom = &start
		desk.HeldTo = &end
		desk.HeldExpiresAt = &expiresAt
		out = desk
		return nil
	})
	if err != nil {
		return model.Desk{}, err
	}
	c.publishDesk(deskID)
	return out, nil
}

// ReleaseHold clears the user's hold on the desk.  It is idempotent and
// succeeds as a no-op when the desk does not exist, is not held, or is
// held by a different user: release is defined to be best-effort and
// must never fail for "nothing to release".
func (c *Coordinator) ReleaseHold(ctx context.Context, deskID string, userID uint64) error {
	released := false
	err := c.inTx(ctx, func(tx *sql.Tx) error {
		desk, err := c.desks.GetForUpdateTx(ctx, tx, deskID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return storeErr("load desk", err)
		}
		if desk.Availability != model.DeskHeld {
			return nil
		}
		if desk.HeldByUserID == nil || *desk.HeldByUserID != userID {
			return nil
		}
		if err := c.desks.ClearHoldTx(ctx, tx, deskID); err != nil {
			return storeErr("clear hold", err)
		}
		released = true
		return nil
	})
	if err != nil {
		return err
	}
	if released {
		c.publishDesk(deskID)
	}
	return nil
}

// CreateBooking converts the user's selection into a confirmed booking.
// The full conflict check runs again immediately before the write,
// because interactive selection can take seconds to minutes between the
// availability read and the commit; a conflict detected here names the
// current holder or booker so the UI can present "X just booked this".
// On success the booking is persisted, the desk is tagged booked and any
// hold fields are cleared unconditionally.
func (c *Coordinator) CreateBooking(ctx context.Context, deskID string, userID uint64, userName string, req availability.TimeRange) (model.Booking, error) {
	var out model.Booking
	err := c.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := c.desks.ExpireHoldsTx(ctx, tx); err != nil {
			return storeErr("expire holds", err)
		}
		desk, err := c.desks.GetForUpdateTx(ctx, tx, deskID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrDeskNotFound
			}
			return storeErr("load desk", err)
		}
		desks, err := c.desks.ListTx(ctx, tx)
		if err != nil {
			return storeErr("list desks", err)
		}
		bookings, err := c.bookings.ListAllTx(ctx, tx)
		if err != nil {
			return storeErr("list bookings", err)
		}
		if err := checkConflicts(&desk, desks, bookings, req, userID, c.now()); err != nil {
			return err
		}
		start, end := req.Start, req.End
		b := model.Booking{
			DeskID:   deskID,
			UserID:   userID,
			UserName: userName,
			FromAt:   &start,
			ToAt:     &end,
		}
		if err := c.bookings.CreateTx(ctx, tx, &b); err != nil {
			return storeErr("create booking", err)
		}
		if err := c.desks.SetBookedTx(ctx, tx, deskID, userName, userID, req.Start, req.End); err != nil {
			return storeErr("set booked", err)
		}
		out = b
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	c.publishDesk(deskID)
	c.publishBooking(realtime.BookingCreated, &out)
	return out, nil
}

// CancelBooking deletes the booking and reconciles the owning desk's
// tag.  The check order is fixed: first whether any other booking still
// references the desk (regardless of time range, an intentional
// simplification), then whether an unexpired hold is present.  A live
// hold survives the cancellation with only the booked fields cleared;
// otherwise the desk reverts to available.  Non-admin callers may only
// cancel their own bookings.  The deleted booking is returned so callers
// can report who and what was cancelled, which differs from the caller's
// own identity when an admin cancels on someone's behalf.
func (c *Coordinator) CancelBooking(ctx context.Context, bookingID string, userID uint64, admin bool) (model.Booking, error) {
	var cancelled model.Booking
	deskChanged := ""
	err := c.inTx(ctx, func(tx *sql.Tx) error {
		b, err := c.bookings.GetTx(ctx, tx, bookingID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrBookingNotFound
			}
			return storeErr("load booking", err)
		}
		if !admin && b.UserID != userID {
			return repository.ErrForbidden
		}
		desk, err := c.desks.GetForUpdateTx(ctx, tx, b.DeskID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return storeErr("load desk", err)
		}
		deskExists := err == nil
		if err := c.bookings.DeleteTx(ctx, tx, bookingID); err != nil {
			return storeErr("delete booking", err)
		}
		cancelled = b
		if !deskExists {
			return nil
		}
		others, err := c.bookings.CountOtherForDeskTx(ctx, tx, b.DeskID, bookingID)
		if err != nil {
			return storeErr("count bookings", err)
		}
		if others > 0 {
			// Another booking still owns the desk row's booked tag.
			return nil
		}
		keepHold := desk.HoldActive(c.now())
		if err := c.desks.ClearBookedTx(ctx, tx, b.DeskID, keepHold); err != nil {
			return storeErr("clear booked", err)
		}
		deskChanged = b.DeskID
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	if deskChanged != "" {
		c.publishDesk(deskChanged)
	}
	c.publishBooking(realtime.BookingCancelled, &cancelled)
	return cancelled, nil
}

// ExpireHolds reclaims every expired hold and returns the ids of the
// desks that were reset.  It is idempotent and safe to run concurrently
// with itself; the periodic sweeper and the opportunistic pre-read calls
// both funnel through here.
func (c *Coordinator) ExpireHolds(ctx context.Context) ([]string, error) {
	var expired []string
	err := c.inTx(ctx, func(tx *sql.Tx) error {
		ids, err := c.desks.ExpireHoldsTx(ctx, tx)
		if err != nil {
			return storeErr("expire holds", err)
		}
		expired = ids
		return nil
	})
	if err != nil {
		return nil, err
	}
	for _, id := range expired {
		c.publishDesk(id)
	}
	return expired, nil
}

// MyBookings returns the user's bookings, newest first.
func (c *Coordinator) MyBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	bookings, err := c.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list bookings", err)
	}
	return bookings, nil
}

// AllBookings returns every booking, newest first.
func (c *Coordinator) AllBookings(ctx context.Context) ([]model.Booking, error) {
	bookings, err := c.bookings.ListAll(ctx)
	if err != nil {
		return nil, storeErr("list bookings", err)
	}
	return bookings, nil
}

// inTx runs fn within a transaction, rolling back unless fn succeeds and
// the commit goes through.
func (c *Coordinator) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return storeErr("begin tx", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storeErr("commit tx", err)
	}
	committed = true
	return nil
}
