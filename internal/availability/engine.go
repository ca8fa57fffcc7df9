package availability

import (
	"time"

	"github.com/iliyamo/desk-reservation/internal/model"
)

// Per-desk status values produced by Annotate.  A desk held or booked by
// the requester is reported as StatusOwn so the UI never blocks a user
// from their own reservation.
const (
	StatusFree   = "free"
	StatusHeld   = "held-by-other"
	StatusBooked = "booked-by-other"
	StatusOwn    = "owned-by-requester"
)

// DeskStatus annotates a desk with its availability for a requested
// range.  HolderName and BookerName carry the other party's display name
// when the desk is blocked; BookingID references the conflicting booking
// when one was found in the bookings list.
type DeskStatus struct {
	Desk       model.Desk
	Status     string
	HolderName string
	BookerName string
	BookingID  string
}

// Blocked reports whether the desk is unavailable to the requester.
func (s *DeskStatus) Blocked() bool {
	return s.Status == StatusHeld || s.Status == StatusBooked
}

// Annotate derives the availability of every desk for the requested
// range.  The stored desk tag is used directly when its own time window
// overlaps the request; otherwise the full bookings list and the desk's
// hold fields are scanned, because a desk carries only one "current" tag
// but may have many bookings for other windows.  Expired holds never
// block, even when the sweeper has not reclaimed them yet.
func Annotate(desks []model.Desk, bookings []model.Booking, req TimeRange, requesterID uint64, now time.Time) []DeskStatus {
	out := make([]DeskStatus, 0, len(desks))
	for i := range desks {
		out = append(out, annotateOne(&desks[i], bookings, req, requesterID, now))
	}
	return out
}

func annotateOne(d *model.Desk, bookings []model.Booking, req TimeRange, requesterID uint64, now time.Time) DeskStatus {
	st := DeskStatus{Desk: *d, Status: StatusFree}

	// Prefer the stored tag when its window overlaps the request.
	switch d.Availability {
	case model.DeskBooked:
		if r, ok := BookedRange(d); ok && r.Overlaps(req) {
			if d.BookedByUserID != nil && *d.BookedByUserID == requesterID {
				st.Status = StatusOwn
				return st
			}
			st.Status = StatusBooked
			if d.BookedBy != nil {
				st.BookerName = *d.BookedBy
			}
			return st
		}
	case model.DeskHeld:
		if r, ok := HoldRange(d); ok && r.Overlaps(req) && d.HoldActive(now) {
			if d.HeldByUserID != nil && *d.HeldByUserID == requesterID {
				st.Status = StatusOwn
				return st
			}
			st.Status = StatusHeld
			if d.HeldBy != nil {
				st.HolderName = *d.HeldBy
			}
			return st
		}
	}

	// The stored tag covers a different window (or none).  Fall back to
	// scanning the bookings list for this desk.
	if b := findOverlappingBooking(d.ID, bookings, req); b != nil {
		if b.UserID == requesterID {
			st.Status = StatusOwn
			st.BookingID = b.ID
			return st
		}
		st.Status = StatusBooked
		st.BookerName = b.UserName
		st.BookingID = b.ID
		return st
	}

	// An active hold for an overlapping window still blocks even when the
	// stored tag's own range check above was skipped.
	if d.HoldActive(now) {
		if r, ok := HoldRange(d); ok && r.Overlaps(req) {
			if d.HeldByUserID == nil || *d.HeldByUserID != requesterID {
				st.Status = StatusHeld
				if d.HeldBy != nil {
					st.HolderName = *d.HeldBy
				}
				return st
			}
		}
	}
	return st
}

// findOverlappingBooking returns the first booking on the desk whose
// window overlaps the request.  Ranged bookings use the strict overlap
// rule; legacy date-only bookings match by exact date equality only.
func findOverlappingBooking(deskID string, bookings []model.Booking, req TimeRange) *model.Booking {
	for i := range bookings {
		b := &bookings[i]
		if b.DeskID != deskID {
			continue
		}
		if r, ok := BookingRange(b); ok {
			if r.Overlaps(req) {
				return b
			}
			continue
		}
		if MatchesLegacyDate(b, req) {
			return b
		}
	}
	return nil
}
