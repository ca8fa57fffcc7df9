package reservation

import (
	"time"

	"github.com/iliyamo/desk-reservation/internal/availability"
	"github.com/iliyamo/desk-reservation/internal/model"
)

// checkConflicts runs the ordered precondition checks shared by hold
// creation and the commit-time re-validation of bookings, failing fast
// with a distinct error per condition:
//
//  1. the target desk must not be held by a different user with an
//     unexpired hold overlapping the request;
//  2. the requesting user must not already hold or have booked ANY desk
//     for an overlapping range;
//  3. the target desk must not have a confirmed booking (by anyone)
//     overlapping the request.
//
// The function is pure: the coordinator loads the desk row (locked), the
// full desk list and the bookings list inside its transaction and passes
// them in together with the clock reading.
func checkConflicts(desk *model.Desk, desks []model.Desk, bookings []model.Booking, req availability.TimeRange, userID uint64, now time.Time) error {
	if err := checkHeldByOther(desk, req, userID, now); err != nil {
		return err
	}
	if err := checkUserElsewhere(desk.ID, desks, bookings, req, userID, now); err != nil {
		return err
	}
	return checkDeskBooked(desk.ID, bookings, req)
}

// checkHeldByOther rejects when another user's unexpired hold on the
// desk overlaps the requested range.  A hold for a disjoint window does
// not block, and neither does an expired hold still present in storage.
func checkHeldByOther(desk *model.Desk, req availability.TimeRange, userID uint64, now time.Time) error {
	if !desk.HoldActive(now) {
		return nil
	}
	if desk.HeldByUserID != nil && *desk.HeldByUserID == userID {
		return nil
	}
	r, ok := availability.HoldRange(desk)
	if !ok || !r.Overlaps(req) {
		return nil
	}
	holder := ""
	if desk.HeldBy != nil {
		holder = *desk.HeldBy
	}
	return &HeldByOtherError{Holder: holder}
}

// checkUserElsewhere enforces the one-reservation-per-user-per-timeslot
// invariant: the user must not have an overlapping booking on any desk,
// nor an active hold on a different desk for an overlapping window.
func checkUserElsewhere(deskID string, desks []model.Desk, bookings []model.Booking, req availability.TimeRange, userID uint64, now time.Time) error {
	for i := range bookings {
		b := &bookings[i]
		if b.UserID != userID {
			continue
		}
		if r, ok := availability.BookingRange(b); ok && r.Overlaps(req) {
			return &AlreadyBookedElsewhereError{DeskID: b.DeskID}
		}
		if availability.MatchesLegacyDate(b, req) {
			return &AlreadyBookedElsewhereError{DeskID: b.DeskID}
		}
	}
	for i := range desks {
		d := &desks[i]
		if d.ID == deskID || !d.HoldActive(now) {
			continue
		}
		if d.HeldByUserID == nil || *d.HeldByUserID != userID {
			continue
		}
		if r, ok := availability.HoldRange(d); ok && r.Overlaps(req) {
			return &AlreadyBookedElsewhereError{DeskID: d.ID}
		}
	}
	return nil
}

// checkDeskBooked rejects when any confirmed booking on the desk
// overlaps the requested range, regardless of who made it or of the
// desk's current tag.
func checkDeskBooked(deskID string, bookings []model.Booking, req availability.TimeRange) error {
	for i := range bookings {
		b := &bookings[i]
		if b.DeskID != deskID {
			continue
		}
		if r, ok := availability.BookingRange(b); ok && r.Overlaps(req) {
			return &DeskAlreadyBookedError{Booker: b.UserName, Range: r}
		}
		if availability.MatchesLegacyDate(b, req) {
			return &DeskAlreadyBookedError{Booker: b.UserName}
		}
	}
	return nil
}
