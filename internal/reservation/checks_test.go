package reservation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-reservation/internal/availability"
	"github.com/iliyamo/desk-reservation/internal/model"
)

var checkNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func at(hour, min int) time.Time {
	return time.Date(2026, 9, 1, hour, min, 0, 0, time.UTC)
}

func atp(hour, min int) *time.Time {
	v := at(hour, min)
	return &v
}

func strp(s string) *string { return &s }
func uintp(u uint64) *uint64 { return &u }

func reqRange(t *testing.T, fromH, fromM, toH, toM int) availability.TimeRange {
	t.Helper()
	r, err := availability.ParseRange(
		"2026-09-01", at(fromH, fromM).Format("15:04"),
		"2026-09-01", at(toH, toM).Format("15:04"))
	require.NoError(t, err)
	return r
}

func desk(id string) model.Desk {
	return model.Desk{ID: id, Name: id, Availability: model.DeskAvailable}
}

func withHold(d model.Desk, holderID uint64, holder string, from, to, expires *time.Time) model.Desk {
	d.Availability = model.DeskHeld
	d.HeldBy = strp(holder)
	d.HeldByUserID = uintp(holderID)
	d.HeldFrom = from
	d.HeldTo = to
	d.HeldExpiresAt = expires
	return d
}

func booking(deskID string, userID uint64, userName string, from, to *time.Time) model.Booking {
	return model.Booking{ID: "b-" + deskID, DeskID: deskID, UserID: userID, UserName: userName, FromAt: from, ToAt: to}
}

func TestCheckConflictsFreeDesk(t *testing.T) {
	d := desk("desk-1")
	err := checkConflicts(&d, []model.Desk{d}, nil, reqRange(t, 9, 0, 17, 0), 1, checkNow)
	assert.NoError(t, err)
}

func TestHoldByOtherBlocks(t *testing.T) {
	d := withHold(desk("desk-1"), 2, "Bob", atp(9, 0), atp(17, 0), atp(8, 1))
	err := checkConflicts(&d, []model.Desk{d}, nil, reqRange(t, 9, 0, 17, 0), 1, checkNow)
	require.Error(t, err)
	var held *HeldByOtherError
	require.ErrorAs(t, err, &held)
	assert.Equal(t, "Bob", held.Holder)
	assert.True(t, IsConflict(err))
}

func TestOwnHoldDoesNotBlock(t *testing.T) {
	d := withHold(desk("desk-1"), 1, "Alice", atp(9, 0), atp(17, 0), atp(8, 1))
	err := checkConflicts(&d, []model.Desk{d}, nil, reqRange(t, 9, 0, 17, 0), 1, checkNow)
	assert.NoError(t, err)
}

func TestExpiredHoldNeverBlocks(t *testing.T) {
	d := withHold(desk("desk-1"), 2, "Bob", atp(9, 0), atp(17, 0), atp(7, 59))
	err := checkConflicts(&d, []model.Desk{d}, nil, reqRange(t, 9, 0, 17, 0), 1, checkNow)
	assert.NoError(t, err)
}

func TestHoldForDisjointWindowDoesNotBlock(t *testing.T) {
	// Bob is selecting the afternoon; Alice may take the morning.
	d := withHold(desk("desk-1"), 2, "Bob", atp(13, 0), atp(17, 0), atp(8, 1))
	err := checkConflicts(&d, []model.Desk{d}, nil, reqRange(t, 9, 0, 12, 0), 1, checkNow)
	assert.NoError(t, err)
}

func TestUserWithOverlappingBookingElsewhereBlocked(t *testing.T) {
	d := desk("desk-1")
	bookings := []model.Booking{booking("desk-2", 1, "Alice", atp(9, 0), atp(17, 0))}
	err := checkConflicts(&d, []model.Desk{d}, bookings, reqRange(t, 10, 0, 12, 0), 1, checkNow)
	require.Error(t, err)
	var elsewhere *AlreadyBookedElsewhereError
	require.ErrorAs(t, err, &elsewhere)
	assert.Equal(t, "desk-2", elsewhere.DeskID)
}

func TestUserWithDisjointBookingElsewhereAllowed(t *testing.T) {
	d := desk("desk-1")
	bookings := []model.Booking{booking("desk-2", 1, "Alice", atp(9, 0), atp(12, 0))}
	err := checkConflicts(&d, []model.Desk{d}, bookings, reqRange(t, 13, 0, 17, 0), 1, checkNow)
	assert.NoError(t, err)
}

func TestUserWithLegacyBookingSameDateBlocked(t *testing.T) {
	d := desk("desk-1")
	legacy := model.Booking{ID: "b-old", DeskID: "desk-2", UserID: 1, UserName: "Alice", BookingDate: strp("2026-09-01")}
	err := checkConflicts(&d, []model.Desk{d}, []model.Booking{legacy}, reqRange(t, 9, 0, 12, 0), 1, checkNow)
	require.Error(t, err)
	var elsewhere *AlreadyBookedElsewhereError
	assert.ErrorAs(t, err, &elsewhere)
}

func TestUserWithActiveHoldOnOtherDeskBlocked(t *testing.T) {
	target := desk("desk-1")
	other := withHold(desk("desk-2"), 1, "Alice", atp(9, 0), atp(17, 0), atp(8, 1))
	err := checkConflicts(&target, []model.Desk{target, other}, nil, reqRange(t, 10, 0, 12, 0), 1, checkNow)
	require.Error(t, err)
	var elsewhere *AlreadyBookedElsewhereError
	require.ErrorAs(t, err, &elsewhere)
	assert.Equal(t, "desk-2", elsewhere.DeskID)
}

func TestUserWithExpiredHoldOnOtherDeskAllowed(t *testing.T) {
	target := desk("desk-1")
	other := withHold(desk("desk-2"), 1, "Alice", atp(9, 0), atp(17, 0), atp(7, 30))
	err := checkConflicts(&target, []model.Desk{target, other}, nil, reqRange(t, 10, 0, 12, 0), 1, checkNow)
	assert.NoError(t, err)
}

func TestDeskWithOverlappingBookingBlocked(t *testing.T) {
	d := desk("desk-1")
	bookings := []model.Booking{booking("desk-1", 2, "Bob", atp(9, 0), atp(17, 0))}
	err := checkConflicts(&d, []model.Desk{d}, bookings, reqRange(t, 10, 0, 12, 0), 1, checkNow)
	require.Error(t, err)
	var booked *DeskAlreadyBookedError
	require.ErrorAs(t, err, &booked)
	assert.Equal(t, "Bob", booked.Booker)
}

func TestDeskWithAdjacentBookingAllowed(t *testing.T) {
	d := desk("desk-1")
	bookings := []model.Booking{booking("desk-1", 2, "Bob", atp(9, 0), atp(12, 0))}
	err := checkConflicts(&d, []model.Desk{d}, bookings, reqRange(t, 12, 0, 17, 0), 1, checkNow)
	assert.NoError(t, err)
}

func TestDeskWithLegacyBookingSameDateBlocked(t *testing.T) {
	d := desk("desk-1")
	legacy := model.Booking{ID: "b-old", DeskID: "desk-1", UserID: 2, UserName: "Bob", BookingDate: strp("2026-09-01")}
	err := checkConflicts(&d, []model.Desk{d}, []model.Booking{legacy}, reqRange(t, 9, 0, 12, 0), 1, checkNow)
	require.Error(t, err)
	var booked *DeskAlreadyBookedError
	assert.ErrorAs(t, err, &booked)
}

func TestCheckOrderHoldBeforeOwnBookingBeforeDeskBooking(t *testing.T) {
	// All three conditions fail at once; the hold error wins because the
	// checks run in a fixed order.
	d := withHold(desk("desk-1"), 2, "Bob", atp(9, 0), atp(17, 0), atp(8, 1))
	bookings := []model.Booking{
		booking("desk-2", 1, "Alice", atp(9, 0), atp(17, 0)),
		booking("desk-1", 3, "Carol", atp(9, 0), atp(17, 0)),
	}
	err := checkConflicts(&d, []model.Desk{d}, bookings, reqRange(t, 9, 0, 17, 0), 1, checkNow)
	var held *HeldByOtherError
	require.ErrorAs(t, err, &held)

	// Without the hold, the user's own conflicting booking is reported
	// before the desk's.
	d2 := desk("desk-1")
	err = checkConflicts(&d2, []model.Desk{d2}, bookings, reqRange(t, 9, 0, 17, 0), 1, checkNow)
	var elsewhere *AlreadyBookedElsewhereError
	require.ErrorAs(t, err, &elsewhere)
}

func TestIsConflictRejectsOtherErrors(t *testing.T) {
	assert.False(t, IsConflict(ErrDeskNotFound))
	assert.False(t, IsConflict(storeErr("load desk", ErrBookingNotFound)))
	assert.True(t, IsConflict(&HeldByOtherError{Holder: "Bob"}))
}
