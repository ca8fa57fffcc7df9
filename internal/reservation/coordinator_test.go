package reservation

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-reservation/internal/model"
	"github.com/iliyamo/desk-reservation/internal/repository"
)

var cancelNow = time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

func newMockCoordinator(t *testing.T) (*Coordinator, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	c := &Coordinator{
		db:       db,
		desks:    repository.NewDeskRepo(db),
		bookings: repository.NewBookingRepo(db),
		holdTTL:  time.Minute,
		now:      func() time.Time { return cancelNow },
	}
	return c, mock
}

var bookingCols = []string{
	"id", "desk_id", "user_id", "user_name", "from_at", "to_at", "booking_date", "created_at", "updated_at",
}

var deskCols = []string{
	"id", "name", "pos_x", "pos_y", "availability",
	"held_by", "held_by_user_id", "held_from", "held_to", "held_expires_at",
	"booked_by", "booked_by_user_id", "booked_from", "booked_to",
	"created_at", "updated_at",
}

func bookingRowFor(deskID string, userID int64, userName string) *sqlmock.Rows {
	from := cancelNow.Add(time.Hour)
	to := cancelNow.Add(9 * time.Hour)
	return sqlmock.NewRows(bookingCols).
		AddRow("b-1", deskID, userID, userName, from, to, nil, cancelNow, cancelNow)
}

func bookedDeskRow(id string) *sqlmock.Rows {
	from := cancelNow.Add(time.Hour)
	to := cancelNow.Add(9 * time.Hour)
	return sqlmock.NewRows(deskCols).
		AddRow(id, "Desk 1", 10, 7, model.DeskBooked,
			nil, nil, nil, nil, nil,
			"Alice", 1, from, to,
			cancelNow, cancelNow)
}

func heldDeskRow(id string, expiresAt time.Time) *sqlmock.Rows {
	holdFrom := cancelNow.Add(2 * time.Hour)
	holdTo := cancelNow.Add(4 * time.Hour)
	bookedFrom := cancelNow.Add(time.Hour)
	bookedTo := cancelNow.Add(9 * time.Hour)
	return sqlmock.NewRows(deskCols).
		AddRow(id, "Desk 1", 10, 7, model.DeskHeld,
			"Bob", 2, holdFrom, holdTo, expiresAt,
			"Alice", 1, bookedFrom, bookedTo,
			cancelNow, cancelNow)
}

func expectCancelReads(mock sqlmock.Sqlmock, deskRows *sqlmock.Rows) {
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id`).WithArgs("b-1").
		WillReturnRows(bookingRowFor("desk-1", 1, "Alice"))
	mock.ExpectQuery(`FROM desks WHERE id = \? FOR UPDATE`).WithArgs("desk-1").
		WillReturnRows(deskRows)
	mock.ExpectExec(`DELETE FROM bookings`).WithArgs("b-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func TestCancelBookingKeepsActiveHold(t *testing.T) {
	c, mock := newMockCoordinator(t)

	expectCancelReads(mock, heldDeskRow("desk-1", cancelNow.Add(30*time.Second)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WithArgs("desk-1", "b-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	// The desk stays tagged held; only the booked group is cleared.
	mock.ExpectExec(`UPDATE desks`).WithArgs(model.DeskHeld, "desk-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cancelled, err := c.CancelBooking(context.Background(), "b-1", 1, false)
	require.NoError(t, err)
	assert.Equal(t, "b-1", cancelled.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingRevertsToAvailableWithoutHold(t *testing.T) {
	c, mock := newMockCoordinator(t)

	expectCancelReads(mock, bookedDeskRow("desk-1"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WithArgs("desk-1", "b-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE desks`).WithArgs(model.DeskAvailable, "desk-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := c.CancelBooking(context.Background(), "b-1", 1, false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingExpiredHoldDoesNotSurvive(t *testing.T) {
	c, mock := newMockCoordinator(t)

	// The hold's expiry already passed, so the desk reverts all the way
	// to available even though the row is still tagged held.
	expectCancelReads(mock, heldDeskRow("desk-1", cancelNow.Add(-time.Second)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WithArgs("desk-1", "b-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE desks`).WithArgs(model.DeskAvailable, "desk-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := c.CancelBooking(context.Background(), "b-1", 1, false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingLeavesTagWhenOtherBookingsRemain(t *testing.T) {
	c, mock := newMockCoordinator(t)

	// Two other bookings still reference the desk: the booked tag must
	// not be touched.
	expectCancelReads(mock, bookedDeskRow("desk-1"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WithArgs("desk-1", "b-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectCommit()

	_, err := c.CancelBooking(context.Background(), "b-1", 1, false)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingForbiddenForNonOwner(t *testing.T) {
	c, mock := newMockCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id`).WithArgs("b-1").
		WillReturnRows(bookingRowFor("desk-1", 1, "Alice"))
	mock.ExpectRollback()

	_, err := c.CancelBooking(context.Background(), "b-1", 2, false)
	require.ErrorIs(t, err, repository.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingAdminReturnsOwnersBooking(t *testing.T) {
	c, mock := newMockCoordinator(t)

	expectCancelReads(mock, bookedDeskRow("desk-1"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings`).WithArgs("desk-1", "b-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec(`UPDATE desks`).WithArgs(model.DeskAvailable, "desk-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// The admin (user 99) cancels Alice's booking; the returned record
	// carries the owner's identity, not the admin's.
	cancelled, err := c.CancelBooking(context.Background(), "b-1", 99, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cancelled.UserID)
	assert.Equal(t, "Alice", cancelled.UserName)
	assert.Equal(t, "desk-1", cancelled.DeskID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelBookingNotFound(t *testing.T) {
	c, mock := newMockCoordinator(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM bookings WHERE id`).WithArgs("b-404").
		WillReturnRows(sqlmock.NewRows(bookingCols))
	mock.ExpectRollback()

	_, err := c.CancelBooking(context.Background(), "b-404", 1, false)
	require.ErrorIs(t, err, ErrBookingNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
