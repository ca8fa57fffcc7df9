// Package reservation implements the hold/booking coordinator: the
// write-side of the desk reservation flow.  Every mutating operation
// runs its conflict checks and final write inside one transaction with
// the desk row locked, so the check-then-write sequence cannot be
// interleaved by a concurrent request on the same desk.
package reservation

import (
	"errors"
	"fmt"

	"github.com/iliyamo/desk-reservation/internal/availability"
)

// ErrDeskNotFound is returned when the referenced desk id does not
// exist.  Handlers translate it into an HTTP 404 response.
var ErrDeskNotFound = errors.New("desk not found")

// ErrBookingNotFound is returned when a cancellation references a
// booking id that does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// HeldByOtherError reports that another user's active hold overlaps the
// requested range.  The message names the holder so the UI can show who
// is currently selecting the desk.
type HeldByOtherError struct {
	Holder string
}

func (e *HeldByOtherError) Error() string {
	return fmt.Sprintf("desk is currently being selected by %s for this time period", e.Holder)
}

// AlreadyBookedElsewhereError reports that the requesting user already
// holds or booked another desk for an overlapping range.  Users may only
// occupy one desk per timeslot.
type AlreadyBookedElsewhereError struct {
	DeskID string
}

func (e *AlreadyBookedElsewhereError) Error() string {
	return fmt.Sprintf("you already have a booking for desk %s during this time period; you can only book one desk at a time", e.DeskID)
}

// DeskAlreadyBookedError reports that the target desk has a confirmed
// booking overlapping the requested range.  It carries the booker's name
// and the conflicting window so the two-user race recovery path can show
// "X just booked this".
type DeskAlreadyBookedError struct {
	Booker string
	Range  availability.TimeRange
}

func (e *DeskAlreadyBookedError) Error() string {
	return fmt.Sprintf("desk is already booked by %s for this time period", e.Booker)
}

// StoreError wraps an underlying store fault.  It is surfaced as-is with
// no retry in this layer; the realtime feed self-heals visibility.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store: %s: %v", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }

func storeErr(op string, err error) error { return &StoreError{Op: op, Err: err} }

// IsConflict reports whether err is one of the expected, user-recoverable
// conflict outcomes (held by other, booked elsewhere, desk already
// booked).  Handlers translate these into HTTP 409 responses with the
// message shown verbatim.
func IsConflict(err error) bool {
	var held *HeldByOtherError
	var elsewhere *AlreadyBookedElsewhereError
	var booked *DeskAlreadyBookedError
	return errors.As(err, &held) || errors.As(err, &elsewhere) || errors.As(err, &booked)
}
