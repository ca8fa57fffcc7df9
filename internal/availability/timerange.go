// Package availability implements the time-range arithmetic and per-desk
// status derivation used by the reservation coordinator.  Everything in
// this package is pure: callers load desks and bookings from the store
// and pass them in together with the clock reading.
package availability

import (
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/desk-reservation/internal/model"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ValidationError reports malformed or incomplete range input.  The
// message is human-readable and returned to the client verbatim.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TimeRange is a half-open interval [Start, End) in UTC.  Two ranges
// overlap iff start1 < end2 && start2 < end1; adjacent ranges sharing an
// instant boundary do not overlap.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// ParseRange combines (date, time) string pairs into a TimeRange.  Dates
// use "2006-01-02" and times "15:04"; the combined instants are UTC.
// Missing fields or an end at or before the start yield a
// ValidationError.
func ParseRange(fromDate, fromTime, toDate, toTime string) (TimeRange, error) {
	if fromDate == "" || fromTime == "" || toDate == "" || toTime == "" {
		return TimeRange{}, &ValidationError{Msg: "missing required fields: from_date, from_time, to_date, to_time"}
	}
	start, err := time.ParseInLocation(dateLayout+"T"+timeLayout, fromDate+"T"+fromTime, time.UTC)
	if err != nil {
		return TimeRange{}, &ValidationError{Msg: fmt.Sprintf("invalid start: %s %s", fromDate, fromTime)}
	}
	end, err := time.ParseInLocation(dateLayout+"T"+timeLayout, toDate+"T"+toTime, time.UTC)
	if err != nil {
		return TimeRange{}, &ValidationError{Msg: fmt.Sprintf("invalid end: %s %s", toDate, toTime)}
	}
	if !end.After(start) {
		return TimeRange{}, &ValidationError{Msg: "end must be after start"}
	}
	return TimeRange{Start: start, End: end}, nil
}

// Overlaps reports whether the two half-open ranges share at least one
// instant.  The comparison is strict, so a range ending exactly when
// another begins does not overlap it.
func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.Start.Before(other.End) && other.Start.Before(r.End)
}

// StartDate returns the range's start date formatted as "2006-01-02".
// Legacy date-only bookings are matched against this value.
func (r TimeRange) StartDate() string {
	return r.Start.Format(dateLayout)
}

// BookingRange extracts the booking's time window when it is a ranged
// record.  Legacy date-only bookings return false and must be matched by
// MatchesLegacyDate instead; the two addressing schemes are never
// cross-compared as overlapping.
func BookingRange(b *model.Booking) (TimeRange, bool) {
	if !b.Ranged() {
		return TimeRange{}, false
	}
	return TimeRange{Start: *b.FromAt, End: *b.ToAt}, true
}

// MatchesLegacyDate reports whether a legacy date-only booking blocks the
// requested range.  Legacy records are addressed by exact date equality
// with the request's start date.
func MatchesLegacyDate(b *model.Booking, req TimeRange) bool {
	return b.BookingDate != nil && *b.BookingDate == req.StartDate()
}

// HoldRange extracts the desk's hold window when all hold fields are
// present.
func HoldRange(d *model.Desk) (TimeRange, bool) {
	if d.HeldFrom == nil || d.HeldTo == nil {
		return TimeRange{}, false
	}
	return TimeRange{Start: *d.HeldFrom, End: *d.HeldTo}, true
}

// BookedRange extracts the desk row's booked window when present.
func BookedRange(d *model.Desk) (TimeRange, bool) {
	if d.BookedFrom == nil || d.BookedTo == nil {
		return TimeRange{}, false
	}
	return TimeRange{Start: *d.BookedFrom, End: *d.BookedTo}, true
}
