package repository

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-reservation/internal/availability"
)

// fakeRow replays driver values through the same Scan path the mysql
// driver uses.  With parseTime=true the driver hands DATE and DATETIME
// columns over as time.Time, which is what the nullable destinations
// must cope with.
type fakeRow struct {
	values []interface{}
}

func (r *fakeRow) Scan(dest ...interface{}) error {
	if len(dest) != len(r.values) {
		return fmt.Errorf("scan: want %d destinations, got %d", len(r.values), len(dest))
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *string:
			d2, ok := v.(string)
			if !ok {
				return fmt.Errorf("scan: column %d: %T into *string", i, v)
			}
			*d = d2
		case *uint64:
			d2, ok := v.(uint64)
			if !ok {
				return fmt.Errorf("scan: column %d: %T into *uint64", i, v)
			}
			*d = d2
		case *time.Time:
			d2, ok := v.(time.Time)
			if !ok {
				return fmt.Errorf("scan: column %d: %T into *time.Time", i, v)
			}
			*d = d2
		case *sql.NullTime:
			if err := d.Scan(v); err != nil {
				return err
			}
		default:
			return fmt.Errorf("scan: column %d: unsupported destination %T", i, dest[i])
		}
	}
	return nil
}

func bookingRow(fromAt, toAt, bookingDate interface{}) *fakeRow {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	return &fakeRow{values: []interface{}{
		"b-1", "desk-1", uint64(7), "Dana", fromAt, toAt, bookingDate, now, now,
	}}
}

func TestScanBookingRanged(t *testing.T) {
	from := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC)
	b, err := scanBooking(bookingRow(from, to, nil))
	require.NoError(t, err)
	require.NotNil(t, b.FromAt)
	require.NotNil(t, b.ToAt)
	assert.Equal(t, from, *b.FromAt)
	assert.Equal(t, to, *b.ToAt)
	assert.Nil(t, b.BookingDate)
	assert.True(t, b.Ranged())
}

func TestScanBookingLegacyDateStripsTimePart(t *testing.T) {
	// The DATE column arrives as midnight time.Time; the stored form
	// must be the bare date string legacy matching compares against.
	b, err := scanBooking(bookingRow(nil, nil, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	assert.Nil(t, b.FromAt)
	assert.Nil(t, b.ToAt)
	require.NotNil(t, b.BookingDate)
	assert.Equal(t, "2026-09-01", *b.BookingDate)
	assert.False(t, b.Ranged())

	req, err := availability.ParseRange("2026-09-01", "09:00", "2026-09-01", "17:00")
	require.NoError(t, err)
	assert.True(t, availability.MatchesLegacyDate(&b, req))

	other, err := availability.ParseRange("2026-09-02", "09:00", "2026-09-02", "17:00")
	require.NoError(t, err)
	assert.False(t, availability.MatchesLegacyDate(&b, other))
}
