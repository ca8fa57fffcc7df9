package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/desk-reservation/internal/model"
)

func mustRange(t *testing.T, fromDate, fromTime, toDate, toTime string) TimeRange {
	t.Helper()
	r, err := ParseRange(fromDate, fromTime, toDate, toTime)
	require.NoError(t, err)
	return r
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("2026-09-01", "09:00", "2026-09-01", "17:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC), r.End)
	assert.Equal(t, "2026-09-01", r.StartDate())
}

func TestParseRangeMultiDay(t *testing.T) {
	r, err := ParseRange("2026-09-01", "22:00", "2026-09-02", "06:00")
	require.NoError(t, err)
	assert.True(t, r.End.After(r.Start))
}

func TestParseRangeRejectsMissingFields(t *testing.T) {
	_, err := ParseRange("", "09:00", "2026-09-01", "17:00")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = ParseRange("2026-09-01", "09:00", "2026-09-01", "")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestParseRangeRejectsMalformedInput(t *testing.T) {
	_, err := ParseRange("01-09-2026", "09:00", "2026-09-01", "17:00")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = ParseRange("2026-09-01", "9am", "2026-09-01", "17:00")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestParseRangeRejectsInvertedOrEmptyWindow(t *testing.T) {
	_, err := ParseRange("2026-09-01", "17:00", "2026-09-01", "09:00")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// Zero-length window is also invalid.
	_, err = ParseRange("2026-09-01", "09:00", "2026-09-01", "09:00")
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestOverlapsIsSymmetric(t *testing.T) {
	a := mustRange(t, "2026-09-01", "09:00", "2026-09-01", "12:00")
	b := mustRange(t, "2026-09-01", "11:00", "2026-09-01", "14:00")
	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
}

func TestOverlapsSelf(t *testing.T) {
	a := mustRange(t, "2026-09-01", "09:00", "2026-09-01", "12:00")
	assert.True(t, a.Overlaps(a))
}

func TestOverlapsContainment(t *testing.T) {
	outer := mustRange(t, "2026-09-01", "08:00", "2026-09-01", "18:00")
	inner := mustRange(t, "2026-09-01", "10:00", "2026-09-01", "11:00")
	assert.True(t, outer.Overlaps(inner))
	assert.True(t, inner.Overlaps(outer))
}

func TestAdjacentRangesDoNotOverlap(t *testing.T) {
	morning := mustRange(t, "2026-09-01", "09:00", "2026-09-01", "12:00")
	afternoon := mustRange(t, "2026-09-01", "12:00", "2026-09-01", "17:00")
	assert.False(t, morning.Overlaps(afternoon))
	assert.False(t, afternoon.Overlaps(morning))
}

func TestDisjointRangesDoNotOverlap(t *testing.T) {
	a := mustRange(t, "2026-09-01", "09:00", "2026-09-01", "10:00")
	b := mustRange(t, "2026-09-02", "09:00", "2026-09-02", "10:00")
	assert.False(t, a.Overlaps(b))
}

func TestBookingRange(t *testing.T) {
	from := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	to := time.Date(2026, 9, 1, 17, 0, 0, 0, time.UTC)
	b := model.Booking{FromAt: &from, ToAt: &to}
	r, ok := BookingRange(&b)
	require.True(t, ok)
	assert.Equal(t, from, r.Start)
	assert.Equal(t, to, r.End)

	legacy := "2026-09-01"
	lb := model.Booking{BookingDate: &legacy}
	_, ok = BookingRange(&lb)
	assert.False(t, ok)
}

func TestMatchesLegacyDate(t *testing.T) {
	req := mustRange(t, "2026-09-01", "09:00", "2026-09-01", "17:00")

	same := "2026-09-01"
	other := "2026-09-02"
	assert.True(t, MatchesLegacyDate(&model.Booking{BookingDate: &same}, req))
	assert.False(t, MatchesLegacyDate(&model.Booking{BookingDate: &other}, req))
	assert.False(t, MatchesLegacyDate(&model.Booking{}, req))

	// A legacy record is matched by the request's start date only, even
	// when the request spans midnight into the record's date.
	overnight := mustRange(t, "2026-09-01", "22:00", "2026-09-02", "06:00")
	assert.False(t, MatchesLegacyDate(&model.Booking{BookingDate: &other}, overnight))
}
