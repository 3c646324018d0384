package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b Date
		want int
	}{
		{name: "same day", a: "2026-01-14", b: "2026-01-14", want: 0},
		{name: "next day", a: "2026-01-14", b: "2026-01-13", want: 1},
		{name: "one skipped", a: "2026-01-14", b: "2026-01-12", want: 2},
		{name: "backwards", a: "2026-01-12", b: "2026-01-14", want: -2},
		{name: "month boundary", a: "2026-03-01", b: "2026-02-28", want: 1},
		{name: "leap day", a: "2028-03-01", b: "2028-02-28", want: 2},
		{name: "year boundary", a: "2027-01-01", b: "2026-12-31", want: 1},
		{name: "us dst start", a: "2026-03-09", b: "2026-03-08", want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DaysBetween(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDaysBetweenRejectsMalformedDate(t *testing.T) {
	_, err := DaysBetween("2026-13-01", "2026-01-01")
	assert.ErrorIs(t, err, ErrInvalidDate)

	_, err = ParseDate("14/01/2026")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestDateAddDays(t *testing.T) {
	d, err := Date("2026-12-31").AddDays(1)
	require.NoError(t, err)
	assert.Equal(t, Date("2027-01-01"), d)

	d, err = Date("2026-03-01").AddDays(-1)
	require.NoError(t, err)
	assert.Equal(t, Date("2026-02-28"), d)
}

func TestResolveDateTimezoneBoundary(t *testing.T) {
	r := NewResolver(NewFakeClock(time.Time{}), nil)

	late := time.Date(2026, 1, 6, 23, 59, 0, 0, time.UTC)
	early := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		tz        string
		lateWant  Date
		earlyWant Date
	}{
		{tz: "UTC", lateWant: "2026-01-06", earlyWant: "2026-01-06"},
		{tz: "Asia/Tokyo", lateWant: "2026-01-07", earlyWant: "2026-01-06"},
		{tz: "America/Los_Angeles", lateWant: "2026-01-06", earlyWant: "2026-01-05"},
		{tz: "Pacific/Kiritimati", lateWant: "2026-01-07", earlyWant: "2026-01-06"},
	}

	for _, tt := range tests {
		t.Run(tt.tz, func(t *testing.T) {
			for i := 0; i < 3; i++ {
				got, err := r.ResolveDate(late, tt.tz)
				require.NoError(t, err)
				assert.Equal(t, tt.lateWant, got)

				got, err = r.ResolveDate(early, tt.tz)
				require.NoError(t, err)
				assert.Equal(t, tt.earlyWant, got)
			}
		})
	}
}

func TestResolveDateAcrossDST(t *testing.T) {
	r := NewResolver(NewFakeClock(time.Time{}), nil)

	// 2026-03-08 02:00 local is skipped in New York.
	before := time.Date(2026, 3, 8, 6, 30, 0, 0, time.UTC)
	after := time.Date(2026, 3, 9, 3, 59, 0, 0, time.UTC)

	d1, err := r.ResolveDate(before, "America/New_York")
	require.NoError(t, err)
	d2, err := r.ResolveDate(after, "America/New_York")
	require.NoError(t, err)

	assert.Equal(t, Date("2026-03-08"), d1)
	assert.Equal(t, Date("2026-03-08"), d2)
}

func TestResolverFallbackAndInvalidZone(t *testing.T) {
	fc := NewFakeClock(time.Date(2026, 1, 6, 20, 0, 0, 0, time.UTC))
	r := NewResolver(fc, func() string { return "Asia/Jakarta" })

	today, err := r.Today("")
	require.NoError(t, err)
	assert.Equal(t, Date("2026-01-07"), today)

	name, err := r.Normalize("  ")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Jakarta", name)

	_, err = r.Today("Mars/Olympus")
	assert.ErrorIs(t, err, ErrInvalidTimezone)

	_, err = r.Location("Local")
	assert.ErrorIs(t, err, ErrInvalidTimezone)
}

func TestFakeClockAdvance(t *testing.T) {
	start := time.Date(2026, 1, 6, 23, 0, 0, 0, time.UTC)
	fc := NewFakeClock(start)
	r := NewResolver(fc, nil)

	today, err := r.Today("UTC")
	require.NoError(t, err)
	assert.Equal(t, Date("2026-01-06"), today)

	fc.Advance(2 * time.Hour)

	today, err = r.Today("UTC")
	require.NoError(t, err)
	assert.Equal(t, Date("2026-01-07"), today)
}
