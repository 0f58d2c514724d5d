package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

func TestCalendar_Day(t *testing.T) {
	t.Run("Nil location is UTC", func(t *testing.T) {
		cal := NewCalendar(nil)

		assert.Equal(t, time.UTC, cal.Location())
		assert.Equal(t, "2024-03-15", cal.Key(time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC)))
	})

	t.Run("Late evening west of UTC stays on the local date", func(t *testing.T) {
		ny, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skipf("tzdata not available: %v", err)
		}
		cal := NewCalendar(ny)

		// 02:00 UTC on the 16th is still the 15th in New York.
		assert.Equal(t, "2024-03-15", cal.Key(time.Date(2024, 3, 16, 2, 0, 0, 0, time.UTC)))
	})

	t.Run("DST change keeps days one apart", func(t *testing.T) {
		ny, err := time.LoadLocation("America/New_York")
		if err != nil {
			t.Skipf("tzdata not available: %v", err)
		}
		cal := NewCalendar(ny)

		before := cal.Day(time.Date(2024, 3, 9, 23, 0, 0, 0, ny))
		after := cal.Day(time.Date(2024, 3, 10, 23, 0, 0, 0, ny))

		assert.Equal(t, 1, daysBetween(before, after))
		assert.Equal(t, after, addDays(before, 1))
	})
}

func TestCalendar_ParseTimestamp(t *testing.T) {
	cal := NewCalendar(time.UTC)

	valid := []struct {
		raw  string
		want time.Time
	}{
		{"2024-03-15T10:30:00Z", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-03-15T10:30:00.123456Z", time.Date(2024, 3, 15, 10, 30, 0, 123456000, time.UTC)},
		{"2024-03-15T12:30:00+02:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-03-15 10:30:00+00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-03-15 10:30:00", time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)},
		{" 2024-03-15 ", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range valid {
		t.Run("Success: "+tt.raw, func(t *testing.T) {
			got, err := cal.ParseTimestamp(tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	for _, raw := range []string{"", "   ", "yesterday", "2024-13-40", "15/03/2024"} {
		t.Run("Malformed: "+raw, func(t *testing.T) {
			_, err := cal.ParseTimestamp(raw)
			assert.ErrorIs(t, err, ErrMalformedTimestamp)
		})
	}
}

func TestDailyOnly(t *testing.T) {
	routines := []domain.RoutineDescriptor{
		{ID: "a", Frequency: domain.FrequencyDaily, IsActive: true},
		{ID: "b", Frequency: domain.FrequencyWeekly, IsActive: true},
		{ID: "c", Frequency: domain.FrequencyDaily, IsActive: false},
		{ID: "d", Frequency: domain.FrequencyDaily, IsActive: true},
	}

	got := DailyOnly(routines)

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "d", got[1].ID)
}

func TestCalendar_Windows(t *testing.T) {
	cal := NewCalendar(time.UTC)

	t.Run("Profile window reaches last month", func(t *testing.T) {
		got := cal.ProfileWindowStart(testNow, 7)
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("Profile window follows a longer lookback", func(t *testing.T) {
		got := cal.ProfileWindowStart(testNow, 60)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got)
	})

	t.Run("Month bounds", func(t *testing.T) {
		from, to := cal.MonthBounds(2024, time.February)
		assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), from)
		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), to)
	})

	t.Run("StartOf uses the location", func(t *testing.T) {
		rome, err := time.LoadLocation("Europe/Rome")
		if err != nil {
			t.Skipf("tzdata not available: %v", err)
		}
		got := NewCalendar(rome).StartOf(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
		assert.Equal(t, time.Date(2024, 3, 14, 23, 0, 0, 0, time.UTC), got.UTC())
	})
}
