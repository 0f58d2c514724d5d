package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return testNow.AddDate(0, 0, -n)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

func logAt(routineID string, n int) domain.RoutineLog {
	return domain.RoutineLog{ID: routineID + "-log", RoutineID: routineID, CompletedAt: daysAgo(n)}
}

func logsFor(routineID string, days ...int) []domain.RoutineLog {
	out := make([]domain.RoutineLog, 0, len(days))
	for _, d := range days {
		out = append(out, logAt(routineID, d))
	}
	return out
}

func daily(id string, createdDaysAgo int) domain.RoutineDescriptor {
	return domain.RoutineDescriptor{ID: id, CreatedAt: ptrTime(daysAgo(createdDaysAgo)), Frequency: domain.FrequencyDaily, IsActive: true}
}

func newTestCalculator() *Calculator {
	return NewCalculator(NewCalendar(time.UTC), DefaultMaxWalk)
}

func TestCalculator_RoutineStreak(t *testing.T) {
	tests := []struct {
		name      string
		logs      []domain.RoutineLog
		createdAt *time.Time
		want      int
	}{
		{
			name: "No logs",
			logs: nil,
			want: 0,
		},
		{
			name: "Single log today",
			logs: logsFor("r1", 0),
			want: 1,
		},
		{
			name: "Single log yesterday (today still open)",
			logs: logsFor("r1", 1),
			want: 1,
		},
		{
			name: "Single log 2 days ago (streak broken)",
			logs: logsFor("r1", 2),
			want: 0,
		},
		{
			name:      "Yesterday back to a missing day",
			logs:      logsFor("r1", 1, 2, 3),
			createdAt: ptrTime(daysAgo(10)),
			want:      3,
		},
		{
			name: "Today, yesterday and the day before",
			logs: logsFor("r1", 0, 1, 2),
			want: 3,
		},
		{
			name: "Missed day in between resets",
			logs: logsFor("r1", 0, 2),
			want: 1,
		},
		{
			name: "Unsorted logs",
			logs: logsFor("r1", 2, 0, 1),
			want: 3,
		},
		{
			name: "Same day logs count once",
			logs: append(logsFor("r1", 0, 1), domain.RoutineLog{RoutineID: "r1", CompletedAt: testNow.Add(-time.Hour)}),
			want: 2,
		},
		{
			name: "Other routines are ignored",
			logs: append(logsFor("r1", 0), logsFor("r2", 1, 2, 3)...),
			want: 1,
		},
		{
			name:      "Creation date stops the walk",
			logs:      logsFor("r1", 0, 1, 2, 3),
			createdAt: ptrTime(daysAgo(1)),
			want:      2,
		},
		{
			name:      "Created today and done today",
			logs:      logsFor("r1", 0),
			createdAt: ptrTime(testNow.Add(-time.Hour)),
			want:      1,
		},
		{
			name:      "Nil creation date has no floor",
			logs:      logsFor("r1", 0, 1, 2, 3, 4, 5, 6, 7, 8, 9),
			createdAt: nil,
			want:      10,
		},
	}

	calc := newTestCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.RoutineStreak(tt.logs, "r1", tt.createdAt, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculator_RoutineStreak_Properties(t *testing.T) {
	calc := newTestCalculator()

	t.Run("Adding the day before the window extends by one", func(t *testing.T) {
		logs := logsFor("r1", 0, 1, 2)
		before, err := calc.RoutineStreak(logs, "r1", ptrTime(daysAgo(30)), testNow)
		require.NoError(t, err)

		after, err := calc.RoutineStreak(append(logs, logAt("r1", 3)), "r1", ptrTime(daysAgo(30)), testNow)
		require.NoError(t, err)

		assert.Equal(t, before+1, after)
	})

	t.Run("Adding a day before creation changes nothing", func(t *testing.T) {
		logs := logsFor("r1", 0, 1, 2)
		before, _ := calc.RoutineStreak(logs, "r1", ptrTime(daysAgo(2)), testNow)
		after, _ := calc.RoutineStreak(append(logs, logAt("r1", 3)), "r1", ptrTime(daysAgo(2)), testNow)

		assert.Equal(t, 3, before)
		assert.Equal(t, before, after)
	})

	t.Run("Ceiling caps the walk and is reported", func(t *testing.T) {
		capped := NewCalculator(NewCalendar(time.UTC), 5)

		got, err := capped.RoutineStreak(logsFor("r1", 0, 1, 2, 3, 4, 5, 6, 7, 8, 9), "r1", nil, testNow)

		require.NoError(t, err)
		assert.Equal(t, 5, got)
		assert.True(t, capped.Capped(got))
		assert.False(t, capped.Capped(4))
	})

	t.Run("Non-positive ceiling falls back to default", func(t *testing.T) {
		assert.Equal(t, DefaultMaxWalk, NewCalculator(NewCalendar(nil), 0).MaxWalk())
	})

	t.Run("Default ceiling is sixty", func(t *testing.T) {
		days := make([]int, 90)
		for i := range days {
			days[i] = i
		}

		got, err := calc.RoutineStreak(logsFor("r1", days...), "r1", nil, testNow)

		require.NoError(t, err)
		assert.Equal(t, 60, got)
		assert.True(t, calc.Capped(got))
	})

	t.Run("Zero completion time fails fast", func(t *testing.T) {
		logs := []domain.RoutineLog{logAt("r1", 0), {ID: "bad", RoutineID: "r1"}}

		_, err := calc.RoutineStreak(logs, "r1", nil, testNow)

		assert.ErrorIs(t, err, ErrMalformedTimestamp)
	})

	t.Run("Calendar day follows the location", func(t *testing.T) {
		tokyo, err := time.LoadLocation("Asia/Tokyo")
		if err != nil {
			t.Skipf("tzdata not available: %v", err)
		}
		logs := []domain.RoutineLog{
			{RoutineID: "r1", CompletedAt: time.Date(2024, 3, 14, 23, 30, 0, 0, time.UTC)},
			{RoutineID: "r1", CompletedAt: time.Date(2024, 3, 14, 1, 0, 0, 0, time.UTC)},
		}

		utc, _ := calc.RoutineStreak(logs, "r1", nil, testNow)
		local, _ := NewCalculator(NewCalendar(tokyo), DefaultMaxWalk).RoutineStreak(logs, "r1", nil, testNow)

		assert.Equal(t, 1, utc, "both logs fall on the 14th in UTC")
		assert.Equal(t, 2, local, "in Tokyo they fall on the 14th and the 15th")
	})
}

func TestCalculator_GlobalStreak(t *testing.T) {
	tests := []struct {
		name     string
		routines []domain.RoutineDescriptor
		logs     []domain.RoutineLog
		want     int
	}{
		{
			name:     "No daily routines",
			routines: nil,
			logs:     logsFor("a", 0, 1, 2),
			want:     0,
		},
		{
			name:     "Today open, two full days before",
			routines: []domain.RoutineDescriptor{daily("a", 5), daily("b", 5)},
			logs:     append(logsFor("a", 0, 1, 2), logsFor("b", 1, 2)...),
			want:     2,
		},
		{
			name:     "All done today and before",
			routines: []domain.RoutineDescriptor{daily("a", 5), daily("b", 5)},
			logs:     append(logsFor("a", 0, 1, 2), logsFor("b", 0, 1, 2)...),
			want:     3,
		},
		{
			name:     "Routine created today only counts from today",
			routines: []domain.RoutineDescriptor{daily("a", 5), daily("b", 0)},
			logs:     append(logsFor("a", 0, 1, 2), logsFor("b", 0)...),
			want:     3,
		},
		{
			name:     "Routine created today still open",
			routines: []domain.RoutineDescriptor{daily("a", 5), daily("b", 0)},
			logs:     logsFor("a", 0, 1, 2),
			want:     2,
		},
		{
			name:     "Day with nothing eligible is not satisfied",
			routines: []domain.RoutineDescriptor{daily("a", 0)},
			logs:     logsFor("a", 0),
			want:     1,
		},
		{
			name:     "Missed yesterday and today",
			routines: []domain.RoutineDescriptor{daily("a", 5)},
			logs:     logsFor("a", 2, 3),
			want:     0,
		},
		{
			name:     "Logs of unknown routines do not help",
			routines: []domain.RoutineDescriptor{daily("a", 5)},
			logs:     logsFor("ghost", 0, 1, 2),
			want:     0,
		},
		{
			name: "Nil creation date always eligible",
			routines: []domain.RoutineDescriptor{
				{ID: "a", Frequency: domain.FrequencyDaily, IsActive: true},
			},
			logs: logsFor("a", 1, 2, 3, 4),
			want: 4,
		},
	}

	calc := newTestCalculator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.GlobalStreak(tt.logs, tt.routines, testNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCalculator_GlobalStreak_Properties(t *testing.T) {
	calc := newTestCalculator()

	t.Run("Idempotent and does not mutate inputs", func(t *testing.T) {
		routines := []domain.RoutineDescriptor{daily("a", 5), daily("b", 5)}
		logs := append(logsFor("a", 0, 1, 2), logsFor("b", 1, 2)...)
		logsCopy := append([]domain.RoutineLog(nil), logs...)
		routinesCopy := append([]domain.RoutineDescriptor(nil), routines...)

		first, err1 := calc.GlobalStreak(logs, routines, testNow)
		second, err2 := calc.GlobalStreak(logs, routines, testNow)

		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, first, second)
		assert.Equal(t, logsCopy, logs)
		assert.Equal(t, routinesCopy, routines)
	})

	t.Run("Ceiling applies to the global walk", func(t *testing.T) {
		capped := NewCalculator(NewCalendar(time.UTC), 3)

		got, err := capped.GlobalStreak(logsFor("a", 0, 1, 2, 3, 4), []domain.RoutineDescriptor{daily("a", 30)}, testNow)

		require.NoError(t, err)
		assert.Equal(t, 3, got)
		assert.True(t, capped.Capped(got))
	})

	t.Run("Zero completion time fails fast", func(t *testing.T) {
		_, err := calc.GlobalStreak([]domain.RoutineLog{{RoutineID: "a"}}, []domain.RoutineDescriptor{daily("a", 5)}, testNow)

		assert.ErrorIs(t, err, ErrMalformedTimestamp)
	})
}
