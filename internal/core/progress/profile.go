package progress

import (
	"time"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

const SeriesDays = 28

// Aggregator builds the profile view numbers. It reuses the Calculator for
// the global streak so both views agree on what a satisfied day is.
type Aggregator struct {
	calc *Calculator
}

func NewAggregator(calc *Calculator) *Aggregator {
	return &Aggregator{calc: calc}
}

func (a *Aggregator) Calculator() *Calculator {
	return a.calc
}

// MonthlyCompletionRate is the share of eligible routine-days completed
// between periodStart and periodEnd, inclusive, with the end capped at today.
// Each day's denominator only includes routines that existed on that day.
func (a *Aggregator) MonthlyCompletionRate(routines []domain.RoutineDescriptor, logs []domain.RoutineLog, periodStart, periodEnd, now time.Time) (int, error) {
	cal := a.calc.Calendar()
	done, err := cal.index(logs)
	if err != nil {
		return 0, err
	}
	return rangeRate(cal.roster(routines), done, cal.Day(periodStart), cal.Day(periodEnd), cal.Day(now)), nil
}

// MonthlyRateForMonth is MonthlyCompletionRate over one calendar month.
func (a *Aggregator) MonthlyRateForMonth(routines []domain.RoutineDescriptor, logs []domain.RoutineLog, year int, month time.Month, now time.Time) (int, error) {
	cal := a.calc.Calendar()
	done, err := cal.index(logs)
	if err != nil {
		return 0, err
	}
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := addDays(start.AddDate(0, 1, 0), -1)
	return rangeRate(cal.roster(routines), done, start, end, cal.Day(now)), nil
}

// MonthBounds returns the instants a calendar month starts and ends at.
// The end is exclusive.
func (c Calendar) MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return c.StartOf(start), c.StartOf(start.AddDate(0, 1, 0))
}

// ProfileWindowStart is the earliest instant Profile needs logs from:
// lookbackDays before today, or the first day of last month when that is
// earlier.
func (c Calendar) ProfileWindowStart(now time.Time, lookbackDays int) time.Time {
	today := c.Day(now)
	from := addDays(today, -lookbackDays)
	if lastMonth := monthStart(addDays(monthStart(today), -1)); lastMonth.Before(from) {
		from = lastMonth
	}
	return c.StartOf(from)
}

func rangeRate(r roster, done completions, start, end, today time.Time) int {
	if end.After(today) {
		end = today
	}

	expected, completed := 0, 0
	for day := start; !day.After(end); day = addDays(day, 1) {
		e, c := r.tally(day, done)
		expected += e
		completed += c
	}
	return rate(completed, expected)
}

// Last28Days returns one point per day for the 28 days ending today, oldest
// first. Days without any eligible routine report 0.
func (a *Aggregator) Last28Days(routines []domain.RoutineDescriptor, logs []domain.RoutineLog, now time.Time) ([]domain.DailyCompletion, error) {
	cal := a.calc.Calendar()
	done, err := cal.index(logs)
	if err != nil {
		return nil, err
	}
	return series(cal.roster(routines), done, cal.Day(now)), nil
}

func series(r roster, done completions, today time.Time) []domain.DailyCompletion {
	points := make([]domain.DailyCompletion, 0, SeriesDays)
	for i := SeriesDays - 1; i >= 0; i-- {
		day := addDays(today, -i)
		e, c := r.tally(day, done)
		points = append(points, domain.DailyCompletion{
			Date:           day.Format(DateLayout),
			CompletionRate: rate(c, e),
		})
	}
	return points
}

// EmptySeries is the 28-day series for a user without daily routines.
func EmptySeries(cal Calendar, now time.Time) []domain.DailyCompletion {
	return series(roster{}, nil, cal.Day(now))
}

// LongestStreak is the longest run of consecutive satisfied days anywhere in
// the snapshot. Only days holding a log are visited; a skipped day breaks
// contiguity through the calendar day difference.
func (a *Aggregator) LongestStreak(routines []domain.RoutineDescriptor, logs []domain.RoutineLog) (int, error) {
	if len(routines) == 0 || len(logs) == 0 {
		return 0, nil
	}

	cal := a.calc.Calendar()
	done, err := cal.index(logs)
	if err != nil {
		return 0, err
	}
	return longestRun(cal.roster(routines), done), nil
}

func longestRun(r roster, done completions) int {
	longest, run := 0, 0
	var prev *time.Time

	for _, day := range done.sortedDays() {
		if !r.satisfied(day, done) {
			run = 0
			prev = nil
			continue
		}

		if prev != nil && daysBetween(*prev, day) == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}

		d := day
		prev = &d
	}
	return longest
}

// Profile assembles every number shown on the progress view. dailyRoutines
// must already be restricted to active daily routines.
func (a *Aggregator) Profile(dailyRoutines []domain.RoutineDescriptor, logs []domain.RoutineLog, now time.Time) (*domain.ProfileStats, error) {
	cal := a.calc.Calendar()
	today := cal.Day(now)

	stats := &domain.ProfileStats{
		TotalCompletions: len(logs),
		GeneratedFor:     today.Format(DateLayout),
	}

	if len(dailyRoutines) == 0 {
		stats.Last28Days = EmptySeries(cal, now)
		stats.TotalCompletions = 0
		return stats, nil
	}

	done, err := cal.index(logs)
	if err != nil {
		return nil, err
	}
	r := cal.roster(dailyRoutines)

	thisMonthStart := monthStart(today)
	lastMonthEnd := addDays(thisMonthStart, -1)
	lastMonthStart := monthStart(lastMonthEnd)

	stats.ThisMonthRate = rangeRate(r, done, thisMonthStart, today, today)
	stats.LastMonthRate = rangeRate(r, done, lastMonthStart, lastMonthEnd, today)
	stats.MonthDiff = stats.ThisMonthRate - stats.LastMonthRate
	stats.Last28Days = series(r, done, today)
	stats.LongestStreak = longestRun(r, done)

	global, err := a.calc.GlobalStreak(logs, dailyRoutines, now)
	if err != nil {
		return nil, err
	}
	stats.GlobalStreak = global
	stats.GlobalStreakCapped = a.calc.Capped(global)

	return stats, nil
}
