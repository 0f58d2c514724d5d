package progress

import (
	"log"
	"time"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

// DefaultMaxWalk bounds how many days a streak walk inspects. A walk that
// reaches it reports the ceiling value and Capped returns true for it.
const DefaultMaxWalk = 60

type Calculator struct {
	cal     Calendar
	maxWalk int
}

func NewCalculator(cal Calendar, maxWalk int) *Calculator {
	if maxWalk < 1 {
		maxWalk = DefaultMaxWalk
	}
	return &Calculator{
		cal:     cal,
		maxWalk: maxWalk,
	}
}

func (c *Calculator) Calendar() Calendar {
	return c.cal
}

func (c *Calculator) MaxWalk() int {
	return c.maxWalk
}

// Capped reports whether a streak value hit the walk ceiling, meaning the
// real streak is at least that long.
func (c *Calculator) Capped(streak int) bool {
	return streak >= c.maxWalk
}

// RoutineStreak counts consecutive completed days for one routine, ending
// today or, when today is still open, yesterday. Days before createdAt never
// count.
func (c *Calculator) RoutineStreak(logs []domain.RoutineLog, routineID string, createdAt *time.Time, now time.Time) (int, error) {
	completed := make(map[string]struct{})
	for _, l := range logs {
		if l.RoutineID != routineID {
			continue
		}
		if l.CompletedAt.IsZero() {
			return 0, missingTime(l)
		}
		completed[c.cal.Key(l.CompletedAt)] = struct{}{}
	}

	if len(completed) == 0 {
		return 0, nil
	}

	var floor *time.Time
	if createdAt != nil && !createdAt.IsZero() {
		day := c.cal.Day(*createdAt)
		floor = &day
	}

	streak := c.walk(c.cal.Day(now), func(day time.Time) bool {
		if floor != nil && day.Before(*floor) {
			return false
		}
		_, ok := completed[day.Format(DateLayout)]
		return ok
	})

	if c.Capped(streak) {
		log.Printf("[STREAK] routine %s reached the %d day walk ceiling", routineID, c.maxWalk)
	}
	return streak, nil
}

// GlobalStreak counts consecutive days on which every daily routine that
// existed that day was completed.
func (c *Calculator) GlobalStreak(logs []domain.RoutineLog, dailyRoutines []domain.RoutineDescriptor, now time.Time) (int, error) {
	if len(dailyRoutines) == 0 {
		return 0, nil
	}

	done, err := c.cal.index(logs)
	if err != nil {
		return 0, err
	}
	r := c.cal.roster(dailyRoutines)

	streak := c.walk(c.cal.Day(now), func(day time.Time) bool {
		return r.satisfied(day, done)
	})

	if c.Capped(streak) {
		log.Printf("[STREAK] global streak reached the %d day walk ceiling", c.maxWalk)
	}
	return streak, nil
}

// walk applies the shared rule: an unfinished today does not break the
// streak, an unfinished yesterday does.
func (c *Calculator) walk(today time.Time, satisfied func(day time.Time) bool) int {
	cursor := today
	if !satisfied(cursor) {
		cursor = addDays(cursor, -1)
		if !satisfied(cursor) {
			return 0
		}
	}

	streak := 1
	cursor = addDays(cursor, -1)
	for streak < c.maxWalk && satisfied(cursor) {
		streak++
		cursor = addDays(cursor, -1)
	}
	return streak
}
