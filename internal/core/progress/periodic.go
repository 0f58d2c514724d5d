package progress

import (
	"time"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

// PeriodStart returns the first day of the period containing today. Weeks
// start on Monday. Daily routines have a one-day period.
func PeriodStart(frequency string, today time.Time) time.Time {
	switch frequency {
	case domain.FrequencyWeekly:
		offset := (int(today.Weekday()) + 6) % 7
		return addDays(today, -offset)
	case domain.FrequencyMonthly:
		return monthStart(today)
	case domain.FrequencyYearly:
		return time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return today
	}
}

// PeriodProgress counts the distinct days in the current period on which the
// routine was completed, against its target count.
func (c Calendar) PeriodProgress(routine *domain.Routine, logs []domain.RoutineLog, now time.Time) (domain.PeriodProgress, error) {
	today := c.Day(now)
	start := PeriodStart(routine.Frequency, today)

	days := make(map[string]struct{})
	for _, l := range logs {
		if l.RoutineID != routine.ID {
			continue
		}
		if l.CompletedAt.IsZero() {
			return domain.PeriodProgress{}, missingTime(l)
		}
		day := c.Day(l.CompletedAt)
		if day.Before(start) || day.After(today) {
			continue
		}
		days[day.Format(DateLayout)] = struct{}{}
	}

	goal := routine.TargetCount
	if goal < 1 {
		goal = 1
	}

	percent := rate(len(days), goal)
	if percent > 100 {
		percent = 100
	}

	return domain.PeriodProgress{
		Period:      routine.Frequency,
		PeriodStart: start.Format(DateLayout),
		Progress:    len(days),
		Goal:        goal,
		Percent:     percent,
	}, nil
}

// LogOn returns the routine's log dated on the calendar day of at, if any.
func (c Calendar) LogOn(logs []domain.RoutineLog, routineID string, at time.Time) (domain.RoutineLog, bool) {
	key := c.Key(at)
	for _, l := range logs {
		if l.RoutineID == routineID && !l.CompletedAt.IsZero() && c.Key(l.CompletedAt) == key {
			return l, true
		}
	}
	return domain.RoutineLog{}, false
}
