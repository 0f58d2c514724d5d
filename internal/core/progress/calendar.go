// Package progress turns a snapshot of routine logs into streaks and
// completion rates. Nothing here performs I/O; "now" is always passed in.
package progress

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

const DateLayout = "2006-01-02"

var ErrMalformedTimestamp = errors.New("malformed timestamp")

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-07",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	DateLayout,
}

// Calendar is the single date policy: instants are reduced to the calendar
// day they fall on in Location. Days are represented as midnight UTC values
// carrying that local date, so AddDate and Sub never see DST shifts.
type Calendar struct {
	loc *time.Location
}

func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return Calendar{loc: loc}
}

func (c Calendar) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func (c Calendar) Day(t time.Time) time.Time {
	y, m, d := t.In(c.Location()).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (c Calendar) Key(t time.Time) string {
	return c.Day(t).Format(DateLayout)
}

// StartOf returns the instant a day begins in the calendar's location.
func (c Calendar) StartOf(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.Location())
}

// ParseTimestamp parses the timestamp shapes the data layer emits. Values
// without a zone are read in the calendar's location.
func (c Calendar) ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrMalformedTimestamp)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, c.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, raw)
}

func addDays(day time.Time, n int) time.Time {
	return day.AddDate(0, 0, n)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func monthStart(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// completions maps a day key to the set of routine ids completed that day.
type completions map[string]map[string]struct{}

// index groups logs by calendar day once per call. A zero timestamp is
// treated as corrupt data rather than "not completed".
func (c Calendar) index(logs []domain.RoutineLog) (completions, error) {
	byDay := make(completions)
	for _, l := range logs {
		if l.CompletedAt.IsZero() {
			return nil, missingTime(l)
		}
		key := c.Key(l.CompletedAt)
		if _, ok := byDay[key]; !ok {
			byDay[key] = make(map[string]struct{})
		}
		byDay[key][l.RoutineID] = struct{}{}
	}
	return byDay, nil
}

func missingTime(l domain.RoutineLog) error {
	return fmt.Errorf("%w: log %q for routine %q has no completion time", ErrMalformedTimestamp, l.ID, l.RoutineID)
}

func (cs completions) has(day time.Time, routineID string) bool {
	_, ok := cs[day.Format(DateLayout)][routineID]
	return ok
}

// sortedDays returns the days holding at least one log, oldest first.
func (cs completions) sortedDays() []time.Time {
	days := make([]time.Time, 0, len(cs))
	for key := range cs {
		d, err := time.Parse(DateLayout, key)
		if err != nil {
			continue
		}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})
	return days
}

// roster is the set of routines checked on each day, with their creation
// days precomputed.
type roster struct {
	ids     []string
	created []*time.Time
}

func (c Calendar) roster(routines []domain.RoutineDescriptor) roster {
	r := roster{
		ids:     make([]string, 0, len(routines)),
		created: make([]*time.Time, 0, len(routines)),
	}
	for _, rt := range routines {
		r.ids = append(r.ids, rt.ID)
		if rt.CreatedAt == nil || rt.CreatedAt.IsZero() {
			r.created = append(r.created, nil)
			continue
		}
		day := c.Day(*rt.CreatedAt)
		r.created = append(r.created, &day)
	}
	return r
}

func (r roster) eligible(i int, day time.Time) bool {
	return r.created[i] == nil || !day.Before(*r.created[i])
}

// tally counts the routines eligible on day and how many of them were completed.
func (r roster) tally(day time.Time, done completions) (eligible, completed int) {
	for i, id := range r.ids {
		if !r.eligible(i, day) {
			continue
		}
		eligible++
		if done.has(day, id) {
			completed++
		}
	}
	return eligible, completed
}

// satisfied reports whether every routine eligible on day was completed.
// A day with nothing eligible is never satisfied.
func (r roster) satisfied(day time.Time, done completions) bool {
	eligible, completed := r.tally(day, done)
	return eligible > 0 && completed == eligible
}

// rate is round(completed/expected*100) with halves rounded up, in integer
// arithmetic.
func rate(completed, expected int) int {
	if expected <= 0 {
		return 0
	}
	return (200*completed + expected) / (2 * expected)
}

// DailyOnly keeps the active daily routines; only these take part in global
// streaks and completion rates.
func DailyOnly(routines []domain.RoutineDescriptor) []domain.RoutineDescriptor {
	out := make([]domain.RoutineDescriptor, 0, len(routines))
	for _, r := range routines {
		if r.Frequency == domain.FrequencyDaily && r.IsActive {
			out = append(out, r)
		}
	}
	return out
}
