package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidLog = errors.New("invalid routine log data")
)

// RoutineLog records that a routine was marked done. LogDay is the calendar
// day of CompletedAt in the user's location and backs the one-log-per-day rule.
type RoutineLog struct {
	ID        string `json:"id" db:"id"`
	RoutineID string `json:"routine_id" db:"routine_id"`
	UserID    string `json:"user_id" db:"user_id"`

	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
	LogDay      time.Time `json:"log_day" db:"log_day"`
}

func NewRoutineLog(routineID, userID string, completedAt time.Time, loc *time.Location) *RoutineLog {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := completedAt.In(loc).Date()

	return &RoutineLog{
		ID:          uuid.NewString(),
		RoutineID:   routineID,
		UserID:      userID,
		CompletedAt: completedAt.UTC(),
		LogDay:      time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}

func (l *RoutineLog) Validate() error {
	if strings.TrimSpace(l.RoutineID) == "" {
		return fmt.Errorf("%w: routine_id is required", ErrInvalidLog)
	}
	if strings.TrimSpace(l.UserID) == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidLog)
	}
	if l.CompletedAt.IsZero() {
		return fmt.Errorf("%w: completed_at is required", ErrInvalidLog)
	}
	return nil
}
