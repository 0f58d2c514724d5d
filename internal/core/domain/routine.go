package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRoutineTitleEmpty    = errors.New("routine title cannot be empty")
	ErrRoutineTitleTooLong  = errors.New("routine title is too long (max 100 chars)")
	ErrRoutineInvalidUserID = errors.New("invalid user id")
	ErrInvalidFrequency     = errors.New("invalid frequency (must be daily, weekly, monthly, or yearly)")
	ErrInvalidTargetCount   = errors.New("target count must be at least 1")
	ErrInvalidReminder      = errors.New("invalid reminder format (must be HH:MM 24h)")
	ErrRoutineInactive      = errors.New("cannot modify an inactive routine")
	ErrInvalidOrder         = errors.New("invalid routine order")
)

var reminderRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"
	MaxTitleLen      = 100
)

type Routine struct {
	ID           string    `json:"id" db:"id"`
	UserID       string    `json:"user_id" db:"user_id"`
	Title        string    `json:"title" db:"title"`
	Frequency    string    `json:"frequency" db:"frequency"`
	TargetCount  int       `json:"target_count" db:"target_count"`
	ReminderTime *string   `json:"reminder_time,omitempty" db:"reminder_time"`
	SortOrder    int       `json:"sort_order" db:"sort_order"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// RoutineDescriptor is the part of a routine that streak and rate math reads.
// A nil CreatedAt means the routine has always existed.
type RoutineDescriptor struct {
	ID        string     `json:"id"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	Frequency string     `json:"frequency"`
	IsActive  bool       `json:"is_active"`
}

// RoutineOrder is one element of a reorder request.
type RoutineOrder struct {
	ID        string `json:"id" db:"id"`
	SortOrder int    `json:"sort_order" db:"sort_order"`
}

func IsValidFrequency(freq string) bool {
	switch freq {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

func validateAndNormalize(title, freq, reminder string, target int) (string, string, int, error) {
	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle == "" {
		return "", "", 0, ErrRoutineTitleEmpty
	}
	if len(trimmedTitle) > MaxTitleLen {
		return "", "", 0, ErrRoutineTitleTooLong
	}

	if freq == "" {
		freq = FrequencyDaily
	}
	if !IsValidFrequency(freq) {
		return "", "", 0, ErrInvalidFrequency
	}

	if reminder != "" && !reminderRegex.MatchString(reminder) {
		return "", "", 0, ErrInvalidReminder
	}

	finalTarget := target
	if freq == FrequencyDaily {
		finalTarget = 1
	} else if target < 1 {
		return "", "", 0, ErrInvalidTargetCount
	}

	return trimmedTitle, freq, finalTarget, nil
}

func NewRoutine(userID, title, frequency, reminder string, target int) (*Routine, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrRoutineInvalidUserID
	}

	cleanTitle, freq, safeTarget, err := validateAndNormalize(title, frequency, reminder, target)
	if err != nil {
		return nil, err
	}

	var remPtr *string
	if reminder != "" {
		remPtr = &reminder
	}

	now := time.Now().UTC()

	return &Routine{
		ID:           uuid.New().String(),
		UserID:       userID,
		Title:        cleanTitle,
		Frequency:    freq,
		TargetCount:  safeTarget,
		ReminderTime: remPtr,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func (r *Routine) Update(title, frequency, reminder string, target int) error {
	if !r.IsActive {
		return ErrRoutineInactive
	}

	cleanTitle, freq, safeTarget, err := validateAndNormalize(title, frequency, reminder, target)
	if err != nil {
		return err
	}

	var remPtr *string
	if reminder != "" {
		remPtr = &reminder
	}

	r.Title = cleanTitle
	r.Frequency = freq
	r.TargetCount = safeTarget
	r.ReminderTime = remPtr
	r.UpdatedAt = time.Now().UTC()

	return nil
}

func (r *Routine) ChangePosition(newOrder int) error {
	if !r.IsActive {
		return ErrRoutineInactive
	}

	r.SortOrder = newOrder
	r.UpdatedAt = time.Now().UTC()
	return nil
}

// Deactivate soft-deletes the routine; its logs stay in place.
func (r *Routine) Deactivate() {
	if !r.IsActive {
		return
	}
	r.IsActive = false
	r.UpdatedAt = time.Now().UTC()
}

func (r *Routine) Descriptor() RoutineDescriptor {
	d := RoutineDescriptor{
		ID:        r.ID,
		Frequency: r.Frequency,
		IsActive:  r.IsActive,
	}
	if !r.CreatedAt.IsZero() {
		created := r.CreatedAt
		d.CreatedAt = &created
	}
	return d
}

func Descriptors(routines []*Routine) []RoutineDescriptor {
	out := make([]RoutineDescriptor, 0, len(routines))
	for _, r := range routines {
		out = append(out, r.Descriptor())
	}
	return out
}
