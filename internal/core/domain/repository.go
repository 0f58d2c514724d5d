package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRoutineNotFound  = errors.New("routine not found")
	ErrLogNotFound      = errors.New("routine log not found")
	ErrAlreadyCompleted = errors.New("routine already completed for this day")
	ErrUnauthorized     = errors.New("unauthorized access to resource")
)

type RoutineRepository interface {
	// Create persists a new routine definition in the storage.
	Create(ctx context.Context, routine *Routine) error

	// GetByID retrieves an active routine by its unique identifier.
	GetByID(ctx context.Context, id string) (*Routine, error)

	// ListActiveByUserID retrieves the user's active routines ordered by sort order.
	ListActiveByUserID(ctx context.Context, userID string) ([]*Routine, error)

	// Update modifies the state of an existing routine.
	Update(ctx context.Context, routine *Routine) error

	// Deactivate soft-deletes a routine by clearing its active flag.
	Deactivate(ctx context.Context, id string) error

	// Reorder applies all sort orders for the user's routines atomically.
	Reorder(ctx context.Context, userID string, order []RoutineOrder) error
}

type RoutineLogRepository interface {
	// Create persists a new log. A second log for the same routine and LogDay
	// must fail with ErrAlreadyCompleted.
	Create(ctx context.Context, log *RoutineLog) error

	// GetByID retrieves a single log by its ID.
	GetByID(ctx context.Context, id string) (*RoutineLog, error)

	// Delete removes the log. It requires userID to ensure the user owns it.
	Delete(ctx context.Context, id string, userID string) error

	// ListByUserID returns the user's logs with completed_at in [from, to].
	ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]RoutineLog, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
