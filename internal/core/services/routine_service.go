package services

import (
	"context"
	"fmt"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/workers"
)

type RoutineService struct {
	repo   domain.RoutineRepository
	worker *workers.StatsWorker
}

func NewRoutineService(repo domain.RoutineRepository, worker *workers.StatsWorker) *RoutineService {
	return &RoutineService{
		repo:   repo,
		worker: worker,
	}
}

type CreateRoutineInput struct {
	UserID       string
	Title        string
	Frequency    string
	ReminderTime string
	TargetCount  int
}

type UpdateRoutineInput struct {
	ID           string
	UserID       string
	Title        string
	Frequency    string
	ReminderTime string
	TargetCount  int
}

func mergeString(newVal, oldVal string) string {
	if newVal == "" {
		return oldVal
	}
	return newVal
}

func (s *RoutineService) Create(ctx context.Context, input CreateRoutineInput) (*domain.Routine, error) {
	routine, err := domain.NewRoutine(input.UserID, input.Title, input.Frequency, input.ReminderTime, input.TargetCount)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.ListActiveByUserID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	next := 0
	for _, r := range existing {
		if r.SortOrder >= next {
			next = r.SortOrder + 1
		}
	}
	routine.SortOrder = next

	if err := s.repo.Create(ctx, routine); err != nil {
		return nil, err
	}

	s.worker.Enqueue(input.UserID, "")

	return routine, nil
}

func (s *RoutineService) List(ctx context.Context, userID string) ([]*domain.Routine, error) {
	return s.repo.ListActiveByUserID(ctx, userID)
}

func (s *RoutineService) Update(ctx context.Context, input UpdateRoutineInput) (*domain.Routine, error) {
	routine, err := s.repo.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if routine.UserID != input.UserID {
		return nil, domain.ErrRoutineNotFound
	}

	title := mergeString(input.Title, routine.Title)
	frequency := mergeString(input.Frequency, routine.Frequency)

	target := routine.TargetCount
	if input.TargetCount > 0 {
		target = input.TargetCount
	}

	if err := routine.Update(title, frequency, input.ReminderTime, target); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, routine); err != nil {
		return nil, err
	}

	s.worker.Enqueue(input.UserID, "")

	return routine, nil
}

func (s *RoutineService) Deactivate(ctx context.Context, id string, userID string) error {
	routine, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if routine.UserID != userID {
		return domain.ErrRoutineNotFound
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.worker.Enqueue(userID, "")

	return nil
}

// Reorder applies a full or partial new ordering. Every id must be one of the
// user's active routines, otherwise nothing is written.
func (s *RoutineService) Reorder(ctx context.Context, userID string, order []domain.RoutineOrder) error {
	if len(order) == 0 {
		return nil
	}

	routines, err := s.repo.ListActiveByUserID(ctx, userID)
	if err != nil {
		return err
	}

	owned := make(map[string]struct{}, len(routines))
	for _, r := range routines {
		owned[r.ID] = struct{}{}
	}

	seen := make(map[string]struct{}, len(order))
	for _, o := range order {
		if _, ok := owned[o.ID]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrRoutineNotFound, o.ID)
		}
		if _, dup := seen[o.ID]; dup {
			return fmt.Errorf("%w: duplicate id %s", domain.ErrInvalidOrder, o.ID)
		}
		if o.SortOrder < 0 {
			return fmt.Errorf("%w: negative position for %s", domain.ErrInvalidOrder, o.ID)
		}
		seen[o.ID] = struct{}{}
	}

	return s.repo.Reorder(ctx, userID, order)
}
