package services

import (
	"context"
	"time"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/workers"
)

type LogService struct {
	repo        domain.RoutineLogRepository
	routineRepo domain.RoutineRepository
	worker      *workers.StatsWorker
	now         func() time.Time
}

func NewLogService(repo domain.RoutineLogRepository, routineRepo domain.RoutineRepository, worker *workers.StatsWorker) *LogService {
	return &LogService{
		repo:        repo,
		routineRepo: routineRepo,
		worker:      worker,
		now:         time.Now,
	}
}

// CompleteInput marks a routine done. A zero CompletedAt means now. Location
// decides which calendar day the log belongs to.
type CompleteInput struct {
	RoutineID   string
	UserID      string
	CompletedAt time.Time
	Location    *time.Location
}

func (s *LogService) Complete(ctx context.Context, input CompleteInput) (*domain.RoutineLog, error) {
	at := input.CompletedAt
	if at.IsZero() {
		at = s.now()
	}

	entry := domain.NewRoutineLog(input.RoutineID, input.UserID, at, input.Location)
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	routine, err := s.routineRepo.GetByID(ctx, entry.RoutineID)
	if err != nil {
		return nil, err
	}
	if routine.UserID != entry.UserID {
		return nil, domain.ErrUnauthorized
	}
	if !routine.IsActive {
		return nil, domain.ErrRoutineInactive
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.worker.Enqueue(entry.UserID, timezoneName(input.Location))

	return entry, nil
}

func (s *LogService) GetByID(ctx context.Context, id string, userID string) (*domain.RoutineLog, error) {
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID != userID {
		return nil, domain.ErrUnauthorized
	}
	return entry, nil
}

// Cancel removes a completion. Logs are hard deleted.
func (s *LogService) Cancel(ctx context.Context, id string, userID string, loc *time.Location) error {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id, userID); err != nil {
		return err
	}

	s.worker.Enqueue(userID, timezoneName(loc))

	return nil
}

func timezoneName(loc *time.Location) string {
	if loc == nil {
		return ""
	}
	return loc.String()
}
