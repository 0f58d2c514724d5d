package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

type MockRoutineRepo struct {
	mock.Mock
}

func (m *MockRoutineRepo) Create(ctx context.Context, r *domain.Routine) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRoutineRepo) GetByID(ctx context.Context, id string) (*domain.Routine, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Routine), args.Error(1)
}

func (m *MockRoutineRepo) ListActiveByUserID(ctx context.Context, userID string) ([]*domain.Routine, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Routine), args.Error(1)
}

func (m *MockRoutineRepo) Update(ctx context.Context, r *domain.Routine) error {
	return m.Called(ctx, r).Error(0)
}

func (m *MockRoutineRepo) Deactivate(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRoutineRepo) Reorder(ctx context.Context, userID string, order []domain.RoutineOrder) error {
	return m.Called(ctx, userID, order).Error(0)
}

type MockLogRepo struct {
	mock.Mock
}

func (m *MockLogRepo) Create(ctx context.Context, l *domain.RoutineLog) error {
	return m.Called(ctx, l).Error(0)
}

func (m *MockLogRepo) GetByID(ctx context.Context, id string) (*domain.RoutineLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoutineLog), args.Error(1)
}

func (m *MockLogRepo) Delete(ctx context.Context, id string, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockLogRepo) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]domain.RoutineLog, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoutineLog), args.Error(1)
}

type MockStatsCache struct {
	mock.Mock
}

func (m *MockStatsCache) GetProfile(ctx context.Context, userID, timezone, day string) (*domain.ProfileStats, error) {
	args := m.Called(ctx, userID, timezone, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProfileStats), args.Error(1)
}

func (m *MockStatsCache) SetProfile(ctx context.Context, userID, timezone string, stats *domain.ProfileStats) error {
	return m.Called(ctx, userID, timezone, stats).Error(0)
}

func (m *MockStatsCache) InvalidateProfile(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
