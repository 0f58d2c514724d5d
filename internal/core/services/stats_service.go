package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/progress"
)

const DefaultLookbackDays = 60

// StatsCache stores computed profile stats per user, keyed by timezone and
// calendar day. A miss returns nil, nil.
type StatsCache interface {
	GetProfile(ctx context.Context, userID, timezone, day string) (*domain.ProfileStats, error)
	SetProfile(ctx context.Context, userID, timezone string, stats *domain.ProfileStats) error
	InvalidateProfile(ctx context.Context, userID string) error
}

type StatsConfig struct {
	LookbackDays int
	MaxWalk      int
	Now          func() time.Time
}

type StatsService struct {
	routineRepo domain.RoutineRepository
	logRepo     domain.RoutineLogRepository
	cache       StatsCache
	cfg         StatsConfig
}

func NewStatsService(routineRepo domain.RoutineRepository, logRepo domain.RoutineLogRepository, cache StatsCache, cfg StatsConfig) *StatsService {
	if cfg.LookbackDays < 1 {
		cfg.LookbackDays = DefaultLookbackDays
	}
	if cfg.MaxWalk < 1 {
		cfg.MaxWalk = progress.DefaultMaxWalk
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &StatsService{
		routineRepo: routineRepo,
		logRepo:     logRepo,
		cache:       cache,
		cfg:         cfg,
	}
}

func (s *StatsService) calculator(loc *time.Location) *progress.Calculator {
	return progress.NewCalculator(progress.NewCalendar(loc), s.cfg.MaxWalk)
}

// snapshot loads the user's active routines and their logs since from.
func (s *StatsService) snapshot(ctx context.Context, userID string, from, to time.Time) ([]*domain.Routine, []domain.RoutineLog, error) {
	routines, err := s.routineRepo.ListActiveByUserID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("stats service: list routines: %w", err)
	}

	logs, err := s.logRepo.ListByUserID(ctx, userID, from, to)
	if err != nil {
		return nil, nil, fmt.Errorf("stats service: list logs: %w", err)
	}

	return routines, logs, nil
}

// GetProfileStats serves the profile view, from cache when the entry for
// today in this timezone is present.
func (s *StatsService) GetProfileStats(ctx context.Context, input domain.StatsInput) (*domain.ProfileStats, error) {
	cal := progress.NewCalendar(input.Location)
	tz := cal.Location().String()
	day := cal.Key(s.cfg.Now())

	if s.cache != nil {
		cached, err := s.cache.GetProfile(ctx, input.UserID, tz, day)
		if err != nil {
			log.Printf("[CACHE] Error reading stats for %s: %v", input.UserID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	stats, err := s.BuildProfile(ctx, input.UserID, cal.Location())
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetProfile(ctx, input.UserID, tz, stats); err != nil {
			log.Printf("[CACHE] Failed to store stats for %s: %v", input.UserID, err)
		}
	}

	return stats, nil
}

// BuildProfile computes the profile stats from storage, bypassing the cache.
func (s *StatsService) BuildProfile(ctx context.Context, userID string, loc *time.Location) (*domain.ProfileStats, error) {
	now := s.cfg.Now()
	calc := s.calculator(loc)
	cal := calc.Calendar()

	routines, logs, err := s.snapshot(ctx, userID, cal.ProfileWindowStart(now, s.cfg.LookbackDays), now)
	if err != nil {
		return nil, err
	}

	daily := progress.DailyOnly(domain.Descriptors(routines))
	return progress.NewAggregator(calc).Profile(daily, logs, now)
}

// GetHomeSummary returns today's view: each active routine with its state
// for today, its streak or period progress, and the global streak.
func (s *StatsService) GetHomeSummary(ctx context.Context, input domain.StatsInput) (*domain.HomeSummary, error) {
	now := s.cfg.Now()
	calc := s.calculator(input.Location)
	cal := calc.Calendar()
	today := cal.Day(now)

	routines, err := s.routineRepo.ListActiveByUserID(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("stats service: list routines: %w", err)
	}

	from := today.AddDate(0, 0, -s.cfg.LookbackDays)
	for _, r := range routines {
		if start := progress.PeriodStart(r.Frequency, today); start.Before(from) {
			from = start
		}
	}

	logs, err := s.logRepo.ListByUserID(ctx, input.UserID, cal.StartOf(from), now)
	if err != nil {
		return nil, fmt.Errorf("stats service: list logs: %w", err)
	}

	summary := &domain.HomeSummary{
		Date:     today.Format(progress.DateLayout),
		Routines: make([]domain.HomeRoutine, 0, len(routines)),
	}

	for _, r := range routines {
		item := domain.HomeRoutine{Routine: r}
		if l, ok := cal.LogOn(logs, r.ID, now); ok {
			item.DoneToday = true
			item.TodayLogID = l.ID
		}

		if r.Frequency == domain.FrequencyDaily {
			created := r.Descriptor().CreatedAt
			streak, err := calc.RoutineStreak(logs, r.ID, created, now)
			if err != nil {
				return nil, err
			}
			item.Streak = &streak
			item.StreakCapped = calc.Capped(streak)

			summary.TotalDaily++
			if item.DoneToday {
				summary.CompletedDaily++
			}
		} else {
			goal, err := cal.PeriodProgress(r, logs, now)
			if err != nil {
				return nil, err
			}
			item.PeriodicGoal = &goal
		}

		summary.Routines = append(summary.Routines, item)
	}

	global, err := calc.GlobalStreak(logs, progress.DailyOnly(domain.Descriptors(routines)), now)
	if err != nil {
		return nil, err
	}
	summary.GlobalStreak = global
	summary.GlobalStreakCapped = calc.Capped(global)

	return summary, nil
}

// GetMonthlyRate returns the completion rate of one calendar month.
func (s *StatsService) GetMonthlyRate(ctx context.Context, input domain.StatsInput, year int, month time.Month) (*domain.MonthlyRate, error) {
	now := s.cfg.Now()
	calc := s.calculator(input.Location)
	cal := calc.Calendar()

	from, to := cal.MonthBounds(year, month)
	if to.After(now) {
		to = now
	}

	routines, logs, err := s.snapshot(ctx, input.UserID, from, to)
	if err != nil {
		return nil, err
	}

	rate, err := progress.NewAggregator(calc).MonthlyRateForMonth(progress.DailyOnly(domain.Descriptors(routines)), logs, year, month, now)
	if err != nil {
		return nil, err
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return &domain.MonthlyRate{
		Month:          first.Format("2006-01"),
		StartDate:      first.Format(progress.DateLayout),
		EndDate:        first.AddDate(0, 1, -1).Format(progress.DateLayout),
		CompletionRate: rate,
	}, nil
}
