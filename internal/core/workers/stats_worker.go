package workers

import (
	"context"
	"log"
	"time"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

const queueSize = 100

type ProfileBuilder interface {
	BuildProfile(ctx context.Context, userID string, loc *time.Location) (*domain.ProfileStats, error)
}

type ProfileCache interface {
	InvalidateProfile(ctx context.Context, userID string) error
	SetProfile(ctx context.Context, userID, timezone string, stats *domain.ProfileStats) error
}

// StatsJob asks for a user's cached profile to be dropped. When Timezone is
// set the profile for that zone is rebuilt and cached again.
type StatsJob struct {
	UserID   string
	Timezone string
}

type StatsWorker struct {
	builder ProfileBuilder
	cache   ProfileCache
	jobs    chan StatsJob
}

func NewStatsWorker(builder ProfileBuilder, cache ProfileCache) *StatsWorker {
	return &StatsWorker{
		builder: builder,
		cache:   cache,
		jobs:    make(chan StatsJob, queueSize),
	}
}

func (w *StatsWorker) Start(ctx context.Context) {
	go func() {
		log.Println("[WORKER] Stats worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("[WORKER] Stats worker shutting down...")
				return
			}
		}
	}()
}

// Enqueue never blocks the request path. A full queue drops the job; the
// cached entry then expires on its own TTL.
func (w *StatsWorker) Enqueue(userID, timezone string) {
	if w == nil || userID == "" {
		return
	}
	select {
	case w.jobs <- StatsJob{UserID: userID, Timezone: timezone}:
	default:
		log.Printf("[WORKER] Queue full! Dropping stats refresh for user %s", userID)
	}
}

// Pending reports how many jobs are waiting.
func (w *StatsWorker) Pending() int {
	return len(w.jobs)
}

func (w *StatsWorker) processJob(ctx context.Context, job StatsJob) {
	if w.cache == nil {
		return
	}

	if err := w.cache.InvalidateProfile(ctx, job.UserID); err != nil {
		log.Printf("[WORKER] Failed to invalidate stats for %s: %v", job.UserID, err)
		return
	}

	if job.Timezone == "" || w.builder == nil {
		return
	}

	loc, err := time.LoadLocation(job.Timezone)
	if err != nil {
		log.Printf("[WORKER] Unknown timezone %q for %s: %v", job.Timezone, job.UserID, err)
		return
	}

	stats, err := w.builder.BuildProfile(ctx, job.UserID, loc)
	if err != nil {
		log.Printf("[WORKER] Error rebuilding stats for %s: %v", job.UserID, err)
		return
	}

	if err := w.cache.SetProfile(ctx, job.UserID, job.Timezone, stats); err != nil {
		log.Printf("[WORKER] Failed to cache stats for %s: %v", job.UserID, err)
		return
	}
	log.Printf("[WORKER] Stats refreshed for %s (%s): streak=%d", job.UserID, job.Timezone, stats.GlobalStreak)
}
