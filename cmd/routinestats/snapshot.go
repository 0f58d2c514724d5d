package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/comitanigiacomo/dayrise-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/comitanigiacomo/dayrise-engine/internal/core/progress"
)

// snapshotFile is the export format: routines and logs as stored, with
// timestamps kept as text so every value goes through one parser.
type snapshotFile struct {
	Routines []snapshotRoutine `json:"routines"`
	Logs     []snapshotLog     `json:"logs"`
}

type snapshotRoutine struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Frequency   string `json:"frequency"`
	TargetCount int    `json:"target_count"`
	SortOrder   int    `json:"sort_order"`
	IsActive    *bool  `json:"is_active"`
	CreatedAt   string `json:"created_at"`
}

type snapshotLog struct {
	ID          string `json:"id"`
	RoutineID   string `json:"routine_id"`
	UserID      string `json:"user_id"`
	CompletedAt string `json:"completed_at"`
}

type store struct {
	routines *repository.InMemoryRoutineRepository
	logs     *repository.InMemoryRoutineLogRepository
	users    map[string]struct{}
}

func readSnapshot(path string) (*snapshotFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	return &snap, nil
}

// load fills in-memory repositories from the snapshot. Any unparseable
// timestamp aborts the load.
func (s *snapshotFile) load(ctx context.Context, cal progress.Calendar) (*store, error) {
	st := &store{
		routines: repository.NewInMemoryRoutineRepository(),
		users:    make(map[string]struct{}),
	}
	st.logs = repository.NewInMemoryRoutineLogRepository(st.routines)

	owners := make(map[string]string, len(s.Routines))
	for i, r := range s.Routines {
		if r.ID == "" || r.UserID == "" {
			return nil, fmt.Errorf("routine #%d: id and user_id are required", i)
		}

		routine := &domain.Routine{
			ID:          r.ID,
			UserID:      r.UserID,
			Title:       r.Title,
			Frequency:   strings.ToLower(r.Frequency),
			TargetCount: r.TargetCount,
			SortOrder:   r.SortOrder,
			IsActive:    r.IsActive == nil || *r.IsActive,
		}
		if routine.Frequency == "" {
			routine.Frequency = domain.FrequencyDaily
		}
		if !domain.IsValidFrequency(routine.Frequency) {
			return nil, fmt.Errorf("routine %s: %w", r.ID, domain.ErrInvalidFrequency)
		}
		if r.CreatedAt != "" {
			created, err := cal.ParseTimestamp(r.CreatedAt)
			if err != nil {
				return nil, fmt.Errorf("routine %s created_at: %w", r.ID, err)
			}
			routine.CreatedAt = created.UTC()
		}

		if err := st.routines.Create(ctx, routine); err != nil {
			return nil, err
		}
		owners[r.ID] = r.UserID
		st.users[r.UserID] = struct{}{}
	}

	for i, l := range s.Logs {
		at, err := cal.ParseTimestamp(l.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("log #%d (%s) completed_at: %w", i, l.ID, err)
		}

		userID := l.UserID
		if userID == "" {
			userID = owners[l.RoutineID]
		}

		entry := domain.NewRoutineLog(l.RoutineID, userID, at, cal.Location())
		if l.ID != "" {
			entry.ID = l.ID
		}
		if err := entry.Validate(); err != nil {
			return nil, fmt.Errorf("log #%d: %w", i, err)
		}

		// Duplicate days are legal in older exports; the first one wins.
		if err := st.logs.Create(ctx, entry); err != nil && !errors.Is(err, domain.ErrAlreadyCompleted) {
			return nil, err
		}
		st.users[userID] = struct{}{}
	}

	return st, nil
}

// resolveUser returns the requested user, or the only user in the snapshot.
func (st *store) resolveUser(requested string) (string, error) {
	if requested != "" {
		if _, ok := st.users[requested]; !ok {
			return "", fmt.Errorf("user %q not found in snapshot", requested)
		}
		return requested, nil
	}
	if len(st.users) != 1 {
		return "", fmt.Errorf("snapshot holds %d users, pick one with --user", len(st.users))
	}
	for id := range st.users {
		return id, nil
	}
	return "", nil
}

func parseToday(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Now(), nil
	}
	day, err := time.ParseInLocation(progress.DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("--today must be YYYY-MM-DD: %w", err)
	}
	// Noon keeps the instant on the intended date in any zone.
	return day.Add(12 * time.Hour), nil
}
