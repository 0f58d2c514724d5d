package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

func TestPostgresRoutineRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanup(t, db)
	defer cleanup(t, db)

	repo := NewPostgresRoutineRepository(db)
	ctx := context.Background()
	userID := uuid.NewString()

	first, err := domain.NewRoutine(userID, "Meditate", domain.FrequencyDaily, "07:00", 1)
	require.NoError(t, err)
	second, err := domain.NewRoutine(userID, "Gym", domain.FrequencyWeekly, "", 3)
	require.NoError(t, err)
	second.SortOrder = 1

	t.Run("Create and Get", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, "Meditate", got.Title)
		require.NotNil(t, got.ReminderTime)
		assert.Equal(t, "07:00", *got.ReminderTime)
		assert.WithinDuration(t, first.CreatedAt, got.CreatedAt, time.Millisecond)
	})

	t.Run("List is ordered by sort order", func(t *testing.T) {
		list, err := repo.ListActiveByUserID(ctx, userID)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, first.ID, list[0].ID)
		assert.Equal(t, second.ID, list[1].ID)
	})

	t.Run("Update", func(t *testing.T) {
		require.NoError(t, second.Update("Gym session", domain.FrequencyWeekly, "", 4))
		require.NoError(t, repo.Update(ctx, second))

		got, err := repo.GetByID(ctx, second.ID)
		require.NoError(t, err)
		assert.Equal(t, "Gym session", got.Title)
		assert.Equal(t, 4, got.TargetCount)
		assert.Nil(t, got.ReminderTime)
	})

	t.Run("Reorder swaps atomically", func(t *testing.T) {
		err := repo.Reorder(ctx, userID, []domain.RoutineOrder{
			{ID: first.ID, SortOrder: 1},
			{ID: second.ID, SortOrder: 0},
		})
		require.NoError(t, err)

		list, err := repo.ListActiveByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, second.ID, list[0].ID)
	})

	t.Run("Reorder with a foreign id changes nothing", func(t *testing.T) {
		err := repo.Reorder(ctx, userID, []domain.RoutineOrder{
			{ID: first.ID, SortOrder: 0},
			{ID: uuid.NewString(), SortOrder: 1},
		})
		assert.ErrorIs(t, err, domain.ErrRoutineNotFound)

		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, got.SortOrder)
	})

	t.Run("Deactivate hides the routine", func(t *testing.T) {
		require.NoError(t, repo.Deactivate(ctx, first.ID))

		_, err := repo.GetByID(ctx, first.ID)
		assert.ErrorIs(t, err, domain.ErrRoutineNotFound)

		list, err := repo.ListActiveByUserID(ctx, userID)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		assert.ErrorIs(t, repo.Deactivate(ctx, first.ID), domain.ErrRoutineNotFound)
	})
}
