package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
)

var _ domain.RoutineLogRepository = (*PostgresRoutineLogRepository)(nil)

type PostgresRoutineLogRepository struct {
	db *sqlx.DB
}

func NewPostgresRoutineLogRepository(db *sqlx.DB) *PostgresRoutineLogRepository {
	return &PostgresRoutineLogRepository{db: db}
}

func (r *PostgresRoutineLogRepository) Create(ctx context.Context, entry *domain.RoutineLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	query := `
		INSERT INTO routine_logs (id, routine_id, user_id, completed_at, log_day)
		VALUES (:id, :routine_id, :user_id, :completed_at, :log_day)`

	_, err := r.db.NamedExecContext(ctx, query, entry)
	if err != nil {
		switch pgCode(err) {
		case codeUniqueViolation:
			return domain.ErrAlreadyCompleted
		case codeForeignKeyViolation:
			return domain.ErrRoutineNotFound
		}
		return fmt.Errorf("failed to insert routine log: %w", err)
	}
	return nil
}

func (r *PostgresRoutineLogRepository) GetByID(ctx context.Context, id string) (*domain.RoutineLog, error) {
	var entry domain.RoutineLog
	query := `SELECT id, routine_id, user_id, completed_at, log_day FROM routine_logs WHERE id = $1`

	err := r.db.GetContext(ctx, &entry, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLogNotFound
		}
		return nil, err
	}
	return &entry, nil
}

func (r *PostgresRoutineLogRepository) Delete(ctx context.Context, id string, userID string) error {
	query := `
		DELETE FROM routine_logs
		WHERE id = $1
		  AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	return expectRows(res, domain.ErrLogNotFound)
}

// ListByUserID skips logs of deactivated routines.
func (r *PostgresRoutineLogRepository) ListByUserID(ctx context.Context, userID string, from, to time.Time) ([]domain.RoutineLog, error) {
	entries := []domain.RoutineLog{}

	query := `
		SELECT l.id, l.routine_id, l.user_id, l.completed_at, l.log_day
		FROM routine_logs l
		JOIN routines r ON r.id = l.routine_id
		WHERE l.user_id = $1
		  AND l.completed_at >= $2
		  AND l.completed_at <= $3
		  AND r.is_active
		ORDER BY l.completed_at ASC`

	if err := r.db.SelectContext(ctx, &entries, query, userID, from, to); err != nil {
		return nil, err
	}
	return entries, nil
}
