package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/comitanigiacomo/dayrise-engine/internal/core/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ domain.RoutineRepository = (*PostgresRoutineRepository)(nil)

const routineColumns = `id, user_id, title, frequency, target_count, reminder_time,
        sort_order, is_active, created_at, updated_at`

type PostgresRoutineRepository struct {
	db *sqlx.DB
}

func NewPostgresRoutineRepository(db *sqlx.DB) *PostgresRoutineRepository {
	return &PostgresRoutineRepository{db: db}
}

func (r *PostgresRoutineRepository) Create(ctx context.Context, routine *domain.Routine) error {
	query := `
        INSERT INTO routines (
            id, user_id, title, frequency, target_count, reminder_time,
            sort_order, is_active, created_at, updated_at
        ) VALUES (
            :id, :user_id, :title, :frequency, :target_count, :reminder_time,
            :sort_order, :is_active, :created_at, :updated_at
        )`

	if _, err := r.db.NamedExecContext(ctx, query, routine); err != nil {
		return fmt.Errorf("failed to insert routine: %w", err)
	}
	return nil
}

func (r *PostgresRoutineRepository) GetByID(ctx context.Context, id string) (*domain.Routine, error) {
	var routine domain.Routine
	query := `SELECT ` + routineColumns + ` FROM routines WHERE id = $1 AND is_active`

	if err := r.db.GetContext(ctx, &routine, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRoutineNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &routine, nil
}

func (r *PostgresRoutineRepository) ListActiveByUserID(ctx context.Context, userID string) ([]*domain.Routine, error) {
	routines := []*domain.Routine{}
	query := `
        SELECT ` + routineColumns + ` FROM routines
        WHERE user_id = $1 AND is_active
        ORDER BY sort_order ASC, created_at ASC`

	if err := r.db.SelectContext(ctx, &routines, query, userID); err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	return routines, nil
}

func (r *PostgresRoutineRepository) Update(ctx context.Context, routine *domain.Routine) error {
	query := `
        UPDATE routines SET
            title = :title, frequency = :frequency, target_count = :target_count,
            reminder_time = :reminder_time, sort_order = :sort_order, updated_at = :updated_at
        WHERE id = :id AND is_active`

	res, err := r.db.NamedExecContext(ctx, query, routine)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}
	return expectRows(res, domain.ErrRoutineNotFound)
}

func (r *PostgresRoutineRepository) Deactivate(ctx context.Context, id string) error {
	query := `
        UPDATE routines
        SET is_active = FALSE, updated_at = $1
        WHERE id = $2 AND is_active`

	res, err := r.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("deactivate query failed: %w", err)
	}
	return expectRows(res, domain.ErrRoutineNotFound)
}

// Reorder writes every position in one statement inside a transaction. If any
// id is not an active routine of the user the whole change is rolled back.
func (r *PostgresRoutineRepository) Reorder(ctx context.Context, userID string, order []domain.RoutineOrder) error {
	if len(order) == 0 {
		return nil
	}

	ids := make([]string, 0, len(order))
	positions := make([]int64, 0, len(order))
	for _, o := range order {
		ids = append(ids, o.ID)
		positions = append(positions, int64(o.SortOrder))
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("reorder: begin failed: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
        UPDATE routines AS r
        SET sort_order = o.sort_order, updated_at = $3
        FROM unnest($1::text[], $2::int[]) AS o(id, sort_order)
        WHERE r.id = o.id AND r.user_id = $4 AND r.is_active`

	res, err := tx.ExecContext(ctx, query, pq.Array(ids), pq.Array(positions), time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("reorder query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if int(rows) != len(order) {
		return domain.ErrRoutineNotFound
	}

	return tx.Commit()
}

func expectRows(res sql.Result, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}
