package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
)

type ScheduleRepository interface {
	Create(ctx context.Context, s *models.Schedule) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Schedule, error)
	GetByUserID(ctx context.Context, userID int64) ([]*models.Schedule, error)
	CheckByUserID(ctx context.Context, scheduleID, userID int64) (bool, error)
	ListDue(ctx context.Context, now time.Time) ([]*models.Schedule, error)
	ListExhaustedOnce(ctx context.Context, before time.Time) ([]*models.Schedule, error)
	ApplyTick(ctx context.Context, s *models.Schedule) (bool, error)
	SetActive(ctx context.Context, id int64, active bool, nextExecution *time.Time) error
	ReplaceQueue(ctx context.Context, id int64, queue []models.ContentItem, cursor int) error
	Remove(ctx context.Context, id int64) error
}

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `id, user_id, name, description, kind, params, content_queue, cursor, target_platforms, is_active, next_execution, last_executed, version, created_at, updated_at`

func (r *scheduleRepository) Create(ctx context.Context, s *models.Schedule) (int64, error) {
	params, queue, platforms, err := marshalScheduleJSON(s)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	query := `
		INSERT INTO schedules (user_id, name, description, kind, params, content_queue, cursor, target_platforms, is_active, next_execution)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	var id int64
	err = r.db.QueryRowContext(ctx, query,
		s.UserID, s.Name, s.Description, s.Kind, params, queue, s.Cursor, platforms, s.IsActive, s.NextExecution,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	s, err := scanSchedule(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return s, nil
}

func (r *scheduleRepository) GetByUserID(ctx context.Context, userID int64) ([]*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *scheduleRepository) CheckByUserID(ctx context.Context, scheduleID, userID int64) (bool, error) {
	query := "SELECT 1 FROM schedules WHERE id = $1 AND user_id = $2"

	var result int
	err := r.db.QueryRowContext(ctx, query, scheduleID, userID).Scan(&result)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		slog.Info(err.Error())
		return false, err
	}
	return result == 1, nil
}

func (r *scheduleRepository) ListDue(ctx context.Context, now time.Time) ([]*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE is_active = true AND next_execution IS NOT NULL AND next_execution <= $1`
	return r.list(ctx, query, now)
}

func (r *scheduleRepository) ListExhaustedOnce(ctx context.Context, before time.Time) ([]*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM schedules WHERE kind = $1 AND is_active = false AND last_executed IS NOT NULL AND last_executed < $2`
	return r.list(ctx, query, models.RecurrenceOnce, before)
}

// ApplyTick persists a tick's schedule mutation with an optimistic version
// check. Exactly one concurrent writer per schedule version succeeds; the
// caller must treat a false return as having lost the race and discard any
// post it materialized.
func (r *scheduleRepository) ApplyTick(ctx context.Context, s *models.Schedule) (bool, error) {
	query := `
		UPDATE schedules
		SET cursor = $1,
			next_execution = $2,
			last_executed = $3,
			is_active = $4,
			version = version + 1,
			updated_at = $5
		WHERE id = $6 AND version = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		s.Cursor, s.NextExecution, s.LastExecuted, s.IsActive, time.Now(), s.ID, s.Version,
	)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return affected == 1, nil
}

func (r *scheduleRepository) SetActive(ctx context.Context, id int64, active bool, nextExecution *time.Time) error {
	query := `
		UPDATE schedules
		SET is_active = $1,
			next_execution = $2,
			version = version + 1,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, active, nextExecution, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) ReplaceQueue(ctx context.Context, id int64, queue []models.ContentItem, cursor int) error {
	data, err := json.Marshal(queue)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		UPDATE schedules
		SET content_queue = $1,
			cursor = $2,
			version = version + 1,
			updated_at = $3
		WHERE id = $4
	`
	_, err = r.db.ExecContext(ctx, query, data, cursor, time.Now(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) Remove(ctx context.Context, id int64) error {
	query := `DELETE FROM schedules WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) list(ctx context.Context, query string, args ...any) ([]*models.Schedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var schedules []*models.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return schedules, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (*models.Schedule, error) {
	var s models.Schedule
	var params, queue, platforms []byte

	err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.Kind, &params, &queue, &s.Cursor,
		&platforms, &s.IsActive, &s.NextExecution, &s.LastExecuted, &s.Version, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(params, &s.Params); err != nil {
		return nil, err
	}
	if len(queue) > 0 {
		if err := json.Unmarshal(queue, &s.ContentQueue); err != nil {
			return nil, err
		}
	}
	if len(platforms) > 0 {
		if err := json.Unmarshal(platforms, &s.TargetPlatforms); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

func marshalScheduleJSON(s *models.Schedule) (params, queue, platforms []byte, err error) {
	if params, err = json.Marshal(s.Params); err != nil {
		return nil, nil, nil, err
	}
	if queue, err = json.Marshal(s.ContentQueue); err != nil {
		return nil, nil, nil, err
	}
	if platforms, err = json.Marshal(s.TargetPlatforms); err != nil {
		return nil, nil, nil, err
	}
	return params, queue, platforms, nil
}
