package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
)

type SettingsRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error)
	Upsert(ctx context.Context, userID int64, settings *models.Settings) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) GetByUserID(ctx context.Context, userID int64) (*models.Settings, bool, error) {
	query := `SELECT id, user_id, timezone, default_platforms, created_at, updated_at FROM settings WHERE user_id = $1`

	var s models.Settings
	var platforms []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.ID, &s.UserID, &s.Timezone, &platforms, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		slog.Info(err.Error())
		return nil, false, err
	}

	if len(platforms) > 0 {
		if err := json.Unmarshal(platforms, &s.DefaultPlatforms); err != nil {
			slog.Info(err.Error())
			return nil, false, err
		}
	}
	return &s, true, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, userID int64, settings *models.Settings) error {
	platforms, err := json.Marshal(settings.DefaultPlatforms)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	query := `
		INSERT INTO settings (user_id, timezone, default_platforms)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET timezone = EXCLUDED.timezone,
			default_platforms = EXCLUDED.default_platforms,
			updated_at = $4
	`
	_, err = r.db.ExecContext(ctx, query, userID, settings.Timezone, platforms, time.Now())
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
