package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/sahilm27/postpilot/internal/models"
)

type AnalyticsRepository interface {
	CreateSnapshot(ctx context.Context, s *models.AccountSnapshot) (int64, error)
	ListByAccountID(ctx context.Context, accountID int64, limit int) ([]*models.AccountSnapshot, error)
}

type analyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

func (r *analyticsRepository) CreateSnapshot(ctx context.Context, s *models.AccountSnapshot) (int64, error) {
	query := `
		INSERT INTO account_snapshots (user_id, account_id, platform, followers, following, media_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, s.UserID, s.AccountID, s.Platform, s.Followers, s.Following, s.MediaCount).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *analyticsRepository) ListByAccountID(ctx context.Context, accountID int64, limit int) ([]*models.AccountSnapshot, error) {
	query := `
		SELECT id, user_id, account_id, platform, followers, following, media_count, collected_at
		FROM account_snapshots
		WHERE account_id = $1
		ORDER BY collected_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, accountID, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var snapshots []*models.AccountSnapshot
	for rows.Next() {
		var s models.AccountSnapshot
		if err := rows.Scan(&s.ID, &s.UserID, &s.AccountID, &s.Platform, &s.Followers, &s.Following, &s.MediaCount, &s.CollectedAt); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		snapshots = append(snapshots, &s)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return snapshots, nil
}
