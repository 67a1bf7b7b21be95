package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/sahilm27/postpilot/internal/models"
)

type PlatformOutcomeRepository interface {
	Create(ctx context.Context, o *models.PlatformOutcome) (int64, error)
	ListByPostID(ctx context.Context, postID int64) ([]*models.PlatformOutcome, error)
	ListLatestByPostID(ctx context.Context, postID int64) ([]*models.PlatformOutcome, error)
}

type platformOutcomeRepository struct {
	db *sql.DB
}

func NewPlatformOutcomeRepository(db *sql.DB) PlatformOutcomeRepository {
	return &platformOutcomeRepository{db: db}
}

func (r *platformOutcomeRepository) Create(ctx context.Context, o *models.PlatformOutcome) (int64, error) {
	query := `
		INSERT INTO platform_outcomes (post_id, account_id, platform, outcome, platform_content_id, error_message, attempt)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		o.PostID, o.AccountID, o.Platform, o.Outcome, o.PlatformContentID, o.ErrorMessage, o.Attempt,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *platformOutcomeRepository) ListByPostID(ctx context.Context, postID int64) ([]*models.PlatformOutcome, error) {
	query := `
		SELECT id, post_id, account_id, platform, outcome, platform_content_id, error_message, attempt, created_at
		FROM platform_outcomes
		WHERE post_id = $1
		ORDER BY created_at ASC
	`
	return r.list(ctx, query, postID)
}

// ListLatestByPostID returns only the newest outcome per platform, which is
// the view the aggregate reduction and re-dispatch targeting operate on.
func (r *platformOutcomeRepository) ListLatestByPostID(ctx context.Context, postID int64) ([]*models.PlatformOutcome, error) {
	query := `
		SELECT DISTINCT ON (platform)
			id, post_id, account_id, platform, outcome, platform_content_id, error_message, attempt, created_at
		FROM platform_outcomes
		WHERE post_id = $1
		ORDER BY platform, attempt DESC, created_at DESC
	`
	return r.list(ctx, query, postID)
}

func (r *platformOutcomeRepository) list(ctx context.Context, query string, args ...any) ([]*models.PlatformOutcome, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var outcomes []*models.PlatformOutcome
	for rows.Next() {
		var o models.PlatformOutcome
		err := rows.Scan(&o.ID, &o.PostID, &o.AccountID, &o.Platform, &o.Outcome, &o.PlatformContentID,
			&o.ErrorMessage, &o.Attempt, &o.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		outcomes = append(outcomes, &o)
	}
	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return outcomes, nil
}
