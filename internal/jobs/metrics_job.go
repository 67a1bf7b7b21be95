package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/platform"
	"github.com/sahilm27/postpilot/internal/repository"
)

// MetricsJob snapshots follower counts for every connected account so the
// analytics endpoints can show growth over time.
type MetricsJob struct {
	sr       repository.SocialAccountRepository
	ar       repository.AnalyticsRepository
	registry *platform.Registry
}

func NewMetricsJob(sr repository.SocialAccountRepository, ar repository.AnalyticsRepository, registry *platform.Registry) *MetricsJob {
	return &MetricsJob{sr: sr, ar: ar, registry: registry}
}

func (j *MetricsJob) CollectMetrics() {
	ctx := context.Background()

	accounts, err := j.sr.ListAll(ctx)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, acc := range accounts {
		adapter, ok := j.registry.Get(acc.Platform)
		if !ok {
			continue
		}

		wg.Add(1)
		semaphore <- struct{}{}

		go func(acc *models.SocialAccount, adapter platform.Adapter) {
			defer wg.Done()
			defer func() { <-semaphore }()

			metrics, err := adapter.AccountMetrics(ctx, acc)
			if err != nil {
				slog.Info("Unable to collect account metrics", "platform", acc.Platform, "account_id", acc.ID)
				return
			}

			snapshot := &models.AccountSnapshot{
				UserID:      acc.UserID,
				AccountID:   acc.ID,
				Platform:    acc.Platform,
				Followers:   metrics.Followers,
				Following:   metrics.Following,
				MediaCount:  metrics.MediaCount,
				CollectedAt: time.Now(),
			}
			if _, err := j.ar.CreateSnapshot(ctx, snapshot); err != nil {
				slog.Info("Unable to save account snapshot", "account_id", acc.ID)
			}
		}(acc, adapter)
	}

	wg.Wait()
}
