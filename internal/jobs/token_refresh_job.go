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

// TokenRefreshJob refreshes platform credentials that are about to expire
// so scheduled dispatches do not run into dead tokens.
type TokenRefreshJob struct {
	sr       repository.SocialAccountRepository
	registry *platform.Registry
}

func NewTokenRefreshJob(sr repository.SocialAccountRepository, registry *platform.Registry) *TokenRefreshJob {
	return &TokenRefreshJob{sr: sr, registry: registry}
}

func (j *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	accounts, err := j.sr.ListByTimeInterval(ctx, currentTime, timeIn30Minutes)
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

			refreshed, err := adapter.RefreshCredentials(ctx, acc)
			if err != nil {
				slog.Info("Unable to refresh tokens", "platform", acc.Platform, "user_id", acc.UserID)
				return
			}
			if refreshed {
				slog.Info("Tokens refreshed", "platform", acc.Platform, "user_id", acc.UserID)
			}
		}(acc, adapter)
	}

	wg.Wait()
}
