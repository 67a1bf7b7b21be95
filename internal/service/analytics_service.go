package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/repository"
)

const defaultSnapshotLimit = 30

type AnalyticsService interface {
	AccountHistory(ctx context.Context, userID, accountID int64) ([]*models.AccountSnapshot, error)
}

type analyticsService struct {
	ar repository.AnalyticsRepository
	sa repository.SocialAccountRepository
}

func NewAnalyticsService(ar repository.AnalyticsRepository, sa repository.SocialAccountRepository) AnalyticsService {
	return &analyticsService{
		ar: ar,
		sa: sa,
	}
}

func (s *analyticsService) AccountHistory(ctx context.Context, userID, accountID int64) ([]*models.AccountSnapshot, error) {
	var err error

	if userID == 0 || accountID == 0 {
		err = errors.New("user or account id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.sa.CheckByUserID(ctx, accountID, userID)
	if err != nil {
		return nil, err
	}

	if !isValid {
		err = errors.New("Social account doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	snapshots, err := s.ar.ListByAccountID(ctx, accountID, defaultSnapshotLimit)
	if err != nil {
		return nil, fmt.Errorf("Error getting account snapshots")
	}

	return snapshots, nil
}
