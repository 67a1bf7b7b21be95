package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/repository"
)

type SettingsService interface {
	GetSettingsInfo(ctx context.Context, id int64) (*models.Settings, error)
	UpdateSettings(ctx context.Context, userID int64, timezone string, defaultPlatforms []string) error
}

type settingsService struct {
	sr repository.SettingsRepository
}

func NewSettingsService(sr repository.SettingsRepository) SettingsService {
	return &settingsService{
		sr: sr,
	}
}

func (s *settingsService) GetSettingsInfo(ctx context.Context, id int64) (*models.Settings, error) {
	settings, isExist, err := s.sr.GetByUserID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isExist {
		// fall back to defaults instead of failing a fresh account
		return &models.Settings{UserID: id, Timezone: "UTC"}, nil
	}

	return settings, nil
}

func (s *settingsService) UpdateSettings(ctx context.Context, userID int64, timezone string, defaultPlatforms []string) error {
	if timezone != "" {
		if _, err := time.LoadLocation(timezone); err != nil {
			err = errors.New("invalid timezone")
			slog.Info(err.Error())
			return err
		}
	}

	settings := models.Settings{
		UserID:           userID,
		Timezone:         timezone,
		DefaultPlatforms: defaultPlatforms,
	}
	err := s.sr.Upsert(ctx, userID, &settings)
	if err != nil {
		return err
	}
	return nil
}
