package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/recurrence"
	"github.com/sahilm27/postpilot/internal/repository"
	"github.com/sahilm27/postpilot/internal/rotation"
	"github.com/sahilm27/postpilot/internal/transfer"
)

const previewOccurrences = 5

type ScheduleService interface {
	Create(ctx context.Context, userID int64, sc *transfer.ScheduleCreation) (int64, error)
	List(ctx context.Context, userID int64) ([]*models.Schedule, error)
	ScheduleInfo(ctx context.Context, scheduleID, userID int64) (*models.Schedule, error)
	Preview(ctx context.Context, scheduleID, userID int64) (*transfer.SchedulePreview, error)
	SetActive(ctx context.Context, scheduleID, userID int64, active bool) error
	ReplaceQueue(ctx context.Context, scheduleID, userID int64, queue []models.ContentItem) error
	Remove(ctx context.Context, scheduleID, userID int64) error
}

type scheduleService struct {
	sr repository.ScheduleRepository
	st repository.SettingsRepository
}

func NewScheduleService(sr repository.ScheduleRepository, st repository.SettingsRepository) ScheduleService {
	return &scheduleService{
		sr: sr,
		st: st,
	}
}

func (s *scheduleService) Create(ctx context.Context, userID int64, sc *transfer.ScheduleCreation) (int64, error) {
	if sc == nil {
		err := errors.New("schedule creation data is nil")
		slog.Error(err.Error())
		return 0, err
	}
	if sc.Name == "" {
		err := errors.New("schedule name cannot be empty")
		slog.Info(err.Error())
		return 0, err
	}

	if err := recurrence.Validate(sc.Kind, sc.Params); err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	platforms := sc.TargetPlatforms
	if len(platforms) == 0 {
		settings, exists, err := s.st.GetByUserID(ctx, userID)
		if err != nil {
			return 0, err
		}
		if exists {
			platforms = settings.DefaultPlatforms
		}
	}
	if len(platforms) == 0 {
		err := errors.New("no target platforms selected")
		slog.Info(err.Error())
		return 0, err
	}

	now, err := s.userNow(ctx, userID)
	if err != nil {
		return 0, err
	}

	next, err := recurrence.Next(sc.Kind, sc.Params, now)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	schedule := &models.Schedule{
		UserID:          userID,
		Name:            sc.Name,
		Description:     sc.Description,
		Kind:            sc.Kind,
		Params:          sc.Params,
		ContentQueue:    sc.ContentQueue,
		Cursor:          0,
		TargetPlatforms: platforms,
		IsActive:        true,
		NextExecution:   &next,
	}

	scheduleID, err := s.sr.Create(ctx, schedule)
	if err != nil {
		return 0, fmt.Errorf("error creating schedule: %w", err)
	}

	return scheduleID, nil
}

func (s *scheduleService) List(ctx context.Context, userID int64) ([]*models.Schedule, error) {
	schedules, err := s.sr.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Error getting schedules")
	}
	return schedules, nil
}

func (s *scheduleService) ScheduleInfo(ctx context.Context, scheduleID, userID int64) (*models.Schedule, error) {
	schedule, err := s.owned(ctx, scheduleID, userID)
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) Preview(ctx context.Context, scheduleID, userID int64) (*transfer.SchedulePreview, error) {
	schedule, err := s.owned(ctx, scheduleID, userID)
	if err != nil {
		return nil, err
	}

	now, err := s.userNow(ctx, userID)
	if err != nil {
		return nil, err
	}

	occurrences, err := recurrence.Preview(schedule.Kind, schedule.Params, now, previewOccurrences)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return &transfer.SchedulePreview{Occurrences: occurrences}, nil
}

// SetActive pauses or resumes a schedule. Resuming recomputes the next
// execution from the current instant so paused time is not replayed.
func (s *scheduleService) SetActive(ctx context.Context, scheduleID, userID int64, active bool) error {
	schedule, err := s.owned(ctx, scheduleID, userID)
	if err != nil {
		return err
	}

	nextExecution := schedule.NextExecution
	if active {
		now, err := s.userNow(ctx, userID)
		if err != nil {
			return err
		}
		next, err := recurrence.Next(schedule.Kind, schedule.Params, now)
		if err != nil {
			slog.Info(err.Error())
			return err
		}
		nextExecution = &next
	}

	err = s.sr.SetActive(ctx, scheduleID, active, nextExecution)
	if err != nil {
		return fmt.Errorf("error updating schedule: %w", err)
	}
	return nil
}

func (s *scheduleService) ReplaceQueue(ctx context.Context, scheduleID, userID int64, queue []models.ContentItem) error {
	schedule, err := s.owned(ctx, scheduleID, userID)
	if err != nil {
		return err
	}

	cursor := rotation.CursorForReplacement(schedule.Cursor, len(queue))
	err = s.sr.ReplaceQueue(ctx, scheduleID, queue, cursor)
	if err != nil {
		return fmt.Errorf("error replacing content queue: %w", err)
	}
	return nil
}

func (s *scheduleService) Remove(ctx context.Context, scheduleID, userID int64) error {
	_, err := s.owned(ctx, scheduleID, userID)
	if err != nil {
		return err
	}

	err = s.sr.Remove(ctx, scheduleID)
	if err != nil {
		return fmt.Errorf("Error removing schedule")
	}
	return nil
}

func (s *scheduleService) owned(ctx context.Context, scheduleID, userID int64) (*models.Schedule, error) {
	var err error

	if userID == 0 {
		err = errors.New("User is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	if scheduleID == 0 {
		err = errors.New("schedule id is not valid")
		slog.Info(err.Error())
		return nil, err
	}

	isValid, err := s.sr.CheckByUserID(ctx, scheduleID, userID)
	if err != nil {
		return nil, err
	}

	if !isValid {
		err = errors.New("Schedule doesn't exist")
		slog.Info(err.Error())
		return nil, err
	}

	schedule, err := s.sr.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("Error getting schedule info")
	}
	return schedule, nil
}

// userNow resolves the current instant in the user's configured timezone so
// hour-of-day recurrence fields mean what the user expects.
func (s *scheduleService) userNow(ctx context.Context, userID int64) (time.Time, error) {
	settings, exists, err := s.st.GetByUserID(ctx, userID)
	if err != nil {
		return time.Time{}, err
	}
	if !exists || settings.Timezone == "" {
		return time.Now().UTC(), nil
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		slog.Info("invalid timezone in settings", "timezone", settings.Timezone)
		return time.Now().UTC(), nil
	}
	return time.Now().In(loc), nil
}
