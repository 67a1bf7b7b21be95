package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
)

func dailySchedule(next time.Time) *models.Schedule {
	return &models.Schedule{
		ID:     1,
		UserID: 1,
		Kind:   models.RecurrenceDaily,
		Params: models.RecurrenceParams{Hour: 9, Minute: 30},
		ContentQueue: []models.ContentItem{
			{AssetID: 10, Caption: "first"},
			{AssetID: 11, Caption: "second"},
		},
		Cursor:          0,
		TargetPlatforms: []string{"tiktok"},
		IsActive:        true,
		NextExecution:   &next,
	}
}

func TestTickAdvancesCursorAndComputesNext(t *testing.T) {
	now := time.Date(2025, 6, 18, 9, 30, 0, 0, time.UTC)
	s := dailySchedule(now)

	res, err := Tick(s, now)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if res.Item.AssetID != 10 {
		t.Errorf("item asset = %d, want 10", res.Item.AssetID)
	}
	if res.NextCursor != 1 {
		t.Errorf("next cursor = %d, want 1", res.NextCursor)
	}
	if !res.Active {
		t.Error("daily schedule must stay active")
	}
	want := time.Date(2025, 6, 19, 9, 30, 0, 0, time.UTC)
	if res.NextExecution == nil || !res.NextExecution.Equal(want) {
		t.Errorf("next execution = %v, want %v", res.NextExecution, want)
	}
	// Tick must not mutate the schedule
	if s.Cursor != 0 {
		t.Errorf("Tick mutated cursor to %d", s.Cursor)
	}
}

func TestTickWrapsCursor(t *testing.T) {
	now := time.Date(2025, 6, 18, 9, 30, 0, 0, time.UTC)
	s := dailySchedule(now)
	s.Cursor = 1

	res, err := Tick(s, now)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if res.Item.AssetID != 11 {
		t.Errorf("item asset = %d, want 11", res.Item.AssetID)
	}
	if res.NextCursor != 0 {
		t.Errorf("next cursor = %d, want wrap to 0", res.NextCursor)
	}
}

func TestTickOnceDeactivates(t *testing.T) {
	runAt := time.Date(2025, 6, 18, 12, 0, 0, 0, time.UTC)
	s := dailySchedule(runAt)
	s.Kind = models.RecurrenceOnce
	s.Params = models.RecurrenceParams{RunAt: &runAt}

	res, err := Tick(s, runAt)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if res.Active {
		t.Error("once schedule must deactivate after firing")
	}
	if res.NextExecution != nil {
		t.Errorf("next execution = %v, want nil", res.NextExecution)
	}
}

func TestTickNotDue(t *testing.T) {
	next := time.Date(2025, 6, 18, 9, 30, 0, 0, time.UTC)
	s := dailySchedule(next)

	_, err := Tick(s, next.Add(-time.Minute))
	if !errors.Is(err, ErrScheduleNotDue) {
		t.Fatalf("got %v, want ErrScheduleNotDue", err)
	}

	s.IsActive = false
	_, err = Tick(s, next.Add(time.Minute))
	if !errors.Is(err, ErrScheduleNotDue) {
		t.Fatalf("inactive schedule: got %v, want ErrScheduleNotDue", err)
	}
}

func TestTickEmptyQueue(t *testing.T) {
	now := time.Date(2025, 6, 18, 9, 30, 0, 0, time.UTC)
	s := dailySchedule(now)
	s.ContentQueue = nil

	_, err := Tick(s, now)
	if !errors.Is(err, ErrScheduleHasNoContent) {
		t.Fatalf("got %v, want ErrScheduleHasNoContent", err)
	}
	// the schedule must remain due so the condition stays visible
	if !s.Due(now) {
		t.Error("schedule no longer due after failed tick")
	}
}

func TestApply(t *testing.T) {
	now := time.Date(2025, 6, 18, 9, 30, 0, 0, time.UTC)
	next := now.Add(24 * time.Hour)
	s := dailySchedule(now)

	Apply(s, &TickResult{NextCursor: 1, NextExecution: &next, Active: true}, now)

	if s.Cursor != 1 {
		t.Errorf("cursor = %d, want 1", s.Cursor)
	}
	if s.LastExecuted == nil || !s.LastExecuted.Equal(now) {
		t.Errorf("last executed = %v, want %v", s.LastExecuted, now)
	}
	if s.NextExecution == nil || !s.NextExecution.Equal(next) {
		t.Errorf("next execution = %v, want %v", s.NextExecution, next)
	}
}
