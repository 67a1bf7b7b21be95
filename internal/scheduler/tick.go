// Package scheduler turns due schedules into concrete posts. The tick
// transition itself is a pure function over the schedule state; Executor
// applies it against storage with an optimistic version check so that
// redelivered triggers cannot fire the same occurrence twice.
package scheduler

import (
	"errors"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/recurrence"
	"github.com/sahilm27/postpilot/internal/rotation"
)

var (
	ErrScheduleNotDue       = errors.New("schedule is not due")
	ErrScheduleHasNoContent = errors.New("schedule has no content to publish")
)

// TickResult is the outcome of advancing a due schedule by one occurrence.
type TickResult struct {
	// Item is the content queue entry selected for this occurrence.
	Item models.ContentItem
	// NextCursor is the rotation position after consuming Item.
	NextCursor int
	// NextExecution is the following occurrence, nil when the schedule
	// is exhausted.
	NextExecution *time.Time
	// Active is false when the schedule deactivates after this
	// occurrence (once schedules).
	Active bool
}

// Tick computes the state transition for one occurrence of s at now. It
// does not mutate s. A schedule with an empty content queue stays due so
// the failure is visible instead of silently skipped.
func Tick(s *models.Schedule, now time.Time) (*TickResult, error) {
	if !s.Due(now) {
		return nil, ErrScheduleNotDue
	}

	item, nextCursor, err := rotation.Advance(s.ContentQueue, s.Cursor)
	if err != nil {
		if errors.Is(err, rotation.ErrNoContent) {
			return nil, ErrScheduleHasNoContent
		}
		return nil, err
	}

	res := &TickResult{Item: item, NextCursor: nextCursor, Active: true}
	if s.Kind == models.RecurrenceOnce {
		res.Active = false
		return res, nil
	}

	next, err := recurrence.Next(s.Kind, s.Params, now)
	if err != nil {
		return nil, err
	}
	res.NextExecution = &next
	return res, nil
}

// Apply folds a tick result back into the schedule. The repository's
// version check decides whether this application wins.
func Apply(s *models.Schedule, res *TickResult, now time.Time) {
	s.Cursor = res.NextCursor
	s.LastExecuted = &now
	s.NextExecution = res.NextExecution
	s.IsActive = res.Active
}
