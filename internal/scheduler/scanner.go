package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/sahilm27/postpilot/internal/repository"
)

// TickEnqueuer hands a due schedule over to the task runner.
type TickEnqueuer interface {
	EnqueueTick(ctx context.Context, scheduleID int64) error
}

// Scanner polls for due schedules and enqueues one tick per hit. Enqueuing
// the same schedule more than once is harmless: the executor's version
// check lets exactly one tick win.
type Scanner struct {
	sr  repository.ScheduleRepository
	enq TickEnqueuer
}

func NewScanner(sr repository.ScheduleRepository, enq TickEnqueuer) *Scanner {
	return &Scanner{sr: sr, enq: enq}
}

func (s *Scanner) Scan(ctx context.Context) error {
	due, err := s.sr.ListDue(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, sched := range due {
		if err := s.enq.EnqueueTick(ctx, sched.ID); err != nil {
			slog.Error("error enqueueing schedule tick", "schedule_id", sched.ID, "error", err.Error())
		}
	}
	return nil
}
