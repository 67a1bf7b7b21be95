package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/hibiken/asynq"

	"github.com/sahilm27/postpilot/internal/dispatch"
	"github.com/sahilm27/postpilot/internal/scheduler"
)

// HandleDispatchPostTask drives one post through the coordinator. Delivery
// is at least once, so a claim that was already taken is success, not a
// reason for asynq to redeliver.
func (q *Queue) HandleDispatchPostTask(ctx context.Context, task *asynq.Task) error {
	var payload DispatchPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	err := q.coordinator.Dispatch(ctx, payload.PostID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dispatch.ErrDoubleDispatchPrevented):
		log.Printf("Post %d already claimed by another dispatch", payload.PostID)
		return nil
	case errors.Is(err, dispatch.ErrPostNotFound):
		log.Printf("Post %d no longer exists, dropping task", payload.PostID)
		return nil
	case errors.Is(err, dispatch.ErrNoTargets):
		log.Printf("Post %d has no target accounts", payload.PostID)
		return nil
	default:
		return err
	}
}

// HandleRedispatchPostTask retries the failed platforms of a partially
// posted post.
func (q *Queue) HandleRedispatchPostTask(ctx context.Context, task *asynq.Task) error {
	var payload DispatchPostPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	err := q.coordinator.Redispatch(ctx, payload.PostID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, dispatch.ErrDoubleDispatchPrevented):
		log.Printf("Post %d already claimed by another redispatch", payload.PostID)
		return nil
	case errors.Is(err, dispatch.ErrPostNotFound):
		log.Printf("Post %d no longer exists, dropping task", payload.PostID)
		return nil
	default:
		return err
	}
}

// HandleScheduleTickTask fires one schedule occurrence. An empty content
// queue is logged and not retried here; the schedule stays due and the next
// scan picks it up again.
func (q *Queue) HandleScheduleTickTask(ctx context.Context, task *asynq.Task) error {
	var payload ScheduleTickPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return err
	}

	err := q.executor.Execute(ctx, payload.ScheduleID)
	if errors.Is(err, scheduler.ErrScheduleHasNoContent) {
		log.Printf("Schedule %d has no content to publish", payload.ScheduleID)
		return nil
	}
	return err
}
