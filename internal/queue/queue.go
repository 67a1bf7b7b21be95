package queue

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/hibiken/asynq"
)

// Client enqueues tasks for the worker. It satisfies
// scheduler.TickEnqueuer and scheduler.DispatchEnqueuer.
type Client struct {
	asynqClient *asynq.Client
}

func NewClient(asynqClient *asynq.Client) *Client {
	return &Client{asynqClient: asynqClient}
}

func (c *Client) EnqueueDispatch(ctx context.Context, postID int64) error {
	return c.enqueue(ctx, TaskTypeDispatchPost, DispatchPostPayload{PostID: postID}, 0)
}

func (c *Client) EnqueueRedispatch(ctx context.Context, postID int64) error {
	return c.enqueue(ctx, TaskTypeRedispatchPost, DispatchPostPayload{PostID: postID}, 0)
}

func (c *Client) EnqueueTick(ctx context.Context, scheduleID int64) error {
	return c.enqueue(ctx, TaskTypeScheduleTick, ScheduleTickPayload{ScheduleID: scheduleID}, 0)
}

// EnqueueDispatchAt schedules a one-off dispatch for a future instant.
func (c *Client) EnqueueDispatchAt(ctx context.Context, postID int64, at time.Time) error {
	taskPayload, err := json.Marshal(DispatchPostPayload{PostID: postID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeDispatchPost, taskPayload)
	_, err = c.asynqClient.EnqueueContext(ctx, task, asynq.ProcessAt(at))
	if err != nil {
		return err
	}

	log.Printf("Task scheduled: dispatch post %d at %s", postID, at)
	return nil
}

func (c *Client) enqueue(ctx context.Context, taskType string, payload any, delay time.Duration) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(taskType, taskPayload)
	_, err = c.asynqClient.EnqueueContext(ctx, task, asynq.ProcessIn(delay))
	if err != nil {
		return err
	}

	log.Printf("Task scheduled: %s %+v", taskType, payload)
	return nil
}
