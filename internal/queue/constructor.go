package queue

import (
	"github.com/sahilm27/postpilot/internal/dispatch"
	"github.com/sahilm27/postpilot/internal/scheduler"
)

const (
	TaskTypeDispatchPost   = "dispatch:post"
	TaskTypeRedispatchPost = "redispatch:post"
	TaskTypeScheduleTick   = "schedule:tick"
)

type DispatchPostPayload struct {
	PostID int64 `json:"post_id"`
}

type ScheduleTickPayload struct {
	ScheduleID int64 `json:"schedule_id"`
}

// Queue owns the worker-side task handlers.
type Queue struct {
	coordinator *dispatch.Coordinator
	executor    *scheduler.Executor
}

func NewQueue(coordinator *dispatch.Coordinator, executor *scheduler.Executor) *Queue {
	return &Queue{
		coordinator: coordinator,
		executor:    executor,
	}
}
