package job

import (
	"context"
	"log/slog"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/repository"
)

// exhaustedOnceBuffer keeps a fired once schedule around for a while so its
// owner can still inspect it before removal.
const exhaustedOnceBuffer = time.Hour

// staleDispatchWindow is how long a post may sit in dispatching before it is
// treated as an orphaned claim. A fan-out finishes within minutes; anything
// older lost its worker mid-flight.
const staleDispatchWindow = 30 * time.Minute

// DispatchEnqueuer re-submits a recovered post to the task runner.
type DispatchEnqueuer interface {
	EnqueueDispatch(ctx context.Context, postID int64) error
}

// CleanupJob removes once schedules that already fired and have aged past
// the inspection buffer, and reclaims posts orphaned in dispatching by a
// crashed worker.
type CleanupJob struct {
	sr  repository.ScheduleRepository
	pr  repository.PostRepository
	enq DispatchEnqueuer
}

func NewCleanupJob(sr repository.ScheduleRepository, pr repository.PostRepository, enq DispatchEnqueuer) *CleanupJob {
	return &CleanupJob{sr: sr, pr: pr, enq: enq}
}

func (j *CleanupJob) CleanupSchedules() {
	ctx := context.Background()

	exhausted, err := j.sr.ListExhaustedOnce(ctx, time.Now().Add(-exhaustedOnceBuffer))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, s := range exhausted {
		if err := j.sr.Remove(ctx, s.ID); err != nil {
			slog.Info("Unable to remove exhausted schedule", "schedule_id", s.ID)
			continue
		}
		slog.Info("Removed exhausted once schedule", "schedule_id", s.ID)
	}
}

// ReleaseStalePosts returns orphaned dispatching posts to scheduled and
// re-enqueues their dispatch. The revert is a compare-and-swap, so a worker
// that is merely slow and finalizes concurrently wins over the sweep. The
// re-run may repeat a platform call that succeeded right before the crash;
// delivery is at least once.
func (j *CleanupJob) ReleaseStalePosts() {
	ctx := context.Background()

	stale, err := j.pr.ListStaleDispatching(ctx, time.Now().Add(-staleDispatchWindow))
	if err != nil {
		slog.Info(err.Error())
		return
	}

	for _, postID := range stale {
		released, err := j.pr.TransitionStatus(ctx, postID, models.PostStatusDispatching, models.PostStatusScheduled)
		if err != nil || !released {
			continue
		}
		if err := j.enq.EnqueueDispatch(ctx, postID); err != nil {
			slog.Error("error re-enqueueing recovered post", "post_id", postID, "error", err.Error())
			continue
		}
		slog.Info("Recovered stale dispatching post", "post_id", postID)
	}
}
