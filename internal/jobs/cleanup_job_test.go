package job

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
)

type fakeScheduleRepo struct {
	exhausted []*models.Schedule
	removed   []int64
}

func (r *fakeScheduleRepo) Create(ctx context.Context, s *models.Schedule) (int64, error) {
	return 0, nil
}

func (r *fakeScheduleRepo) GetByID(ctx context.Context, id int64) (*models.Schedule, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Schedule, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) CheckByUserID(ctx context.Context, scheduleID, userID int64) (bool, error) {
	return false, nil
}

func (r *fakeScheduleRepo) ListDue(ctx context.Context, now time.Time) ([]*models.Schedule, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) ListExhaustedOnce(ctx context.Context, before time.Time) ([]*models.Schedule, error) {
	return r.exhausted, nil
}

func (r *fakeScheduleRepo) ApplyTick(ctx context.Context, s *models.Schedule) (bool, error) {
	return false, nil
}

func (r *fakeScheduleRepo) SetActive(ctx context.Context, id int64, active bool, nextExecution *time.Time) error {
	return nil
}

func (r *fakeScheduleRepo) ReplaceQueue(ctx context.Context, id int64, queue []models.ContentItem, cursor int) error {
	return nil
}

func (r *fakeScheduleRepo) Remove(ctx context.Context, id int64) error {
	r.removed = append(r.removed, id)
	return nil
}

type fakePostRepo struct {
	posts map[int64]*models.Post
	stale []int64
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return r.posts[id], nil
}

func (r *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	return 0, nil
}

func (r *fakePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	return false, nil
}

func (r *fakePostRepo) TransitionStatus(ctx context.Context, postID int64, from, to string) (bool, error) {
	p, ok := r.posts[postID]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (r *fakePostRepo) FinalizeDispatch(ctx context.Context, postID int64, status string, postedTime *time.Time) error {
	return nil
}

func (r *fakePostRepo) ListStaleDispatching(ctx context.Context, before time.Time) ([]int64, error) {
	return r.stale, nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error { return nil }

type fakeEnqueuer struct {
	dispatched []int64
}

func (e *fakeEnqueuer) EnqueueDispatch(ctx context.Context, postID int64) error {
	e.dispatched = append(e.dispatched, postID)
	return nil
}

func TestReleaseStalePostsRecoversOrphanedClaims(t *testing.T) {
	pr := &fakePostRepo{
		posts: map[int64]*models.Post{
			1: {ID: 1, Status: models.PostStatusDispatching},
			2: {ID: 2, Status: models.PostStatusPosted},
		},
		stale: []int64{1, 2},
	}
	enq := &fakeEnqueuer{}
	j := NewCleanupJob(&fakeScheduleRepo{}, pr, enq)

	j.ReleaseStalePosts()

	if got := pr.posts[1].Status; got != models.PostStatusScheduled {
		t.Fatalf("orphaned post status = %q, want scheduled", got)
	}
	if len(enq.dispatched) != 1 || enq.dispatched[0] != 1 {
		t.Fatalf("dispatched = %v, want [1]", enq.dispatched)
	}

	// a post that finished between the listing and the swap is left alone
	if got := pr.posts[2].Status; got != models.PostStatusPosted {
		t.Fatalf("finished post status = %q, want posted", got)
	}
}

func TestCleanupSchedulesRemovesExhaustedOnce(t *testing.T) {
	sr := &fakeScheduleRepo{
		exhausted: []*models.Schedule{{ID: 7}, {ID: 9}},
	}
	j := NewCleanupJob(sr, &fakePostRepo{}, &fakeEnqueuer{})

	j.CleanupSchedules()

	if len(sr.removed) != 2 || sr.removed[0] != 7 || sr.removed[1] != 9 {
		t.Fatalf("removed = %v, want [7 9]", sr.removed)
	}
}
