package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/repository"
)

// DispatchEnqueuer hands a materialized post over to the task runner.
type DispatchEnqueuer interface {
	EnqueueDispatch(ctx context.Context, postID int64) error
}

// Executor runs one schedule occurrence end to end: pick content, create
// the post with its media and account selections, commit the advanced
// schedule state, and enqueue the dispatch.
type Executor struct {
	sr  repository.ScheduleRepository
	pr  repository.PostRepository
	pm  repository.PostMediaRepository
	sel repository.SelectedAccountRepository
	ac  repository.SocialAccountRepository
	st  repository.SettingsRepository
	enq DispatchEnqueuer
}

func NewExecutor(
	sr repository.ScheduleRepository,
	pr repository.PostRepository,
	pm repository.PostMediaRepository,
	sel repository.SelectedAccountRepository,
	ac repository.SocialAccountRepository,
	st repository.SettingsRepository,
	enq DispatchEnqueuer) *Executor {
	return &Executor{sr: sr, pr: pr, pm: pm, sel: sel, ac: ac, st: st, enq: enq}
}

// Execute fires one occurrence of the schedule. The post is created first
// and the schedule advance is committed with a version check; when a
// concurrent trigger already advanced the schedule, the local post is
// cancelled and the call is a no-op. A stale trigger for a schedule that
// is no longer due is also a no-op.
func (e *Executor) Execute(ctx context.Context, scheduleID int64) error {
	s, err := e.sr.GetByID(ctx, scheduleID)
	if err != nil {
		return err
	}
	if s == nil {
		slog.Info("schedule no longer exists", "schedule_id", scheduleID)
		return nil
	}

	now := e.userNow(ctx, s.UserID)
	res, err := Tick(s, now)
	if err != nil {
		if err == ErrScheduleNotDue {
			return nil
		}
		return err
	}

	postID, err := e.materialize(ctx, s, res, now)
	if err != nil {
		return err
	}

	Apply(s, res, now)
	won, err := e.sr.ApplyTick(ctx, s)
	if err != nil {
		return err
	}
	if !won {
		// another trigger advanced this occurrence first
		if _, cerr := e.pr.TransitionStatus(ctx, postID, models.PostStatusScheduled, models.PostStatusCancelled); cerr != nil {
			slog.Error("error cancelling duplicate post", "post_id", postID, "error", cerr.Error())
		}
		return nil
	}

	return e.enq.EnqueueDispatch(ctx, postID)
}

// userNow resolves the current instant in the schedule owner's configured
// timezone, the same resolution schedule creation and preview use, so a
// "daily 09:30" stays 09:30 user-local across every occurrence. Missing or
// broken settings fall back to UTC.
func (e *Executor) userNow(ctx context.Context, userID int64) time.Time {
	settings, exists, err := e.st.GetByUserID(ctx, userID)
	if err != nil || !exists || settings.Timezone == "" {
		return time.Now().UTC()
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		slog.Info("invalid timezone in settings", "timezone", settings.Timezone)
		return time.Now().UTC()
	}
	return time.Now().In(loc)
}

func (e *Executor) materialize(ctx context.Context, s *models.Schedule, res *TickResult, now time.Time) (int64, error) {
	post := &models.Post{
		UserID:        s.UserID,
		ScheduleID:    &s.ID,
		PostType:      models.PostTypeSingle,
		Caption:       res.Item.Caption,
		Title:         res.Item.Title,
		ScheduledTime: now,
		Status:        models.PostStatusScheduled,
	}

	postID, err := e.pr.Create(ctx, nil, post)
	if err != nil {
		return 0, err
	}

	if err := e.pm.Create(ctx, nil, &models.PostMedia{PostID: postID, AssetID: res.Item.AssetID}); err != nil {
		return 0, err
	}

	for _, platformName := range s.TargetPlatforms {
		acc, err := e.ac.GetByUserAndPlatform(ctx, s.UserID, platformName)
		if err != nil {
			return 0, err
		}
		if acc == nil {
			slog.Info("no connected account for target platform", "schedule_id", s.ID, "platform", platformName)
			continue
		}
		if err := e.sel.Create(ctx, nil, &models.SelectedAccount{PostID: postID, AccountID: acc.ID}); err != nil {
			return 0, err
		}
	}
	return postID, nil
}
