// Package dispatch fans one logical post out to its target platforms and
// reduces the per-platform results into a single aggregate status. It is the
// only place allowed to call PlatformAdapter.Publish, and it assumes the
// surrounding task runner delivers triggers at least once, possibly more.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/platform"
	"github.com/sahilm27/postpilot/internal/repository"
)

const (
	defaultMaxAttempts = 3
	defaultBackoff     = 2 * time.Second
	defaultConcurrency = 10
)

type Coordinator struct {
	pr       repository.PostRepository
	or       repository.PlatformOutcomeRepository
	sa       repository.SelectedAccountRepository
	ac       repository.SocialAccountRepository
	pm       repository.PostMediaRepository
	ma       repository.MediaAssetRepository
	registry *platform.Registry

	// MaxAttempts bounds publish attempts per target within one dispatch;
	// only retryable failures consume extra attempts.
	MaxAttempts int
	// Backoff is the base delay between attempts, scaled linearly.
	Backoff time.Duration
	// Concurrency caps simultaneous platform calls per dispatch.
	Concurrency int

	mu             sync.Mutex
	cancelRequests map[int64]struct{}
}

func NewCoordinator(
	pr repository.PostRepository,
	or repository.PlatformOutcomeRepository,
	sa repository.SelectedAccountRepository,
	ac repository.SocialAccountRepository,
	pm repository.PostMediaRepository,
	ma repository.MediaAssetRepository,
	registry *platform.Registry) *Coordinator {
	return &Coordinator{
		pr:             pr,
		or:             or,
		sa:             sa,
		ac:             ac,
		pm:             pm,
		ma:             ma,
		registry:       registry,
		MaxAttempts:    defaultMaxAttempts,
		Backoff:        defaultBackoff,
		Concurrency:    defaultConcurrency,
		cancelRequests: make(map[int64]struct{}),
	}
}

// target pairs one social account with the attempt number its next outcome
// row should carry.
type target struct {
	account     *models.SocialAccount
	baseAttempt int
}

// Dispatch claims a scheduled post and publishes it to every selected
// account. The claim is a compare-and-swap of scheduled -> dispatching, so a
// redelivered or concurrent trigger for the same post observes
// ErrDoubleDispatchPrevented and must treat it as a no-op.
func (c *Coordinator) Dispatch(ctx context.Context, postID int64) error {
	post, err := c.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	claimed, err := c.pr.TransitionStatus(ctx, postID, models.PostStatusScheduled, models.PostStatusDispatching)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrDoubleDispatchPrevented
	}

	targets, err := c.dispatchTargets(ctx, postID)
	if err != nil {
		c.release(ctx, postID, models.PostStatusScheduled)
		return err
	}
	if len(targets) == 0 {
		// nothing to fan out to; the post cannot succeed
		if ferr := c.pr.FinalizeDispatch(ctx, postID, models.PostStatusFailed, nil); ferr != nil {
			return ferr
		}
		return ErrNoTargets
	}

	return c.fanOut(ctx, post, targets, models.PostStatusScheduled)
}

// Redispatch re-attempts only the platforms that failed in an earlier
// dispatch of a partially posted post. New outcome rows are appended under
// the same post; successful platforms are left untouched.
func (c *Coordinator) Redispatch(ctx context.Context, postID int64) error {
	post, err := c.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	claimed, err := c.pr.TransitionStatus(ctx, postID, models.PostStatusPartiallyPosted, models.PostStatusDispatching)
	if err != nil {
		return err
	}
	if !claimed {
		return ErrDoubleDispatchPrevented
	}

	latest, err := c.or.ListLatestByPostID(ctx, postID)
	if err != nil {
		c.release(ctx, postID, models.PostStatusPartiallyPosted)
		return err
	}

	var targets []target
	for _, outcome := range latest {
		if outcome.Outcome == models.OutcomeSuccess {
			continue
		}
		acc, err := c.ac.GetByID(ctx, outcome.AccountID)
		if err != nil {
			c.release(ctx, postID, models.PostStatusPartiallyPosted)
			return err
		}
		if acc == nil {
			slog.Info("social account no longer exists", "account_id", outcome.AccountID)
			continue
		}
		targets = append(targets, target{account: acc, baseAttempt: outcome.Attempt})
	}
	if len(targets) == 0 {
		// every platform already succeeded; restore the reduced status
		return c.finalize(ctx, postID)
	}

	return c.fanOut(ctx, post, targets, models.PostStatusPartiallyPosted)
}

// Cancel withdraws a scheduled post via a scheduled -> cancelled
// compare-and-swap. If the post is already dispatching the cancel is noted
// instead: no further retry attempts are started for targets that have not
// yet succeeded, but in-flight platform calls are governed by their own
// timeouts and the post still runs to its reduced status. Terminal posts
// cannot be cancelled.
func (c *Coordinator) Cancel(ctx context.Context, postID int64) error {
	post, err := c.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}

	cancelled, err := c.pr.TransitionStatus(ctx, postID, models.PostStatusScheduled, models.PostStatusCancelled)
	if err != nil {
		return err
	}
	if cancelled {
		return nil
	}

	post, err = c.pr.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post != nil && post.Status == models.PostStatusDispatching {
		c.requestCancel(postID)
		return nil
	}
	return ErrCancelNotAllowed
}

func (c *Coordinator) requestCancel(postID int64) {
	c.mu.Lock()
	c.cancelRequests[postID] = struct{}{}
	c.mu.Unlock()
}

func (c *Coordinator) cancelRequested(postID int64) bool {
	c.mu.Lock()
	_, ok := c.cancelRequests[postID]
	c.mu.Unlock()
	return ok
}

func (c *Coordinator) clearCancel(postID int64) {
	c.mu.Lock()
	delete(c.cancelRequests, postID)
	c.mu.Unlock()
}

func (c *Coordinator) dispatchTargets(ctx context.Context, postID int64) ([]target, error) {
	selected, err := c.sa.ListByPostID(ctx, postID)
	if err != nil {
		return nil, err
	}

	var targets []target
	for _, sel := range selected {
		acc, err := c.ac.GetByID(ctx, sel.AccountID)
		if err != nil {
			slog.Info("error retrieving social account", "account_id", sel.AccountID, "error", err.Error())
			return nil, err
		}
		if acc == nil {
			slog.Info("social account is missing", "account_id", sel.AccountID)
			continue
		}
		targets = append(targets, target{account: acc})
	}
	return targets, nil
}

// fanOut runs one bounded goroutine per target, waits for every target to
// reach a terminal outcome, then finalizes from the stored latest outcome
// per platform. Reducing over the stored set rather than this round's
// results keeps the aggregate status correct for a redispatch, where the
// platforms that already succeeded are not retried but still count.
func (c *Coordinator) fanOut(ctx context.Context, post *models.Post, targets []target, releaseTo string) error {
	req, err := c.buildRequest(ctx, post)
	if err != nil {
		c.release(ctx, post.ID, releaseTo)
		return err
	}
	defer c.clearCancel(post.ID)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.Concurrency)

	for _, tgt := range targets {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(tgt target) {
			defer wg.Done()
			defer func() { <-semaphore }()
			c.publishWithRetry(ctx, post, tgt, req)
		}(tgt)
	}
	wg.Wait()

	return c.finalize(ctx, post.ID)
}

// release returns a claimed post to its pre-claim status so a redelivered
// trigger can claim it again. Used when the dispatch fails before any
// platform call was made.
func (c *Coordinator) release(ctx context.Context, postID int64, to string) {
	reverted, err := c.pr.TransitionStatus(ctx, postID, models.PostStatusDispatching, to)
	if err != nil || !reverted {
		slog.Error("could not release dispatch claim", "post_id", postID)
	}
}

// publishWithRetry drives one target to a terminal outcome, recording an
// immutable outcome row per attempt. Retryable failures back off and retry
// until the budget runs out or a cancel arrives; permanent failures stop
// immediately.
func (c *Coordinator) publishWithRetry(ctx context.Context, post *models.Post, tgt target, req *platform.PublishRequest) *models.PlatformOutcome {
	acc := tgt.account

	adapter, ok := c.registry.Get(acc.Platform)
	if !ok {
		outcome := &models.PlatformOutcome{
			PostID:       post.ID,
			AccountID:    acc.ID,
			Platform:     acc.Platform,
			Outcome:      models.OutcomePermanentFailure,
			ErrorMessage: "no adapter registered for platform " + acc.Platform,
			Attempt:      tgt.baseAttempt + 1,
		}
		c.record(ctx, outcome)
		return outcome
	}

	var last *models.PlatformOutcome
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		result, err := adapter.Publish(ctx, acc, req)

		outcome := &models.PlatformOutcome{
			PostID:    post.ID,
			AccountID: acc.ID,
			Platform:  acc.Platform,
			Attempt:   tgt.baseAttempt + attempt,
		}
		switch {
		case err == nil:
			outcome.Outcome = models.OutcomeSuccess
			outcome.PlatformContentID = result.PlatformContentID
		case platform.IsRetryable(err):
			outcome.Outcome = models.OutcomeRetryableFailure
			outcome.ErrorMessage = err.Error()
		default:
			outcome.Outcome = models.OutcomePermanentFailure
			outcome.ErrorMessage = err.Error()
		}
		c.record(ctx, outcome)
		last = outcome

		if outcome.Outcome != models.OutcomeRetryableFailure {
			return outcome
		}
		if attempt == c.MaxAttempts {
			break
		}
		if c.cancelRequested(post.ID) {
			break
		}

		select {
		case <-ctx.Done():
			return last
		case <-time.After(c.Backoff * time.Duration(attempt)):
		}
	}
	return last
}

func (c *Coordinator) record(ctx context.Context, outcome *models.PlatformOutcome) {
	if _, err := c.or.Create(ctx, outcome); err != nil {
		slog.Error("error saving platform outcome", "post_id", outcome.PostID, "platform", outcome.Platform, "error", err.Error())
	}
}

// finalize reduces the stored latest outcome per platform into the
// aggregate status and writes it back with the posted time.
func (c *Coordinator) finalize(ctx context.Context, postID int64) error {
	latest, err := c.or.ListLatestByPostID(ctx, postID)
	if err != nil {
		return err
	}

	status := Reduce(latest)
	var postedTime *time.Time
	if status == models.PostStatusPosted || status == models.PostStatusPartiallyPosted {
		now := time.Now()
		postedTime = &now
	}
	return c.pr.FinalizeDispatch(ctx, postID, status, postedTime)
}

func (c *Coordinator) buildRequest(ctx context.Context, post *models.Post) (*platform.PublishRequest, error) {
	medias, err := c.pm.ListByPostID(ctx, post.ID)
	if err != nil {
		return nil, err
	}

	refs := make([]platform.MediaRef, 0, len(medias))
	for _, pm := range medias {
		asset, err := c.ma.GetByID(ctx, pm.AssetID)
		if err != nil {
			return nil, err
		}
		if asset == nil || asset.FileURL == "" {
			return nil, errors.New("media asset missing for post")
		}
		refs = append(refs, platform.MediaRef{URL: asset.FileURL, MIMEType: asset.FileType})
	}

	return &platform.PublishRequest{
		PostType: post.PostType,
		Caption:  post.Caption,
		Title:    post.Title,
		Media:    refs,
	}, nil
}
