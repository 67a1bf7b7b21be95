package dispatch

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sahilm27/postpilot/internal/models"
	"github.com/sahilm27/postpilot/internal/platform"
	"github.com/sahilm27/postpilot/internal/repository"
)

type fakePostRepo struct {
	mu    sync.Mutex
	posts map[int64]*models.Post
}

func newFakePostRepo(posts ...*models.Post) *fakePostRepo {
	r := &fakePostRepo{posts: make(map[int64]*models.Post)}
	for _, p := range posts {
		r.posts[p.ID] = p
	}
	return r
}

func (r *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakePostRepo) Create(ctx context.Context, tx *sql.Tx, post *models.Post) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post.ID = int64(len(r.posts) + 1)
	r.posts[post.ID] = post
	return post.ID, nil
}

func (r *fakePostRepo) GetByUserID(ctx context.Context, userID int64) ([]*models.Post, error) {
	return nil, nil
}

func (r *fakePostRepo) CheckByUserID(ctx context.Context, postID, userID int64) (bool, error) {
	return true, nil
}

func (r *fakePostRepo) TransitionStatus(ctx context.Context, postID int64, from, to string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (r *fakePostRepo) FinalizeDispatch(ctx context.Context, postID int64, status string, postedTime *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.posts[postID]
	if !ok {
		return errors.New("post not found")
	}
	p.Status = status
	p.PostedTime = postedTime
	return nil
}

func (r *fakePostRepo) ListStaleDispatching(ctx context.Context, before time.Time) ([]int64, error) {
	return nil, nil
}

func (r *fakePostRepo) Remove(ctx context.Context, id int64) error { return nil }

func (r *fakePostRepo) status(id int64) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts[id].Status
}

func (r *fakePostRepo) postedTime(id int64) *time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.posts[id].PostedTime
}

type fakeOutcomeRepo struct {
	mu       sync.Mutex
	outcomes []*models.PlatformOutcome
}

func (r *fakeOutcomeRepo) Create(ctx context.Context, o *models.PlatformOutcome) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *o
	copied.ID = int64(len(r.outcomes) + 1)
	r.outcomes = append(r.outcomes, &copied)
	return copied.ID, nil
}

func (r *fakeOutcomeRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PlatformOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PlatformOutcome
	for _, o := range r.outcomes {
		if o.PostID == postID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *fakeOutcomeRepo) ListLatestByPostID(ctx context.Context, postID int64) ([]*models.PlatformOutcome, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	latest := make(map[string]*models.PlatformOutcome)
	for _, o := range r.outcomes {
		if o.PostID != postID {
			continue
		}
		if cur, ok := latest[o.Platform]; !ok || o.Attempt > cur.Attempt {
			latest[o.Platform] = o
		}
	}
	var out []*models.PlatformOutcome
	for _, o := range latest {
		out = append(out, o)
	}
	return out, nil
}

func (r *fakeOutcomeRepo) byPlatform(platformName string) []*models.PlatformOutcome {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.PlatformOutcome
	for _, o := range r.outcomes {
		if o.Platform == platformName {
			out = append(out, o)
		}
	}
	return out
}

type fakeSelectedRepo struct {
	selections map[int64][]*models.SelectedAccount
}

func (r *fakeSelectedRepo) Create(ctx context.Context, tx *sql.Tx, sa *models.SelectedAccount) error {
	return nil
}

func (r *fakeSelectedRepo) GetByID(ctx context.Context, postID, accountID int64) (*models.SelectedAccount, error) {
	return nil, nil
}

func (r *fakeSelectedRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.SelectedAccount, error) {
	return r.selections[postID], nil
}

func (r *fakeSelectedRepo) ListByAccountID(ctx context.Context, accountID int64) ([]*models.SelectedAccount, error) {
	return nil, nil
}

func (r *fakeSelectedRepo) Remove(ctx context.Context, postID, accountID int64) error { return nil }

type fakeAccountRepo struct {
	accounts map[int64]*models.SocialAccount
}

func (r *fakeAccountRepo) Create(ctx context.Context, tx *sql.Tx, sa *models.SocialAccount) (int64, error) {
	return 0, nil
}

func (r *fakeAccountRepo) GetByID(ctx context.Context, id int64) (*models.SocialAccount, error) {
	return r.accounts[id], nil
}

func (r *fakeAccountRepo) ListByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ListInfoByUserID(ctx context.Context, userID int64) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ListByTimeInterval(ctx context.Context, initialTime, finalTime time.Time) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) ListAll(ctx context.Context) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (r *fakeAccountRepo) GetByUserAndPlatform(ctx context.Context, userID int64, platformName string) (*models.SocialAccount, error) {
	for _, acc := range r.accounts {
		if acc.UserID == userID && acc.Platform == platformName {
			return acc, nil
		}
	}
	return nil, nil
}

func (r *fakeAccountRepo) CheckByUserID(ctx context.Context, accountID, userID int64) (bool, error) {
	return true, nil
}

func (r *fakeAccountRepo) SetToken(ctx context.Context, userID int64, oldAccessToken string, sa *models.SocialAccount) error {
	return nil
}

func (r *fakeAccountRepo) Remove(ctx context.Context, id int64) error { return nil }

type fakePostMediaRepo struct{}

func (r *fakePostMediaRepo) Create(ctx context.Context, tx *sql.Tx, pm *models.PostMedia) error {
	return nil
}

func (r *fakePostMediaRepo) GetByPostID(ctx context.Context, postID int64) (*models.PostMedia, error) {
	return &models.PostMedia{PostID: postID, AssetID: 1}, nil
}

func (r *fakePostMediaRepo) ListByPostID(ctx context.Context, postID int64) ([]*models.PostMedia, error) {
	return []*models.PostMedia{{PostID: postID, AssetID: 1}}, nil
}

func (r *fakePostMediaRepo) Update(ctx context.Context, pm *models.PostMedia) error { return nil }
func (r *fakePostMediaRepo) Remove(ctx context.Context, postID int64) error         { return nil }

type fakeAssetRepo struct{}

func (r *fakeAssetRepo) Create(ctx context.Context, tx *sql.Tx, ma *models.MediaAsset) (int64, error) {
	return 1, nil
}

func (r *fakeAssetRepo) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	return &models.MediaAsset{ID: id, FileURL: "https://cdn.example.com/a.mp4", FileType: "video/mp4"}, nil
}

func (r *fakeAssetRepo) Remove(ctx context.Context, id int64) error { return nil }

// fakeAdapter scripts publish results per call and counts invocations.
type fakeAdapter struct {
	name string

	mu      sync.Mutex
	calls   int
	results []error // error returned per call, nil means success
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Publish(ctx context.Context, acc *models.SocialAccount, req *platform.PublishRequest) (*platform.PublishResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var err error
	if a.calls < len(a.results) {
		err = a.results[a.calls]
	}
	a.calls++
	if err != nil {
		return nil, err
	}
	return &platform.PublishResult{PlatformContentID: "content-123"}, nil
}

func (a *fakeAdapter) AccountMetrics(ctx context.Context, acc *models.SocialAccount) (*platform.AccountMetrics, error) {
	return &platform.AccountMetrics{}, nil
}

func (a *fakeAdapter) ContentMetrics(ctx context.Context, acc *models.SocialAccount, id string) (*platform.ContentMetrics, error) {
	return &platform.ContentMetrics{}, nil
}

func (a *fakeAdapter) RefreshCredentials(ctx context.Context, acc *models.SocialAccount) (bool, error) {
	return false, nil
}

func (a *fakeAdapter) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

var _ repository.PostRepository = (*fakePostRepo)(nil)
var _ repository.PlatformOutcomeRepository = (*fakeOutcomeRepo)(nil)
var _ repository.SelectedAccountRepository = (*fakeSelectedRepo)(nil)
var _ repository.SocialAccountRepository = (*fakeAccountRepo)(nil)
var _ repository.PostMediaRepository = (*fakePostMediaRepo)(nil)
var _ repository.MediaAssetRepository = (*fakeAssetRepo)(nil)
var _ platform.Adapter = (*fakeAdapter)(nil)

func testCoordinator(pr *fakePostRepo, or *fakeOutcomeRepo, adapters ...platform.Adapter) *Coordinator {
	accounts := map[int64]*models.SocialAccount{
		1: {ID: 1, UserID: 1, Platform: "tiktok"},
		2: {ID: 2, UserID: 1, Platform: "instagram"},
		3: {ID: 3, UserID: 1, Platform: "youtube"},
	}
	selections := map[int64][]*models.SelectedAccount{
		1: {{PostID: 1, AccountID: 1}, {PostID: 1, AccountID: 2}, {PostID: 1, AccountID: 3}},
	}

	c := NewCoordinator(pr, or, &fakeSelectedRepo{selections: selections}, &fakeAccountRepo{accounts: accounts},
		&fakePostMediaRepo{}, &fakeAssetRepo{}, platform.NewRegistry(adapters...))
	c.Backoff = 0
	return c
}

func scheduledPost() *models.Post {
	return &models.Post{ID: 1, UserID: 1, PostType: models.PostTypeSingle, Status: models.PostStatusScheduled}
}

func TestDispatchAllSuccess(t *testing.T) {
	pr := newFakePostRepo(scheduledPost())
	or := &fakeOutcomeRepo{}
	c := testCoordinator(pr, or, &fakeAdapter{name: "tiktok"}, &fakeAdapter{name: "instagram"}, &fakeAdapter{name: "youtube"})

	if err := c.Dispatch(context.Background(), 1); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if got := pr.status(1); got != models.PostStatusPosted {
		t.Fatalf("status = %q, want posted", got)
	}
	if pr.postedTime(1) == nil {
		t.Fatal("posted_time not set for posted post")
	}

	outcomes, _ := or.ListByPostID(context.Background(), 1)
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	for _, o := range outcomes {
		if o.Outcome != models.OutcomeSuccess || o.PlatformContentID == "" {
			t.Fatalf("unexpected outcome: %+v", o)
		}
	}
}

func TestDispatchMixedIsPartiallyPosted(t *testing.T) {
	pr := newFakePostRepo(scheduledPost())
	or := &fakeOutcomeRepo{}
	c := testCoordinator(pr, or,
		&fakeAdapter{name: "tiktok"},
		&fakeAdapter{name: "instagram", results: []error{platform.Permanent("instagram: rejected")}},
		&fakeAdapter{name: "youtube"},
	)

	if err := c.Dispatch(context.Background(), 1); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if got := pr.status(1); got != models.PostStatusPartiallyPosted {
		t.Fatalf("status = %q, want partially_posted", got)
	}
	if pr.postedTime(1) == nil {
		t.Fatal("posted_time not set for partially posted post")
	}
}

func TestDispatchAllPermanentFailuresIsFailed(t *testing.T) {
	pr := newFakePostRepo(scheduledPost())
	or := &fakeOutcomeRepo{}
	reject := []error{platform.Permanent("rejected"), platform.Permanent("rejected"), platform.Permanent("rejected")}
	tiktok := &fakeAdapter{name: "tiktok", results: reject}
	c := testCoordinator(pr, or,
		tiktok,
		&fakeAdapter{name: "instagram", results: reject},
		&fakeAdapter{name: "youtube", results: reject},
	)

	if err := c.Dispatch(context.Background(), 1); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if got := pr.status(1); got != models.PostStatusFailed {
		t.Fatalf("status = %q, want failed", got)
	}
	if pr.postedTime(1) != nil {
		t.Fatal("posted_time must stay unset for failed post")
	}
	// permanent failures must not consume retries
	if tiktok.callCount() != 1 {
		t.Fatalf("tiktok called %d times, want 1", tiktok.callCount())
	}
}

func TestDispatchRetryableConsumesBudget(t *testing.T) {
	pr := newFakePostRepo(scheduledPost())
	or := &fakeOutcomeRepo{}
	flaky := []error{platform.Retryable("rate limited"), platform.Retryable("rate limited"), platform.Retryable("rate limited")}
	tiktok := &fakeAdapter{name: "tiktok", results: flaky}
	c := testCoordinator(pr, or, tiktok, &fakeAdapter{name: "instagram"}, &fakeAdapter{name: "youtube"})

	if err := c.Dispatch(context.Background(), 1); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if tiktok.callCount() != c.MaxAttempts {
		t.Fatalf("tiktok called %d times, want %d", tiktok.callCount(), c.MaxAttempts)
	}
	recorded := or.byPlatform("tiktok")
	if len(recorded) != c.MaxAttempts {
		t.Fatalf("got %d tiktok outcome rows, want %d", len(recorded), c.MaxAttempts)
	}
	for i, o := range recorded {
		if o.Attempt != i+1 {
			t.Fatalf("outcome %d has attempt %d, want %d", i, o.Attempt, i+1)
		}
	}
	if got := pr.status(1); got != models.PostStatusPartiallyPosted {
		t.Fatalf("status = %q, want partially_posted", got)
	}
}

func TestDispatchRetryThenSuccess(t *testing.T) {
	pr := newFakePostRepo(scheduledPost())
	or := &fakeOutcomeRepo{}
	tiktok := &fakeAdapter{name: "tiktok", results: []error{platform.Retryable("timeout"), nil}}
	c := testCoordinator(pr, or, tiktok, &fakeAdapter{name: "instagram"}, &fakeAdapter{name: "youtube"})

	if err := c.Dispatch(context.Background(), 1); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if got := pr.status(1); got != models.PostStatusPosted {
		t.Fatalf("status = %q, want posted", got)
	}
	if tiktok.callCount() != 2 {
		t.Fatalf("tiktok called %d times, want 2", tiktok.callCount())
	}
}

func TestConcurrentDispatchRunsOnce(t *testing.T) {
	pr := newFakePostRepo(scheduledPost())
	or := &fakeOutcomeRepo{}
	tiktok := &fakeAdapter{name: "tiktok"}
	instagram := &fakeAdapter{name: "instagram"}
	youtube := &fakeAdapter{name: "youtube"}
	c := testCoordinator(pr, or, tiktok, instagram, youtube)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.Dispatch(context.Background(), 1)
		}(i)
	}
	wg.Wait()

	var wins, prevented int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrDoubleDispatchPrevented):
			prevented++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || prevented != workers-1 {
		t.Fatalf("wins=%d prevented=%d, want 1 and %d", wins, prevented, workers-1)
	}

	// the loser triggers must not have produced extra platform calls
	if total := tiktok.callCount() + instagram.callCount() + youtube.callCount(); total != 3 {
		t.Fatalf("platform calls = %d, want 3", total)
	}
}

func TestCancelOnlyWhileScheduled(t *testing.T) {
	pr := newFakePostRepo(scheduledPost())
	or := &fakeOutcomeRepo{}
	c := testCoordinator(pr, or, &fakeAdapter{name: "tiktok"}, &fakeAdapter{name: "instagram"}, &fakeAdapter{name: "youtube"})

	if err := c.Cancel(context.Background(), 1); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got := pr.status(1); got != models.PostStatusCancelled {
		t.Fatalf("status = %q, want cancelled", got)
	}

	// a cancelled post cannot be dispatched
	if err := c.Dispatch(context.Background(), 1); !errors.Is(err, ErrDoubleDispatchPrevented) {
		t.Fatalf("Dispatch after cancel: got %v, want ErrDoubleDispatchPrevented", err)
	}
	// and cannot be cancelled again
	if err := c.Cancel(context.Background(), 1); !errors.Is(err, ErrCancelNotAllowed) {
		t.Fatalf("second Cancel: got %v, want ErrCancelNotAllowed", err)
	}
}

func TestCancelDuringDispatchSuppressesRetries(t *testing.T) {
	post := scheduledPost()
	post.Status = models.PostStatusDispatching
	pr := newFakePostRepo(post)
	or := &fakeOutcomeRepo{}

	tiktok := &fakeAdapter{name: "tiktok", results: []error{
		platform.Retryable("tiktok: throttled"),
		platform.Retryable("tiktok: throttled"),
		platform.Retryable("tiktok: throttled"),
	}}
	c := testCoordinator(pr, or, tiktok)

	// cancelling a dispatching post is accepted but does not flip the status
	if err := c.Cancel(context.Background(), 1); err != nil {
		t.Fatalf("Cancel while dispatching: %v", err)
	}
	if got := pr.status(1); got != models.PostStatusDispatching {
		t.Fatalf("status = %q, want dispatching", got)
	}

	acc := &models.SocialAccount{ID: 1, UserID: 1, Platform: "tiktok"}
	outcome := c.publishWithRetry(context.Background(), post, target{account: acc}, &platform.PublishRequest{})
	if outcome.Outcome != models.OutcomeRetryableFailure {
		t.Fatalf("outcome = %q, want retryable_failure", outcome.Outcome)
	}
	if tiktok.callCount() != 1 {
		t.Fatalf("tiktok called %d times after cancel, want 1", tiktok.callCount())
	}
}

func TestRedispatchFailedAgainStaysPartiallyPosted(t *testing.T) {
	post := scheduledPost()
	post.Status = models.PostStatusPartiallyPosted
	pr := newFakePostRepo(post)

	or := &fakeOutcomeRepo{}
	ctx := context.Background()
	or.Create(ctx, &models.PlatformOutcome{PostID: 1, AccountID: 1, Platform: "tiktok", Outcome: models.OutcomeSuccess, Attempt: 1})
	or.Create(ctx, &models.PlatformOutcome{PostID: 1, AccountID: 2, Platform: "instagram", Outcome: models.OutcomePermanentFailure, Attempt: 1})
	or.Create(ctx, &models.PlatformOutcome{PostID: 1, AccountID: 3, Platform: "youtube", Outcome: models.OutcomeSuccess, Attempt: 1})

	instagram := &fakeAdapter{name: "instagram", results: []error{platform.Permanent("instagram: rejected again")}}
	c := testCoordinator(pr, or, &fakeAdapter{name: "tiktok"}, instagram, &fakeAdapter{name: "youtube"})

	if err := c.Redispatch(ctx, 1); err != nil {
		t.Fatalf("Redispatch: %v", err)
	}

	// the earlier successes still count, so the post must not drop to failed
	if got := pr.status(1); got != models.PostStatusPartiallyPosted {
		t.Fatalf("status after failed redispatch = %q, want partially_posted", got)
	}
	if instagram.callCount() != 1 {
		t.Fatalf("instagram called %d times, want 1", instagram.callCount())
	}

	igOutcomes := or.byPlatform("instagram")
	if len(igOutcomes) != 2 || igOutcomes[1].Attempt != 2 || igOutcomes[1].Outcome != models.OutcomePermanentFailure {
		t.Fatalf("unexpected instagram outcomes: %+v", igOutcomes)
	}
}

// missingAssetRepo simulates a storage inconsistency discovered after the
// dispatching claim was taken.
type missingAssetRepo struct {
	fakeAssetRepo
}

func (r *missingAssetRepo) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	return nil, nil
}

func TestDispatchSetupErrorReleasesClaim(t *testing.T) {
	pr := newFakePostRepo(scheduledPost())
	or := &fakeOutcomeRepo{}
	accounts := map[int64]*models.SocialAccount{1: {ID: 1, UserID: 1, Platform: "tiktok"}}
	selections := map[int64][]*models.SelectedAccount{1: {{PostID: 1, AccountID: 1}}}

	tiktok := &fakeAdapter{name: "tiktok"}
	c := NewCoordinator(pr, or, &fakeSelectedRepo{selections: selections}, &fakeAccountRepo{accounts: accounts},
		&fakePostMediaRepo{}, &missingAssetRepo{}, platform.NewRegistry(tiktok))
	c.Backoff = 0

	if err := c.Dispatch(context.Background(), 1); err == nil {
		t.Fatal("Dispatch: expected error for missing media asset")
	}

	// the claim is released so a redelivered trigger can pick the post up
	if got := pr.status(1); got != models.PostStatusScheduled {
		t.Fatalf("status = %q, want scheduled", got)
	}
	if tiktok.callCount() != 0 {
		t.Fatalf("tiktok called %d times, want 0", tiktok.callCount())
	}
}

func TestRedispatchTargetsOnlyFailedPlatforms(t *testing.T) {
	post := scheduledPost()
	post.Status = models.PostStatusPartiallyPosted
	pr := newFakePostRepo(post)

	or := &fakeOutcomeRepo{}
	ctx := context.Background()
	or.Create(ctx, &models.PlatformOutcome{PostID: 1, AccountID: 1, Platform: "tiktok", Outcome: models.OutcomeSuccess, Attempt: 1})
	or.Create(ctx, &models.PlatformOutcome{PostID: 1, AccountID: 2, Platform: "instagram", Outcome: models.OutcomePermanentFailure, Attempt: 1})
	or.Create(ctx, &models.PlatformOutcome{PostID: 1, AccountID: 3, Platform: "youtube", Outcome: models.OutcomeSuccess, Attempt: 1})

	tiktok := &fakeAdapter{name: "tiktok"}
	instagram := &fakeAdapter{name: "instagram"}
	youtube := &fakeAdapter{name: "youtube"}
	c := testCoordinator(pr, or, tiktok, instagram, youtube)

	if err := c.Redispatch(ctx, 1); err != nil {
		t.Fatalf("Redispatch: %v", err)
	}

	if tiktok.callCount() != 0 || youtube.callCount() != 0 {
		t.Fatal("redispatch must not touch platforms that already succeeded")
	}
	if instagram.callCount() != 1 {
		t.Fatalf("instagram called %d times, want 1", instagram.callCount())
	}

	// the retry appends a new outcome row with the next attempt number
	igOutcomes := or.byPlatform("instagram")
	if len(igOutcomes) != 2 {
		t.Fatalf("got %d instagram outcomes, want 2", len(igOutcomes))
	}
	if igOutcomes[1].Attempt != 2 {
		t.Fatalf("retry attempt = %d, want 2", igOutcomes[1].Attempt)
	}

	if got := pr.status(1); got != models.PostStatusPosted {
		t.Fatalf("status after redispatch = %q, want posted", got)
	}
}

func TestDispatchMissingPost(t *testing.T) {
	pr := newFakePostRepo()
	or := &fakeOutcomeRepo{}
	c := testCoordinator(pr, or, &fakeAdapter{name: "tiktok"})

	if err := c.Dispatch(context.Background(), 42); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("got %v, want ErrPostNotFound", err)
	}
}
