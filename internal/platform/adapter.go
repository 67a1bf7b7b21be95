// Package platform defines the adapter contract the dispatch core publishes
// through, plus one concrete adapter per supported platform. Dispatch code
// depends only on the Adapter interface and the error classification here,
// never on a concrete platform type.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sahilm27/postpilot/internal/models"
)

// MediaRef points at one already-uploaded media object.
type MediaRef struct {
	URL      string
	MIMEType string
}

// PublishRequest is one logical publish of a post to a single account.
type PublishRequest struct {
	PostType string
	Caption  string
	Title    string
	Media    []MediaRef
}

// PublishResult carries the platform-assigned id of the published content.
type PublishResult struct {
	PlatformContentID string
}

type AccountMetrics struct {
	Followers  int64 `json:"followers"`
	Following  int64 `json:"following"`
	MediaCount int64 `json:"media_count"`
}

type ContentMetrics struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
}

// Adapter is implemented once per platform. Publish must classify every
// failure as retryable or permanent via RetryableError/PermanentError; on an
// authentication failure the adapter runs one refresh-and-retry cycle itself
// before surfacing a retryable error.
type Adapter interface {
	Name() string
	Publish(ctx context.Context, acc *models.SocialAccount, req *PublishRequest) (*PublishResult, error)
	AccountMetrics(ctx context.Context, acc *models.SocialAccount) (*AccountMetrics, error)
	ContentMetrics(ctx context.Context, acc *models.SocialAccount, platformContentID string) (*ContentMetrics, error)
	RefreshCredentials(ctx context.Context, acc *models.SocialAccount) (bool, error)
}

// RetryableError wraps failures worth retrying: network errors, rate limits,
// 5xx responses and auth failures that survived a refresh attempt.
type RetryableError struct {
	Cause error
}

func (e *RetryableError) Error() string { return fmt.Sprintf("retryable: %v", e.Cause) }
func (e *RetryableError) Unwrap() error { return e.Cause }

// PermanentError wraps failures a retry cannot fix: malformed content,
// unsupported file types, explicit platform rejection.
type PermanentError struct {
	Cause error
}

func (e *PermanentError) Error() string { return fmt.Sprintf("permanent: %v", e.Cause) }
func (e *PermanentError) Unwrap() error { return e.Cause }

func Retryable(format string, args ...any) error {
	return &RetryableError{Cause: fmt.Errorf(format, args...)}
}

func Permanent(format string, args ...any) error {
	return &PermanentError{Cause: fmt.Errorf(format, args...)}
}

// IsRetryable reports whether err should be retried. Errors with no explicit
// classification (transport failures, timeouts) count as retryable; only a
// PermanentError is final.
func IsRetryable(err error) bool {
	var perm *PermanentError
	return err != nil && !errors.As(err, &perm)
}

// ClassifyStatus maps an HTTP response code from a platform API to the error
// taxonomy. 2xx codes return nil.
func ClassifyStatus(code int, platform, body string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return Retryable("%s: rate limited: %s", platform, body)
	case code == http.StatusUnauthorized:
		return Retryable("%s: unauthorized: %s", platform, body)
	case code >= 500:
		return Retryable("%s: server error %d: %s", platform, code, body)
	default:
		return Permanent("%s: rejected with status %d: %s", platform, code, body)
	}
}

// Registry resolves adapters by platform name.
type Registry struct {
	adapters map[string]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Name()] = a
	}
	return &Registry{adapters: m}
}

func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.adapters[name]
	return a, ok
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}
