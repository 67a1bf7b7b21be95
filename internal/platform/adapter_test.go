package platform

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sahilm27/postpilot/internal/models"
)

type fakeNamedAdapter struct {
	name string
}

func (a *fakeNamedAdapter) Name() string { return a.name }

func (a *fakeNamedAdapter) Publish(ctx context.Context, acc *models.SocialAccount, req *PublishRequest) (*PublishResult, error) {
	return &PublishResult{}, nil
}

func (a *fakeNamedAdapter) AccountMetrics(ctx context.Context, acc *models.SocialAccount) (*AccountMetrics, error) {
	return &AccountMetrics{}, nil
}

func (a *fakeNamedAdapter) ContentMetrics(ctx context.Context, acc *models.SocialAccount, id string) (*ContentMetrics, error) {
	return &ContentMetrics{}, nil
}

func (a *fakeNamedAdapter) RefreshCredentials(ctx context.Context, acc *models.SocialAccount) (bool, error) {
	return false, nil
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		wantNil   bool
		retryable bool
	}{
		{name: "ok", code: 200, wantNil: true},
		{name: "created", code: 201, wantNil: true},
		{name: "rate limited", code: 429, retryable: true},
		{name: "unauthorized", code: 401, retryable: true},
		{name: "server error", code: 500, retryable: true},
		{name: "bad gateway", code: 502, retryable: true},
		{name: "bad request", code: 400, retryable: false},
		{name: "forbidden", code: 403, retryable: false},
		{name: "not found", code: 404, retryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ClassifyStatus(tt.code, "tiktok", "body")
			if tt.wantNil {
				if err != nil {
					t.Fatalf("ClassifyStatus(%d) = %v, want nil", tt.code, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ClassifyStatus(%d) = nil, want error", tt.code)
			}
			if got := IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
		})
	}
}

func TestIsRetryableDefaultsForUnclassified(t *testing.T) {
	if !IsRetryable(errors.New("connection reset")) {
		t.Error("unclassified errors must count as retryable")
	}
	if IsRetryable(nil) {
		t.Error("nil error must not be retryable")
	}
	if IsRetryable(Permanent("rejected")) {
		t.Error("permanent errors must not be retryable")
	}
	// classification survives wrapping
	wrapped := fmt.Errorf("publishing: %w", Permanent("rejected"))
	if IsRetryable(wrapped) {
		t.Error("wrapped permanent error must not be retryable")
	}
}

func TestRegistry(t *testing.T) {
	a := &fakeNamedAdapter{name: "tiktok"}
	b := &fakeNamedAdapter{name: "instagram"}
	r := NewRegistry(a, b)

	got, ok := r.Get("tiktok")
	if !ok || got != Adapter(a) {
		t.Fatalf("Get(tiktok) = %v, %v", got, ok)
	}
	if _, ok := r.Get("myspace"); ok {
		t.Fatal("Get must miss for unregistered platform")
	}
	if names := r.Names(); len(names) != 2 {
		t.Fatalf("Names() = %v, want 2 entries", names)
	}
}
