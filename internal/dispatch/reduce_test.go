package dispatch

import (
	"testing"

	"github.com/sahilm27/postpilot/internal/models"
)

func outcomesOf(values ...string) []*models.PlatformOutcome {
	out := make([]*models.PlatformOutcome, len(values))
	for i, v := range values {
		out[i] = &models.PlatformOutcome{Platform: string(rune('a' + i)), Outcome: v}
	}
	return out
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []*models.PlatformOutcome
		want     string
	}{
		{"all success", outcomesOf(models.OutcomeSuccess, models.OutcomeSuccess, models.OutcomeSuccess), models.PostStatusPosted},
		{"mixed", outcomesOf(models.OutcomeSuccess, models.OutcomePermanentFailure, models.OutcomeSuccess), models.PostStatusPartiallyPosted},
		{"all permanent failure", outcomesOf(models.OutcomePermanentFailure, models.OutcomePermanentFailure, models.OutcomePermanentFailure), models.PostStatusFailed},
		{"retryable counts as failure", outcomesOf(models.OutcomeRetryableFailure, models.OutcomePermanentFailure), models.PostStatusFailed},
		{"single success", outcomesOf(models.OutcomeSuccess), models.PostStatusPosted},
		{"no outcomes", nil, models.PostStatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reduce(tt.outcomes); got != tt.want {
				t.Fatalf("Reduce() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReduceIsOrderIndependent(t *testing.T) {
	base := outcomesOf(models.OutcomeSuccess, models.OutcomePermanentFailure, models.OutcomeRetryableFailure)

	want := Reduce(base)
	permutations := [][]int{
		{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
	}
	for _, perm := range permutations {
		shuffled := make([]*models.PlatformOutcome, len(base))
		for i, j := range perm {
			shuffled[i] = base[j]
		}
		if got := Reduce(shuffled); got != want {
			t.Fatalf("permutation %v: got %q, want %q", perm, got, want)
		}
	}
}
