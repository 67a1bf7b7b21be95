package models

import "time"

// Per-platform dispatch outcomes.
const (
	OutcomeSuccess          = "success"
	OutcomeRetryableFailure = "retryable_failure"
	OutcomePermanentFailure = "permanent_failure"
)

// PlatformOutcome records the result of one publish attempt for one platform
// of a post. Rows are immutable once written; a retry inserts a new row with
// a higher attempt number.
type PlatformOutcome struct {
	ID                int64     `db:"id" json:"id"`
	PostID            int64     `db:"post_id" json:"post_id"`
	AccountID         int64     `db:"account_id" json:"account_id"`
	Platform          string    `db:"platform" json:"platform"`
	Outcome           string    `db:"outcome" json:"outcome"`
	PlatformContentID string    `db:"platform_content_id" json:"platform_content_id"`
	ErrorMessage      string    `db:"error_message" json:"error_message"`
	Attempt           int       `db:"attempt" json:"attempt"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// Terminal reports whether this outcome ends the attempts for its platform
// within the current dispatch, given the per-target retry budget.
func (o *PlatformOutcome) Terminal(maxAttempts int) bool {
	switch o.Outcome {
	case OutcomeSuccess, OutcomePermanentFailure:
		return true
	case OutcomeRetryableFailure:
		return o.Attempt >= maxAttempts
	}
	return false
}
