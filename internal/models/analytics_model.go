package models

import "time"

// AccountSnapshot is one point-in-time reading of account-level metrics for
// a connected social account, collected by the periodic analytics job.
type AccountSnapshot struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	AccountID   int64     `db:"account_id" json:"account_id"`
	Platform    string    `db:"platform" json:"platform"`
	Followers   int64     `db:"followers" json:"followers"`
	Following   int64     `db:"following" json:"following"`
	MediaCount  int64     `db:"media_count" json:"media_count"`
	CollectedAt time.Time `db:"collected_at" json:"collected_at"`
}
