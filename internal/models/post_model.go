package models

import "time"

type Post struct {
	ID            int64      `db:"id" json:"id"`
	UserID        int64      `db:"user_id" json:"user_id"`
	ScheduleID    *int64     `db:"schedule_id" json:"schedule_id,omitempty"`
	PostType      string     `db:"post_type" json:"post_type"`
	Caption       string     `db:"caption" json:"caption"`
	Title         string     `db:"title" json:"title"`
	ScheduledTime time.Time  `db:"scheduled_time" json:"scheduled_time"`
	PostedTime    *time.Time `db:"posted_time" json:"posted_time"`
	Status        string     `db:"status" json:"status"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

type MediaAsset struct {
	ID           int64     `db:"id"`
	UserID       int64     `db:"user_id"`
	FileName     string    `db:"file_name"`
	FileType     string    `db:"file_type"`
	FileSize     int64     `db:"file_size"`
	FileURL      string    `db:"file_url"`
	ThumbnailURL string    `db:"thumbnail_url"`
	CreatedAt    time.Time `db:"created_at"`
}

type PostMedia struct {
	PostID       int64     `db:"post_id"`
	AssetID      int64     `db:"asset_id"`
	DisplayOrder int       `db:"display_order"`
	CreatedAt    time.Time `db:"created_at"`
}

// Post aggregate statuses. Terminal states are posted, failed and cancelled.
// partially_posted ends the dispatch attempt, but the failed platforms may be
// re-dispatched later under the same post.
const (
	PostStatusDraft           = "draft"
	PostStatusScheduled       = "scheduled"
	PostStatusDispatching     = "dispatching"
	PostStatusPosted          = "posted"
	PostStatusPartiallyPosted = "partially_posted"
	PostStatusFailed          = "failed"
	PostStatusCancelled       = "cancelled"
)

const (
	PostTypeSingle   = "single"
	PostTypeMultiple = "multiple"
)
