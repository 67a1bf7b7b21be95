package models

import "time"

// RecurrenceKind is the category of repetition for a schedule.
const (
	RecurrenceOnce    = "once"
	RecurrenceDaily   = "daily"
	RecurrenceWeekly  = "weekly"
	RecurrenceMonthly = "monthly"
	RecurrenceCustom  = "custom"
)

// RecurrenceParams carries the timing configuration for a schedule.
// Which fields matter depends on the kind: RunAt for once, Hour/Minute for
// daily, plus DayOfWeek (1=Monday..7=Sunday) for weekly and DayOfMonth
// (1-31, clipped to shorter months) for monthly. Expression holds the
// custom-kind interval grammar ("every <n>m" or "every <n>h").
type RecurrenceParams struct {
	RunAt      *time.Time `json:"run_at,omitempty"`
	Hour       int        `json:"hour"`
	Minute     int        `json:"minute"`
	DayOfWeek  int        `json:"day_of_week,omitempty"`
	DayOfMonth int        `json:"day_of_month,omitempty"`
	Expression string     `json:"expression,omitempty"`
}

// ContentItem is one entry in a schedule's rotating content queue.
type ContentItem struct {
	AssetID  int64  `json:"asset_id"`
	FileURL  string `json:"file_url"`
	FileType string `json:"file_type"`
	Caption  string `json:"caption"`
	Title    string `json:"title,omitempty"`
}

type Schedule struct {
	ID              int64            `db:"id" json:"id"`
	UserID          int64            `db:"user_id" json:"user_id"`
	Name            string           `db:"name" json:"name"`
	Description     string           `db:"description" json:"description"`
	Kind            string           `db:"kind" json:"kind"`
	Params          RecurrenceParams `db:"params" json:"params"`
	ContentQueue    []ContentItem    `db:"content_queue" json:"content_queue"`
	Cursor          int              `db:"cursor" json:"cursor"`
	TargetPlatforms []string         `db:"target_platforms" json:"target_platforms"`
	IsActive        bool             `db:"is_active" json:"is_active"`
	NextExecution   *time.Time       `db:"next_execution" json:"next_execution"`
	LastExecuted    *time.Time       `db:"last_executed" json:"last_executed"`
	Version         int64            `db:"version" json:"-"`
	CreatedAt       time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updated_at"`
}

// Due reports whether the schedule should fire at now. Inactive schedules
// and schedules with no next execution are never due.
func (s *Schedule) Due(now time.Time) bool {
	return s.IsActive && s.NextExecution != nil && !s.NextExecution.After(now)
}
