package transfer

import (
	"time"

	"github.com/sahilm27/postpilot/internal/models"
)

type ScheduleCreation struct {
	Name            string                  `json:"name"`
	Description     string                  `json:"description"`
	Kind            string                  `json:"kind"`
	Params          models.RecurrenceParams `json:"params"`
	ContentQueue    []models.ContentItem    `json:"content_queue"`
	TargetPlatforms []string                `json:"target_platforms"`
}

type QueueReplacement struct {
	ContentQueue []models.ContentItem `json:"content_queue"`
}

type SchedulePreview struct {
	Occurrences []time.Time `json:"occurrences"`
}
