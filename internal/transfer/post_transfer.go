package transfer

import "github.com/sahilm27/postpilot/internal/models"

type PostCreation struct {
	Caption          string `form:"caption"`
	Title            string `form:"title"`
	ScheduledTime    string `form:"scheduled_time"`
	SelectedAccounts string `form:"selected_accounts"`
}

// PostStatusInfo pairs a post with the latest outcome per platform.
type PostStatusInfo struct {
	Post     *models.Post              `json:"post"`
	Outcomes []*models.PlatformOutcome `json:"outcomes"`
}
