package dispatch

import "github.com/sahilm27/postpilot/internal/models"

// Reduce folds the final per-platform outcomes of a dispatch into the
// aggregate post status. The input must hold exactly one terminal outcome per
// targeted platform; the result does not depend on their order.
//
//	all success                -> posted
//	all failure                -> failed
//	mixed                      -> partially_posted
func Reduce(outcomes []*models.PlatformOutcome) string {
	if len(outcomes) == 0 {
		return models.PostStatusFailed
	}

	successes := 0
	for _, o := range outcomes {
		if o.Outcome == models.OutcomeSuccess {
			successes++
		}
	}

	switch successes {
	case len(outcomes):
		return models.PostStatusPosted
	case 0:
		return models.PostStatusFailed
	default:
		return models.PostStatusPartiallyPosted
	}
}
