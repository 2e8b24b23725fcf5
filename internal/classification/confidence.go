package classification

import "github.com/Veraticus/taxon/internal/model"

// Score thresholds for the confidence tiers.
const (
	HighConfidenceScore   = 10
	MediumConfidenceScore = 5
)

// Review reasons recorded in the manual-review queue.
const (
	ReasonNoSignal = "no mapping matched any signal"
	ReasonLowScore = "low confidence score"
)

// Tier converts a winning score into a confidence tier.
func Tier(score int) model.Confidence {
	switch {
	case score >= HighConfidenceScore:
		return model.ConfidenceHigh
	case score >= MediumConfidenceScore:
		return model.ConfidenceMedium
	default:
		return model.ConfidenceLow
	}
}

// NeedsReview reports whether a tier must be queued for a human.
func NeedsReview(tier model.Confidence) bool {
	return tier == model.ConfidenceLow
}
