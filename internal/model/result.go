package model

// Confidence is the coarse tier derived from a winning score.
type Confidence string

// Confidence tiers.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Result is the classification outcome for one record.
type Result struct {
	Category    string      `json:"category"`
	Group       string      `json:"group"`
	Confidence  Confidence  `json:"confidence"`
	Reason      string      `json:"reason,omitempty"`
	Sources     []SourceTag `json:"sources"`
	Score       int         `json:"score"`
	NeedsReview bool        `json:"needs_review"`
}

// Decision ties a classification result to the record it was made for.
type Decision struct {
	RecordID    string `json:"record_id"`
	Name        string `json:"name"`
	OldCategory string `json:"old_category,omitempty"`
	Result      Result `json:"result"`
	Index       int    `json:"index"`
}

// Changed reports whether the decision moves the record to a new category.
func (d Decision) Changed() bool {
	return d.OldCategory != d.Result.Category
}
