package model

// NoPreviousCategory is the transition bucket for records that had no label.
const NoPreviousCategory = "(none)"

// ChangeEntry records a record that moved to a different category.
type ChangeEntry struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	OldCategory string      `json:"old_category,omitempty"`
	NewCategory string      `json:"new_category"`
	Group       string      `json:"group"`
	Confidence  Confidence  `json:"confidence"`
	Sources     []SourceTag `json:"sources"`
}

// ReviewEntry is one item of the manual-review queue.
type ReviewEntry struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	OldCategory string     `json:"old_category,omitempty"`
	NewCategory string     `json:"new_category"`
	Reason      string     `json:"reason"`
	Confidence  Confidence `json:"confidence"`
}

// SkippedRecord is a record left untouched because it was malformed.
type SkippedRecord struct {
	ID     string `json:"id,omitempty"`
	Reason string `json:"reason"`
	Index  int    `json:"index"`
}

// RunStats aggregates the outcome of one batch run.
type RunStats struct {
	CategoryDistribution map[string]int            `json:"category_distribution"`
	GroupDistribution    map[string]int            `json:"group_distribution"`
	Transitions          map[string]map[string]int `json:"transitions"`
	Changes              []ChangeEntry             `json:"changes"`
	ManualReview         []ReviewEntry             `json:"manual_review"`
	Skipped              []SkippedRecord           `json:"skipped"`
	TotalRecords         int                       `json:"total_records"`
	Recategorized        int                       `json:"recategorized"`
	Unchanged            int                       `json:"unchanged"`
}

// NewRunStats returns empty statistics with every category and group seeded at zero.
func NewRunStats(categories, groups []string) *RunStats {
	s := &RunStats{
		CategoryDistribution: make(map[string]int, len(categories)),
		GroupDistribution:    make(map[string]int, len(groups)),
		Transitions:          make(map[string]map[string]int),
		Changes:              []ChangeEntry{},
		ManualReview:         []ReviewEntry{},
		Skipped:              []SkippedRecord{},
	}
	for _, c := range categories {
		s.CategoryDistribution[c] = 0
	}
	for _, g := range groups {
		s.GroupDistribution[g] = 0
	}
	return s
}

// Add folds one decision into the statistics.
func (s *RunStats) Add(d Decision) {
	s.TotalRecords++

	if d.Changed() {
		s.Recategorized++
		s.Changes = append(s.Changes, ChangeEntry{
			ID:          d.RecordID,
			Name:        d.Name,
			OldCategory: d.OldCategory,
			NewCategory: d.Result.Category,
			Group:       d.Result.Group,
			Confidence:  d.Result.Confidence,
			Sources:     d.Result.Sources,
		})
	} else {
		s.Unchanged++
	}

	old := d.OldCategory
	if old == "" {
		old = NoPreviousCategory
	}
	if s.Transitions[old] == nil {
		s.Transitions[old] = make(map[string]int)
	}
	s.Transitions[old][d.Result.Category]++

	s.CategoryDistribution[d.Result.Category]++
	s.GroupDistribution[d.Result.Group]++

	if d.Result.NeedsReview {
		s.ManualReview = append(s.ManualReview, ReviewEntry{
			ID:          d.RecordID,
			Name:        d.Name,
			OldCategory: d.OldCategory,
			NewCategory: d.Result.Category,
			Reason:      d.Result.Reason,
			Confidence:  d.Result.Confidence,
		})
	}
}

// Skip records a malformed record in the audit trail.
func (s *RunStats) Skip(index int, id, reason string) {
	s.Skipped = append(s.Skipped, SkippedRecord{Index: index, ID: id, Reason: reason})
}

// Merge adds other into s. Counters add and lists append, so merging
// shard statistics in shard order equals processing the shards in sequence.
func (s *RunStats) Merge(other *RunStats) {
	if other == nil {
		return
	}

	s.TotalRecords += other.TotalRecords
	s.Recategorized += other.Recategorized
	s.Unchanged += other.Unchanged

	for k, v := range other.CategoryDistribution {
		s.CategoryDistribution[k] += v
	}
	for k, v := range other.GroupDistribution {
		s.GroupDistribution[k] += v
	}
	for old, targets := range other.Transitions {
		if s.Transitions[old] == nil {
			s.Transitions[old] = make(map[string]int, len(targets))
		}
		for k, v := range targets {
			s.Transitions[old][k] += v
		}
	}

	s.Changes = append(s.Changes, other.Changes...)
	s.ManualReview = append(s.ManualReview, other.ManualReview...)
	s.Skipped = append(s.Skipped, other.Skipped...)
}

// ReviewCount returns the length of the manual-review queue.
func (s *RunStats) ReviewCount() int {
	return len(s.ManualReview)
}
