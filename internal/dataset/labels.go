package dataset

import (
	"sort"

	"github.com/Veraticus/taxon/internal/model"
	"github.com/Veraticus/taxon/internal/taxonomy"
)

// Uncategorized labels records that carry no primary category.
const Uncategorized = "uncategorized"

// LabelCount is the number of records carrying one primary label.
type LabelCount struct {
	Label     string
	Count     int
	Canonical bool
}

// CountLabels tallies primary labels, most frequent first, ties by label.
func CountLabels(records []model.Record, table *taxonomy.Table) []LabelCount {
	counts := make(map[string]int)
	for _, rec := range records {
		label := rec.Category
		if label == "" {
			label = Uncategorized
		}
		counts[label]++
	}

	out := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, LabelCount{
			Label:     label,
			Count:     count,
			Canonical: table != nil && table.IsCanonical(label),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// NonCanonical returns the labels in counts that are not canonical categories.
func NonCanonical(counts []LabelCount) []LabelCount {
	out := make([]LabelCount, 0)
	for _, c := range counts {
		if !c.Canonical {
			out = append(out, c)
		}
	}
	return out
}
