package classification

import "github.com/Veraticus/taxon/internal/model"

// Aggregate sums signal weights per category. Categories appear in the order
// their first signal did, and each keeps its contributing sources in order.
func Aggregate(signals []model.Signal) []model.CategoryScore {
	scores := make([]model.CategoryScore, 0, len(signals))
	index := make(map[string]int, len(signals))

	for _, s := range signals {
		i, ok := index[s.Category]
		if !ok {
			i = len(scores)
			index[s.Category] = i
			scores = append(scores, model.CategoryScore{Category: s.Category})
		}
		scores[i].Score += s.Weight
		scores[i].Sources = append(scores[i].Sources, s.Source)
	}

	return scores
}

// Winner picks the category with the strictly highest score. On a tie the
// category that appeared first in channel order wins. It reports false when
// there are no scores.
func Winner(scores []model.CategoryScore) (model.CategoryScore, bool) {
	var best model.CategoryScore
	found := false

	for _, s := range scores {
		if s.Score > best.Score {
			best = s
			found = true
		}
	}

	return best, found
}
