// Package ranking scores catalog items against derived topics and selects
// the top recommendations.
package ranking

import (
	"slices"

	"github.com/resensebox/Mindful-Libraries-sub000/internal/model"
)

// Score counts, for each item, how many derived topics appear in its tags.
// Output order matches items; zero scores are kept.
func Score(topics []string, items []model.CatalogItem) []model.ScoredItem {
	wanted := make(model.TagSet, len(topics))
	for _, t := range topics {
		if n := model.NormalizeTag(t); n != "" {
			wanted[n] = struct{}{}
		}
	}

	scored := make([]model.ScoredItem, len(items))
	for i, item := range items {
		score := 0
		// Iterate the smaller set.
		if len(wanted) <= item.Tags.Len() {
			for t := range wanted {
				if item.Tags.Has(t) {
					score++
				}
			}
		} else {
			for t := range item.Tags {
				if wanted.Has(t) {
					score++
				}
			}
		}
		scored[i] = model.ScoredItem{Item: item, Score: score}
	}
	return scored
}

// Select returns up to k positive-score items by descending score, equal
// scores in input order, at most one per title.
func Select(scored []model.ScoredItem, k int) []model.Recommendation {
	if k <= 0 {
		return nil
	}

	candidates := make([]model.ScoredItem, 0, len(scored))
	for _, s := range scored {
		if s.Score > 0 {
			candidates = append(candidates, s)
		}
	}
	slices.SortStableFunc(candidates, func(a, b model.ScoredItem) int {
		return b.Score - a.Score
	})

	recs := make([]model.Recommendation, 0, min(k, len(candidates)))
	emitted := make(map[string]struct{}, k)
	for _, c := range candidates {
		if _, dup := emitted[c.Item.Title]; dup {
			continue
		}
		emitted[c.Item.Title] = struct{}{}
		recs = append(recs, model.Recommendation{Item: c.Item, Score: c.Score})
		if len(recs) == k {
			break
		}
	}
	return recs
}

// Rank is Score followed by Select.
func Rank(topics []string, items []model.CatalogItem, k int) []model.Recommendation {
	return Select(Score(topics, items), k)
}
