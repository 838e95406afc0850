package usecase

import (
	"sort"

	"github.com/mkarasev/doccat/internal/core/domain"
)

// scoreCategories computes a bounded similarity score per candidate
// category from the overlap between document keywords and that
// category's weight map:
//
//	score = min(1, |matched| * avgWeight / totalKeywords)
//
// Breadth of overlap and learned specificity of the matched terms both
// raise the score; normalizing by the document's keyword count keeps
// long documents from being favored. Categories arrive in creation
// order and the sort is stable, so score ties break by creation order.
func scoreCategories(
	categories []domain.Category,
	keywords []domain.Keyword,
	weights map[string]map[string]float64,
) []domain.CategoryScore {
	scores := make([]domain.CategoryScore, 0, len(categories))
	for _, category := range categories {
		scores = append(scores, scoreCategory(category, keywords, weights[category.ID]))
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})
	return scores
}

func scoreCategory(category domain.Category, keywords []domain.Keyword, weightMap map[string]float64) domain.CategoryScore {
	score := domain.CategoryScore{Category: category}
	if len(keywords) == 0 || len(weightMap) == 0 {
		return score
	}

	var sum float64
	for _, kw := range keywords {
		weight, ok := weightMap[kw.Term]
		if !ok {
			continue
		}
		score.Matched = append(score.Matched, kw.Term)
		sum += weight
	}
	if len(score.Matched) == 0 {
		return score
	}

	avg := sum / float64(len(score.Matched))
	raw := float64(len(score.Matched)) * avg / float64(len(keywords))
	if raw > 1.0 {
		raw = 1.0
	}
	score.Score = raw
	return score
}
