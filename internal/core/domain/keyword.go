package domain

import (
	"errors"
	"strings"
)

// Keyword is one extracted term with its in-document relevance
// (occurrence count over total filtered token count).
type Keyword struct {
	Term      string  `json:"term"`
	Relevance float64 `json:"relevance"`
}

// KeywordWeight is the learned unit: a numeric strength binding a
// normalized term to a category in one language. Weight stays inside
// [weight_min, weight_max]; every write path clamps before persisting.
// The (CategoryID, Term, Language) tuple is unique in the store.
type KeywordWeight struct {
	CategoryID string  `json:"category_id"`
	Term       string  `json:"term"`
	Language   string  `json:"language"`
	Weight     float64 `json:"weight"`
	MatchCount int     `json:"match_count"`
	Learned    bool    `json:"learned"`
}

func NewKeywordWeight(categoryID, term, language string, weight float64, learned bool) (KeywordWeight, error) {
	categoryID = strings.TrimSpace(categoryID)
	term = strings.ToLower(strings.TrimSpace(term))
	language = strings.ToLower(strings.TrimSpace(language))
	if categoryID == "" {
		return KeywordWeight{}, WrapError(ErrInvalidInput, "new keyword weight", errors.New("empty category id"))
	}
	if term == "" {
		return KeywordWeight{}, WrapError(ErrInvalidInput, "new keyword weight", errors.New("empty term"))
	}
	if language == "" {
		return KeywordWeight{}, WrapError(ErrInvalidInput, "new keyword weight", errors.New("empty language"))
	}
	return KeywordWeight{
		CategoryID: categoryID,
		Term:       term,
		Language:   language,
		Weight:     weight,
		Learned:    learned,
	}, nil
}

// ClampWeight bounds a computed weight into [min, max]. Idempotent, so
// retried writes may reapply it safely.
func ClampWeight(weight, min, max float64) float64 {
	if weight < min {
		return min
	}
	if weight > max {
		return max
	}
	return weight
}
