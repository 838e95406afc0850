package keywords

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/kljensen/snowball"

	"github.com/mkarasev/doccat/internal/core/domain"
	"github.com/mkarasev/doccat/internal/core/ports"
)

const (
	defaultMinKeywordLength = 3
	defaultMaxKeywords      = 50
)

// snowball language names by ISO 639-1 code; terms in other languages
// are left unstemmed.
var stemmerLanguages = map[string]string{
	"en": "english",
	"es": "spanish",
	"fr": "french",
	"ru": "russian",
	"sv": "swedish",
	"no": "norwegian",
	"hu": "hungarian",
}

// Extractor turns document text into a ranked keyword list: lowercase
// unicode tokens, minimum length and stop word filters, optional
// stemming, relevance = occurrence count over total filtered tokens.
// Frequency ties keep first-seen order.
type Extractor struct {
	stopwords ports.StopWordRepository
}

func NewExtractor(stopwords ports.StopWordRepository) *Extractor {
	return &Extractor{stopwords: stopwords}
}

func (e *Extractor) Extract(ctx context.Context, text, language string, opts ports.ExtractOptions) ([]domain.Keyword, error) {
	if opts.MinKeywordLength <= 0 {
		opts.MinKeywordLength = defaultMinKeywordLength
	}
	if opts.MaxKeywords <= 0 {
		opts.MaxKeywords = defaultMaxKeywords
	}

	tokens := tokenize(text)
	if len(tokens) == 0 {
		return []domain.Keyword{}, nil
	}

	stops, err := e.stopwords.StopWords(ctx, language)
	if err != nil {
		return nil, fmt.Errorf("load stop words: %w", err)
	}

	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	total := 0
	for _, token := range tokens {
		if utf8.RuneCountInString(token) < opts.MinKeywordLength {
			continue
		}
		if _, stop := stops[token]; stop {
			continue
		}
		term := token
		if opts.Stemming {
			term = stem(token, language)
		}
		if counts[term] == 0 {
			order = append(order, term)
		}
		counts[term]++
		total++
	}
	if total == 0 {
		return []domain.Keyword{}, nil
	}

	// Stable sort on first-seen order: equal frequencies keep it.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > opts.MaxKeywords {
		order = order[:opts.MaxKeywords]
	}

	out := make([]domain.Keyword, 0, len(order))
	for _, term := range order {
		out = append(out, domain.Keyword{
			Term:      term,
			Relevance: float64(counts[term]) / float64(total),
		})
	}
	return out, nil
}

func stem(token, language string) string {
	name, ok := stemmerLanguages[strings.ToLower(language)]
	if !ok {
		return token
	}
	stemmed, err := snowball.Stem(token, name, true)
	if err != nil || stemmed == "" {
		return token
	}
	return stemmed
}

// tokenize lowercases and splits on anything that is not a letter or
// digit, keeping unicode words intact.
func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 64)
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
