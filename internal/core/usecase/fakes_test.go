package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/mkarasev/doccat/internal/core/domain"
	"github.com/mkarasev/doccat/internal/core/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSettingsRepo struct {
	values map[string]string
	err    error
	loads  int
}

func (f *fakeSettingsRepo) Load(context.Context) (map[string]string, error) {
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	return f.values, nil
}

func (f *fakeSettingsRepo) Put(_ context.Context, key, value string) error {
	if f.values == nil {
		f.values = make(map[string]string)
	}
	f.values[key] = value
	return nil
}

type fakeCategoryRepo struct {
	categories []domain.Category
	err        error
}

func (f *fakeCategoryRepo) ListActive(context.Context, string) ([]domain.Category, error) {
	return f.categories, f.err
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	for i := range f.categories {
		if f.categories[i].ID == id {
			return &f.categories[i], nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) Create(context.Context, domain.Category) error { return nil }
func (f *fakeCategoryRepo) Deactivate(context.Context, string) error      { return nil }

func (f *fakeCategoryRepo) SeedTenant(context.Context, string) ([]domain.Category, error) {
	return f.categories, nil
}

type fakeWeightRepo struct {
	mu       sync.Mutex
	weights  map[string]map[string]float64
	upserts  []domain.KeywordWeight
	getErr   error
	writeErr error
}

func (f *fakeWeightRepo) GetWeights(_ context.Context, categoryIDs []string, _ string) (map[string]map[string]float64, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make(map[string]map[string]float64, len(categoryIDs))
	for _, id := range categoryIDs {
		if terms, ok := f.weights[id]; ok {
			cloned := make(map[string]float64, len(terms))
			for term, w := range terms {
				cloned[term] = w
			}
			out[id] = cloned
		}
	}
	return out, nil
}

func (f *fakeWeightRepo) UpsertWeight(_ context.Context, weight domain.KeywordWeight) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, weight)
	if f.weights == nil {
		f.weights = make(map[string]map[string]float64)
	}
	if f.weights[weight.CategoryID] == nil {
		f.weights[weight.CategoryID] = make(map[string]float64)
	}
	f.weights[weight.CategoryID][weight.Term] = weight.Weight
	return nil
}

func (f *fakeWeightRepo) SeedWeights(ctx context.Context, weights []domain.KeywordWeight) error {
	for _, w := range weights {
		if err := f.UpsertWeight(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeWeightRepo) DedupeWeights(context.Context) (int64, error) { return 0, nil }

// upsertsFor filters recorded writes by category.
func (f *fakeWeightRepo) upsertsFor(categoryID string) []domain.KeywordWeight {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.KeywordWeight
	for _, u := range f.upserts {
		if u.CategoryID == categoryID {
			out = append(out, u)
		}
	}
	return out
}

type fakeStopWordRepo struct {
	words map[string]struct{}
	err   error
}

func (f *fakeStopWordRepo) StopWords(context.Context, string) (map[string]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.words == nil {
		return map[string]struct{}{}, nil
	}
	return f.words, nil
}

func (f *fakeStopWordRepo) AddStopWords(context.Context, string, []string) error { return nil }

type fakeDetector struct {
	language string
	calls    int
}

func (f *fakeDetector) Detect(string, ports.DetectOptions) string {
	f.calls++
	return f.language
}

type fakeKeywordExtractor struct {
	keywords []domain.Keyword
	err      error
	lastLang string
	lastOpts ports.ExtractOptions
}

func (f *fakeKeywordExtractor) Extract(_ context.Context, _ string, language string, opts ports.ExtractOptions) ([]domain.Keyword, error) {
	f.lastLang = language
	f.lastOpts = opts
	return f.keywords, f.err
}

func newTestSettings(values map[string]string) *SettingsCache {
	return NewSettingsCache(&fakeSettingsRepo{values: values}, discardLogger())
}
