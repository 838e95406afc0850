package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mkarasev/doccat/internal/core/domain"
	"github.com/mkarasev/doccat/internal/core/ports"
)

// ClassifyUseCase runs the classification pipeline for one document:
// language identification, keyword extraction, scoring against every
// active category of the tenant, then the decision policy. Each call is
// pure given the weight snapshot it reads; nothing is cached across
// documents.
type ClassifyUseCase struct {
	categories ports.CategoryRepository
	weights    ports.WeightRepository
	detector   ports.LanguageDetector
	extractor  ports.KeywordExtractor
	settings   *SettingsCache
	log        *slog.Logger
}

func NewClassifyUseCase(
	categories ports.CategoryRepository,
	weights ports.WeightRepository,
	detector ports.LanguageDetector,
	extractor ports.KeywordExtractor,
	settings *SettingsCache,
	log *slog.Logger,
) *ClassifyUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &ClassifyUseCase{
		categories: categories,
		weights:    weights,
		detector:   detector,
		extractor:  extractor,
		settings:   settings,
		log:        log,
	}
}

func (uc *ClassifyUseCase) Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.ClassificationResult, error) {
	st, err := uc.settings.Current(ctx)
	if err != nil {
		return nil, err
	}

	language := req.LanguageHint
	if language == "" {
		language = uc.detector.Detect(req.Text, ports.DetectOptions{
			ShortTextWordThreshold: st.ShortTextWordThreshold,
			ConfidenceFloor:        st.DetectorConfidenceFloor,
			DefaultLanguage:        st.DefaultLanguage,
		})
	}

	keywords, err := uc.extractor.Extract(ctx, req.Text, language, ports.ExtractOptions{
		MinKeywordLength: st.MinKeywordLength,
		MaxKeywords:      st.MaxKeywordsPerDocument,
		Stemming:         st.KeywordStemmingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}

	categories, err := uc.categories.ListActive(ctx, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("list active categories: %w", err)
	}

	result := &domain.ClassificationResult{
		Language: language,
		Keywords: keywords,
		Outcome:  domain.OutcomeAbstain,
	}
	if len(categories) == 0 || len(keywords) == 0 {
		return result, nil
	}

	ids := make([]string, 0, len(categories))
	for _, c := range categories {
		ids = append(ids, c.ID)
	}
	weightMaps, err := uc.weights.GetWeights(ctx, ids, language)
	if err != nil {
		return nil, fmt.Errorf("read keyword weights: %w", err)
	}

	result.Scores = scoreCategories(categories, keywords, weightMaps)
	result.Outcome, result.Assigned = decide(result.Scores, st.MinConfidence, st.AmbiguityGap)

	uc.log.Debug("document classified",
		"tenant", req.TenantID,
		"document", req.DocumentID,
		"language", language,
		"keywords", len(keywords),
		"candidates", len(result.Scores),
		"outcome", result.Outcome,
	)
	return result, nil
}
