package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mkarasev/doccat/internal/core/domain"
	"github.com/mkarasev/doccat/internal/core/ports"
)

// AdaptWeightsUseCase applies one confirmed-category event to the
// keyword weight tables. Wrong predictions receive a strictly larger
// correction than confirmations of correct ones, and the correction is
// conditioned on the original confidence: tentatively-right gets an
// extra reward, confidently-wrong an extra penalty. The rule performs
// no deduplication of repeated events; delivery is the caller's job.
type AdaptWeightsUseCase struct {
	weights    ports.WeightRepository
	categories ports.CategoryRepository
	stopwords  ports.StopWordRepository
	settings   *SettingsCache
	log        *slog.Logger
}

func NewAdaptWeightsUseCase(
	weights ports.WeightRepository,
	categories ports.CategoryRepository,
	stopwords ports.StopWordRepository,
	settings *SettingsCache,
	log *slog.Logger,
) *AdaptWeightsUseCase {
	if log == nil {
		log = slog.Default()
	}
	return &AdaptWeightsUseCase{
		weights:    weights,
		categories: categories,
		stopwords:  stopwords,
		settings:   settings,
		log:        log,
	}
}

func (uc *AdaptWeightsUseCase) Apply(ctx context.Context, event domain.FeedbackEvent) error {
	if event.TrueCategoryID == "" {
		return domain.WrapError(domain.ErrInvalidInput, "apply feedback", fmt.Errorf("missing true category"))
	}

	st, err := uc.settings.Current(ctx)
	if err != nil {
		return err
	}

	language := event.Language
	if language == "" {
		language = st.DefaultLanguage
	}

	qualifying, err := uc.qualifyingKeywords(ctx, event.Keywords, language, st)
	if err != nil {
		return err
	}
	if len(qualifying) < st.MinKeywordsRequired {
		// Insufficient training signal: a no-op, not a failure.
		uc.log.Debug("feedback skipped, insufficient keywords",
			"tenant", event.TenantID,
			"document", event.DocumentID,
			"qualifying", len(qualifying),
			"required", st.MinKeywordsRequired,
		)
		return nil
	}

	delta := uc.baseDelta(event, st)

	siblings, err := uc.categories.ListActive(ctx, event.TenantID)
	if err != nil {
		return fmt.Errorf("list categories for adaptation: %w", err)
	}
	ids := make([]string, 0, len(siblings))
	for _, c := range siblings {
		ids = append(ids, c.ID)
	}
	weightMaps, err := uc.weights.GetWeights(ctx, ids, language)
	if err != nil {
		return fmt.Errorf("read weights for adaptation: %w", err)
	}

	for _, term := range qualifying {
		if err := uc.adaptTerm(ctx, term, language, event, st, delta, weightMaps); err != nil {
			return err
		}
	}

	uc.log.Info("weights adapted",
		"tenant", event.TenantID,
		"document", event.DocumentID,
		"language", language,
		"keywords", len(qualifying),
		"correct", event.PredictedCategoryID == event.TrueCategoryID,
	)
	return nil
}

// baseDelta picks the asymmetric correction and conditions it on the
// original prediction confidence, then scales by the learning rate.
func (uc *AdaptWeightsUseCase) baseDelta(event domain.FeedbackEvent, st domain.ClassificationSettings) float64 {
	correct := event.PredictedCategoryID == event.TrueCategoryID

	var delta float64
	if correct {
		delta = st.CorrectPredictionBonus
		if event.PredictedConfidence < st.LowConfidenceThreshold {
			delta *= st.LowConfidenceCorrectMultiplier
		}
	} else {
		delta = st.WrongPredictionBoost
		if event.PredictedConfidence > st.HighConfidenceThreshold {
			delta *= st.HighConfidenceWrongMultiplier
		}
	}
	return delta * st.LearningRate
}

func (uc *AdaptWeightsUseCase) adaptTerm(
	ctx context.Context,
	term, language string,
	event domain.FeedbackEvent,
	st domain.ClassificationSettings,
	delta float64,
	weightMaps map[string]map[string]float64,
) error {
	current, ok := weightMaps[event.TrueCategoryID][term]
	if !ok {
		current = st.WeightMin
	}
	updated := domain.ClampWeight(current+st.PrimaryWeight*delta, st.WeightMin, st.WeightMax)

	weight, err := domain.NewKeywordWeight(event.TrueCategoryID, term, language, updated, true)
	if err != nil {
		return err
	}
	if err := uc.weights.UpsertWeight(ctx, weight); err != nil {
		return fmt.Errorf("upsert primary weight: %w", err)
	}
	if weightMaps[event.TrueCategoryID] == nil {
		weightMaps[event.TrueCategoryID] = make(map[string]float64)
	}
	weightMaps[event.TrueCategoryID][term] = updated

	// Secondary categories reflect co-occurrence only: a flat boost,
	// not confidence-conditioned.
	for _, secondaryID := range event.SecondaryCategoryIDs {
		if secondaryID == "" || secondaryID == event.TrueCategoryID {
			continue
		}
		currentSecondary, ok := weightMaps[secondaryID][term]
		if !ok {
			currentSecondary = st.WeightMin
		}
		updatedSecondary := domain.ClampWeight(currentSecondary+st.SecondaryWeight, st.WeightMin, st.WeightMax)
		secondary, err := domain.NewKeywordWeight(secondaryID, term, language, updatedSecondary, true)
		if err != nil {
			return err
		}
		if err := uc.weights.UpsertWeight(ctx, secondary); err != nil {
			return fmt.Errorf("upsert secondary weight: %w", err)
		}
		if weightMaps[secondaryID] == nil {
			weightMaps[secondaryID] = make(map[string]float64)
		}
		weightMaps[secondaryID][term] = updatedSecondary
	}

	uc.checkDifferential(term, event.TrueCategoryID, updated, st, weightMaps)
	return nil
}

// checkDifferential surfaces terms whose adapted weight does not clear
// every sibling by the configured margin. Such terms are too generic to
// discriminate; they are allowed to persist and simply contribute less
// through score normalization, so this is a diagnostic, never a failure.
func (uc *AdaptWeightsUseCase) checkDifferential(
	term, trueCategoryID string,
	updated float64,
	st domain.ClassificationSettings,
	weightMaps map[string]map[string]float64,
) {
	for categoryID, terms := range weightMaps {
		if categoryID == trueCategoryID {
			continue
		}
		sibling, ok := terms[term]
		if !ok {
			continue
		}
		if updated-sibling < st.MinWeightDifferential {
			uc.log.Debug("keyword weight differential below minimum",
				"term", term,
				"category", trueCategoryID,
				"sibling", categoryID,
				"weight", updated,
				"sibling_weight", sibling,
				"min_differential", st.MinWeightDifferential,
			)
		}
	}
}

// qualifyingKeywords normalizes, deduplicates (first-seen order) and
// filters the event keywords by minimum length and the language's stop
// word set.
func (uc *AdaptWeightsUseCase) qualifyingKeywords(
	ctx context.Context,
	raw []string,
	language string,
	st domain.ClassificationSettings,
) ([]string, error) {
	stops, err := uc.stopwords.StopWords(ctx, language)
	if err != nil {
		return nil, fmt.Errorf("load stop words: %w", err)
	}

	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, word := range raw {
		term := strings.ToLower(strings.TrimSpace(word))
		if term == "" || utf8.RuneCountInString(term) < st.MinKeywordLength {
			continue
		}
		if _, stop := stops[term]; stop {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}
	return out, nil
}
