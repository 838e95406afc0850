package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mkarasev/doccat/internal/config"
	"github.com/mkarasev/doccat/internal/core/domain"
	"github.com/mkarasev/doccat/internal/core/ports"
	"github.com/mkarasev/doccat/internal/core/usecase"
	"github.com/mkarasev/doccat/internal/infrastructure/extractor/filetext"
	"github.com/mkarasev/doccat/internal/infrastructure/keywords"
	"github.com/mkarasev/doccat/internal/infrastructure/keywords/seeds"
	"github.com/mkarasev/doccat/internal/infrastructure/langdetect"
	"github.com/mkarasev/doccat/internal/infrastructure/queue/nats"
	"github.com/mkarasev/doccat/internal/infrastructure/repository/postgres"
	"github.com/mkarasev/doccat/internal/infrastructure/resilience"
	"github.com/mkarasev/doccat/internal/infrastructure/storage/localfs"
	"github.com/mkarasev/doccat/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue    ports.MessageQueue
	Settings *usecase.SettingsCache

	ClassifyUC ports.DocumentClassifier
	FeedbackUC ports.FeedbackHandler
	BatchUC    *usecase.BatchUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger, workerMetrics *metrics.WorkerMetrics) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	weightRepo := postgres.NewKeywordRepository(db, executor)
	categoryRepo := postgres.NewCategoryRepository(db)
	stopwordRepo := postgres.NewStopWordRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	batchRepo := postgres.NewBatchRepository(db)

	if err := seedDefaults(ctx, categoryRepo, weightRepo, stopwordRepo, settingsRepo); err != nil {
		return nil, fmt.Errorf("seed defaults: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSBatchSubject, cfg.NATSFeedbackSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	settings := usecase.NewSettingsCache(settingsRepo, log)
	detector := langdetect.New()
	extractor := keywords.NewExtractor(stopwordRepo)
	fileExtractor := filetext.New(storage)

	var classifier ports.DocumentClassifier = usecase.NewClassifyUseCase(categoryRepo, weightRepo, detector, extractor, settings, log)
	if workerMetrics != nil {
		classifier = &instrumentedClassifier{next: classifier, metrics: workerMetrics, service: cfg.ServiceName}
	}
	feedbackUC := usecase.NewAdaptWeightsUseCase(weightRepo, categoryRepo, stopwordRepo, settings, log)
	batchUC := usecase.NewBatchUseCase(batchRepo, fileExtractor, classifier, queue,
		cfg.BatchConcurrency, cfg.BatchDocsPerSecond, log)

	return &App{
		Config:   cfg,
		Queue:    queue,
		Settings: settings,

		ClassifyUC: classifier,
		FeedbackUC: feedbackUC,
		BatchUC:    batchUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// instrumentedClassifier records outcome and latency around every
// single-document classification.
type instrumentedClassifier struct {
	next    ports.DocumentClassifier
	metrics *metrics.WorkerMetrics
	service string
}

func (c *instrumentedClassifier) Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.ClassificationResult, error) {
	start := time.Now()
	result, err := c.next.Classify(ctx, req)
	if err != nil {
		c.metrics.ObserveClassification(c.service, "error", time.Since(start))
		return nil, err
	}
	c.metrics.ObserveClassification(c.service, string(result.Outcome), time.Since(start))
	return result, nil
}

// seedDefaults loads the embedded stop word sets, system template
// categories with their seed weights, and the default settings keys.
// Every insert is idempotent, so concurrent worker startups converge.
func seedDefaults(
	ctx context.Context,
	categories *postgres.CategoryRepository,
	weights *postgres.KeywordRepository,
	stopwords *postgres.StopWordRepository,
	settings *postgres.SettingsRepository,
) error {
	data, err := seeds.Load()
	if err != nil {
		return err
	}

	for language, words := range data.StopWords {
		if err := stopwords.AddStopWords(ctx, language, words); err != nil {
			return err
		}
	}

	existing, err := categories.ListActive(ctx, "")
	if err != nil {
		return err
	}
	byKey := make(map[string]domain.Category, len(existing))
	for _, c := range existing {
		byKey[c.Key] = c
	}

	now := time.Now().UTC()
	for _, seed := range data.Categories {
		category, ok := byKey[seed.Key]
		if !ok {
			category, err = domain.NewCategory(uuid.NewString(), "", seed.Key, seed.Name, now)
			if err != nil {
				return err
			}
			if err := categories.Create(ctx, category); err != nil {
				return err
			}
		}

		seedWeights := make([]domain.KeywordWeight, 0)
		for language, terms := range seed.Weights {
			for term, weight := range terms {
				kw, err := domain.NewKeywordWeight(category.ID, term, language, weight, false)
				if err != nil {
					return err
				}
				seedWeights = append(seedWeights, kw)
			}
		}
		if err := weights.SeedWeights(ctx, seedWeights); err != nil {
			return err
		}
	}

	return seedSettings(ctx, settings)
}

func seedSettings(ctx context.Context, settings *postgres.SettingsRepository) error {
	stored, err := settings.Load(ctx)
	if err != nil {
		return err
	}

	def := domain.DefaultClassificationSettings()
	defaults := map[string]string{
		domain.SettingMinConfidence:                  formatFloat(def.MinConfidence),
		domain.SettingAmbiguityGap:                   formatFloat(def.AmbiguityGap),
		domain.SettingMinKeywordLength:               strconv.Itoa(def.MinKeywordLength),
		domain.SettingMinKeywordsRequired:            strconv.Itoa(def.MinKeywordsRequired),
		domain.SettingMaxKeywordsPerDocument:         strconv.Itoa(def.MaxKeywordsPerDocument),
		domain.SettingWeightMin:                      formatFloat(def.WeightMin),
		domain.SettingWeightMax:                      formatFloat(def.WeightMax),
		domain.SettingLearningRate:                   formatFloat(def.LearningRate),
		domain.SettingPrimaryWeight:                  formatFloat(def.PrimaryWeight),
		domain.SettingSecondaryWeight:                formatFloat(def.SecondaryWeight),
		domain.SettingCorrectPredictionBonus:         formatFloat(def.CorrectPredictionBonus),
		domain.SettingWrongPredictionBoost:           formatFloat(def.WrongPredictionBoost),
		domain.SettingLowConfidenceCorrectMultiplier: formatFloat(def.LowConfidenceCorrectMultiplier),
		domain.SettingHighConfidenceWrongMultiplier:  formatFloat(def.HighConfidenceWrongMultiplier),
		domain.SettingMinWeightDifferential:          formatFloat(def.MinWeightDifferential),
		domain.SettingLowConfidenceThreshold:         formatFloat(def.LowConfidenceThreshold),
		domain.SettingHighConfidenceThreshold:        formatFloat(def.HighConfidenceThreshold),
		domain.SettingKeywordStemmingEnabled:         strconv.FormatBool(def.KeywordStemmingEnabled),
		domain.SettingDefaultLanguage:                def.DefaultLanguage,
		domain.SettingShortTextWordThreshold:         strconv.Itoa(def.ShortTextWordThreshold),
		domain.SettingDetectorConfidenceFloor:        formatFloat(def.DetectorConfidenceFloor),
	}

	for key, value := range defaults {
		if _, ok := stored[key]; ok {
			continue
		}
		if err := settings.Put(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
