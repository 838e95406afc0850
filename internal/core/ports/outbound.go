package ports

import (
	"context"
	"io"

	"github.com/mkarasev/doccat/internal/core/domain"
)

// WeightRepository persists the keyword→weight tables. Callers clamp
// weights before every upsert; the repository never writes an unclamped
// value, and same-key upserts serialize on the unique key tuple.
type WeightRepository interface {
	// GetWeights returns term→weight per category for one language,
	// batched for a whole classification call.
	GetWeights(ctx context.Context, categoryIDs []string, language string) (map[string]map[string]float64, error)
	UpsertWeight(ctx context.Context, weight domain.KeywordWeight) error
	SeedWeights(ctx context.Context, weights []domain.KeywordWeight) error
	// DedupeWeights collapses historical duplicates of the key tuple,
	// keeping the highest-weight row. Returns rows removed.
	DedupeWeights(ctx context.Context) (int64, error)
}

// CategoryRepository reads and writes classification targets. Reads
// scope to the tenant's categories, falling back to system templates
// when the tenant has none.
type CategoryRepository interface {
	ListActive(ctx context.Context, tenantID string) ([]domain.Category, error)
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	Create(ctx context.Context, category domain.Category) error
	Deactivate(ctx context.Context, id string) error
	// SeedTenant clones active system templates (and their seed weights)
	// for a new tenant. Idempotent per (tenant, template key).
	SeedTenant(ctx context.Context, tenantID string) ([]domain.Category, error)
}

// StopWordRepository serves per-language stop word sets. Append-only.
type StopWordRepository interface {
	StopWords(ctx context.Context, language string) (map[string]struct{}, error)
	AddStopWords(ctx context.Context, language string, words []string) error
}

// SettingsRepository stores the named scalar parameters of the engine.
type SettingsRepository interface {
	Load(ctx context.Context) (map[string]string, error)
	Put(ctx context.Context, key, value string) error
}

// BatchJobRepository persists batch jobs and their per-document items.
// RecordItemResult updates the item and bumps the job counters in one
// statement so progress stays consistent under concurrent completion.
type BatchJobRepository interface {
	CreateJob(ctx context.Context, job *domain.BatchJob, items []domain.BatchItem) error
	GetJob(ctx context.Context, jobID string) (*domain.BatchJob, error)
	ListItems(ctx context.Context, jobID string) ([]domain.BatchItem, error)
	MarkJob(ctx context.Context, jobID string, status domain.BatchStatus, errMessage string) error
	RecordItemResult(ctx context.Context, item domain.BatchItem) error
}

// MessageQueue transports batch submissions and confirmation events.
type MessageQueue interface {
	PublishBatchSubmitted(ctx context.Context, jobID string) error
	SubscribeBatchSubmitted(ctx context.Context, handler func(context.Context, string) error) error
	PublishFeedback(ctx context.Context, event domain.FeedbackEvent) error
	SubscribeFeedback(ctx context.Context, handler func(context.Context, domain.FeedbackEvent) error) error
}

// ObjectStorage stores extracted source blobs for batch processing.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// TextExtractor turns a stored source blob into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, storageKey, filename string) (string, error)
}

// DetectOptions parameterize language identification per call so the
// detector itself carries no reloadable state.
type DetectOptions struct {
	ShortTextWordThreshold int
	ConfidenceFloor        float64
	DefaultLanguage        string
}

// LanguageDetector assigns an ISO 639-1 code to a text sample. It never
// fails: when no detector is usable it returns the configured default.
type LanguageDetector interface {
	Detect(text string, opts DetectOptions) string
}

// ExtractOptions parameterize keyword extraction per call.
type ExtractOptions struct {
	MinKeywordLength int
	MaxKeywords      int
	Stemming         bool
}

// KeywordExtractor turns document text into a ranked keyword list.
type KeywordExtractor interface {
	Extract(ctx context.Context, text, language string, opts ExtractOptions) ([]domain.Keyword, error)
}
