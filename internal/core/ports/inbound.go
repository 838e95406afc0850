package ports

import (
	"context"

	"github.com/mkarasev/doccat/internal/core/domain"
)

// DocumentClassifier is the inbound contract for single-document
// classification: language → keywords → scoring → decision.
type DocumentClassifier interface {
	Classify(ctx context.Context, req domain.ClassifyRequest) (*domain.ClassificationResult, error)
}

// FeedbackHandler applies one confirmed-category event to the keyword
// weight store. Callers guarantee at-most-once delivery per confirmation;
// the handler performs no deduplication.
type FeedbackHandler interface {
	Apply(ctx context.Context, event domain.FeedbackEvent) error
}

// BatchSubmitter accepts a multi-document submission and returns the job
// immediately; processing happens asynchronously.
type BatchSubmitter interface {
	Submit(ctx context.Context, tenantID string, items []domain.BatchItem) (*domain.BatchJob, error)
}

// BatchProcessor runs one submitted job to completion.
type BatchProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
}

// BatchReader is the polling read model for job progress and per-document
// results.
type BatchReader interface {
	GetJob(ctx context.Context, jobID string) (*domain.BatchJob, error)
	ListItems(ctx context.Context, jobID string) ([]domain.BatchItem, error)
}
