package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/mkarasev/doccat/internal/core/domain"
	"github.com/mkarasev/doccat/internal/core/ports"
)

// BatchUseCase fans classification work out across the documents of one
// submission with bounded concurrency. Per-document failures are
// recorded on their items and counted; only job-level setup errors mark
// the whole job failed. Items may finish in any order — the job counters
// are bumped atomically by the repository as each one completes, so a
// poller (or a crash) always sees a consistent partial snapshot.
type BatchUseCase struct {
	jobs       ports.BatchJobRepository
	extractor  ports.TextExtractor
	classifier ports.DocumentClassifier
	queue      ports.MessageQueue

	concurrency int64
	limiter     *rate.Limiter
	log         *slog.Logger
}

func NewBatchUseCase(
	jobs ports.BatchJobRepository,
	extractor ports.TextExtractor,
	classifier ports.DocumentClassifier,
	queue ports.MessageQueue,
	concurrency int,
	docsPerSecond float64,
	log *slog.Logger,
) *BatchUseCase {
	if concurrency <= 0 {
		concurrency = 4
	}
	var limiter *rate.Limiter
	if docsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(docsPerSecond), 1)
	}
	if log == nil {
		log = slog.Default()
	}
	return &BatchUseCase{
		jobs:        jobs,
		extractor:   extractor,
		classifier:  classifier,
		queue:       queue,
		concurrency: int64(concurrency),
		limiter:     limiter,
		log:         log,
	}
}

// Submit persists the job with its items and publishes the job id; the
// caller gets the identifier back immediately and polls for progress.
func (uc *BatchUseCase) Submit(ctx context.Context, tenantID string, items []domain.BatchItem) (*domain.BatchJob, error) {
	if len(items) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "submit batch", fmt.Errorf("no documents"))
	}

	now := time.Now().UTC()
	job := &domain.BatchJob{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		Status:    domain.BatchPending,
		Total:     len(items),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for i := range items {
		items[i].JobID = job.ID
		items[i].Status = domain.ItemPending
	}

	if err := uc.jobs.CreateJob(ctx, job, items); err != nil {
		return nil, fmt.Errorf("create batch job: %w", err)
	}
	if err := uc.queue.PublishBatchSubmitted(ctx, job.ID); err != nil {
		return nil, fmt.Errorf("publish batch submission: %w", err)
	}
	return job, nil
}

func (uc *BatchUseCase) ProcessJob(ctx context.Context, jobID string) error {
	job, err := uc.jobs.GetJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load batch job: %w", err)
	}

	items, err := uc.jobs.ListItems(ctx, jobID)
	if err != nil {
		return uc.failJob(ctx, jobID, fmt.Errorf("list batch items: %w", err))
	}

	if err := uc.jobs.MarkJob(ctx, jobID, domain.BatchProcessing, ""); err != nil {
		return fmt.Errorf("set job status=processing: %w", err)
	}

	sem := semaphore.NewWeighted(uc.concurrency)
	var wg sync.WaitGroup
	for _, item := range items {
		if item.Status != domain.ItemPending {
			continue
		}
		if uc.limiter != nil {
			if err := uc.limiter.Wait(ctx); err != nil {
				wg.Wait()
				return err
			}
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			// In-flight documents are allowed to finish; the job stays
			// in processing with correct partial counts.
			wg.Wait()
			return err
		}
		wg.Add(1)
		go func(item domain.BatchItem) {
			defer wg.Done()
			defer sem.Release(1)
			uc.processItem(ctx, job.TenantID, item)
		}(item)
	}
	wg.Wait()

	if err := uc.jobs.MarkJob(ctx, jobID, domain.BatchCompleted, ""); err != nil {
		return fmt.Errorf("set job status=completed: %w", err)
	}
	return nil
}

func (uc *BatchUseCase) GetJob(ctx context.Context, jobID string) (*domain.BatchJob, error) {
	return uc.jobs.GetJob(ctx, jobID)
}

func (uc *BatchUseCase) ListItems(ctx context.Context, jobID string) ([]domain.BatchItem, error) {
	return uc.jobs.ListItems(ctx, jobID)
}

func (uc *BatchUseCase) processItem(ctx context.Context, tenantID string, item domain.BatchItem) {
	result, err := uc.analyzeItem(ctx, tenantID, item)
	if err != nil {
		item.Status = domain.ItemFailed
		item.Error = err.Error()
	} else {
		item.Status = domain.ItemSucceeded
		item.Outcome = result.Outcome
		if result.Assigned != nil {
			item.CategoryID = result.Assigned.Category.ID
			item.Score = result.Assigned.Score
		}
	}

	if err := uc.jobs.RecordItemResult(ctx, item); err != nil {
		uc.log.Error("record batch item result",
			"job", item.JobID,
			"document", item.DocumentID,
			"error", err,
		)
	}
}

func (uc *BatchUseCase) analyzeItem(ctx context.Context, tenantID string, item domain.BatchItem) (*domain.ClassificationResult, error) {
	text, err := uc.extractor.Extract(ctx, item.StorageKey, item.Filename)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}
	result, err := uc.classifier.Classify(ctx, domain.ClassifyRequest{
		TenantID:   tenantID,
		DocumentID: item.DocumentID,
		Text:       text,
	})
	if err != nil {
		return nil, fmt.Errorf("classify document: %w", err)
	}
	return result, nil
}

func (uc *BatchUseCase) failJob(ctx context.Context, jobID string, setupErr error) error {
	if err := uc.jobs.MarkJob(ctx, jobID, domain.BatchFailed, setupErr.Error()); err != nil {
		return fmt.Errorf("%w; mark failed status: %v", setupErr, err)
	}
	return setupErr
}
