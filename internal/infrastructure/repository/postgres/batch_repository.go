package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mkarasev/doccat/internal/core/domain"
)

type BatchRepository struct {
	db *sql.DB
}

func NewBatchRepository(db *sql.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) CreateJob(ctx context.Context, job *domain.BatchJob, items []domain.BatchItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO batch_jobs (id, tenant_id, status, total, processed, succeeded, failed, current_item, error_message, created_at, updated_at)
VALUES ($1, $2, $3, $4, 0, 0, 0, '', '', $5, $6)
`, job.ID, job.TenantID, string(job.Status), job.Total, job.CreatedAt, job.UpdatedAt); err != nil {
		return fmt.Errorf("insert batch job: %w", err)
	}

	for _, item := range items {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO batch_items (job_id, document_id, storage_key, filename, status, category_id, score, outcome, error_message)
VALUES ($1, $2, $3, $4, $5, '', 0, '', '')
`, item.JobID, item.DocumentID, item.StorageKey, item.Filename, string(item.Status)); err != nil {
			return fmt.Errorf("insert batch item %s: %w", item.DocumentID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch tx: %w", err)
	}
	return nil
}

func (r *BatchRepository) GetJob(ctx context.Context, jobID string) (*domain.BatchJob, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, status, total, processed, succeeded, failed, current_item, error_message, created_at, updated_at
FROM batch_jobs
WHERE id = $1
`, jobID)

	var job domain.BatchJob
	var status string
	err := row.Scan(
		&job.ID, &job.TenantID, &status, &job.Total, &job.Processed, &job.Succeeded, &job.Failed,
		&job.CurrentItem, &job.Error, &job.CreatedAt, &job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrJobNotFound, "get batch job", fmt.Errorf("id=%s", jobID))
		}
		return nil, fmt.Errorf("scan batch job: %w", err)
	}
	job.Status = domain.BatchStatus(status)
	return &job, nil
}

func (r *BatchRepository) ListItems(ctx context.Context, jobID string) ([]domain.BatchItem, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT job_id, document_id, storage_key, filename, status, category_id, score, outcome, error_message
FROM batch_items
WHERE job_id = $1
ORDER BY document_id
`, jobID)
	if err != nil {
		return nil, fmt.Errorf("list batch items: %w", err)
	}
	defer rows.Close()

	out := make([]domain.BatchItem, 0)
	for rows.Next() {
		var item domain.BatchItem
		var status, outcome string
		if err := rows.Scan(
			&item.JobID, &item.DocumentID, &item.StorageKey, &item.Filename,
			&status, &item.CategoryID, &item.Score, &outcome, &item.Error,
		); err != nil {
			return nil, fmt.Errorf("scan batch item: %w", err)
		}
		item.Status = domain.BatchItemStatus(status)
		item.Outcome = domain.Outcome(outcome)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch items: %w", err)
	}
	return out, nil
}

func (r *BatchRepository) MarkJob(ctx context.Context, jobID string, status domain.BatchStatus, errMessage string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE batch_jobs
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, jobID, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("mark batch job: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark batch job rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrJobNotFound, "mark batch job", fmt.Errorf("id=%s", jobID))
	}
	return nil
}

// RecordItemResult finalizes one item and bumps the job counters in the
// same transaction. The pending-status guard makes a duplicate delivery
// of the same result a no-op, so counters never overshoot under
// concurrent out-of-order completion.
func (r *BatchRepository) RecordItemResult(ctx context.Context, item domain.BatchItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin item result tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `
UPDATE batch_items
SET status = $3, category_id = $4, score = $5, outcome = $6, error_message = $7
WHERE job_id = $1 AND document_id = $2 AND status = $8
`, item.JobID, item.DocumentID, string(item.Status), item.CategoryID, item.Score,
		string(item.Outcome), item.Error, string(domain.ItemPending))
	if err != nil {
		return fmt.Errorf("update batch item: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("batch item rows affected: %w", err)
	}
	if rows == 0 {
		return tx.Commit() // already recorded
	}

	succeeded := 0
	failed := 0
	switch item.Status {
	case domain.ItemSucceeded:
		succeeded = 1
	case domain.ItemFailed:
		failed = 1
	}

	if _, err := tx.ExecContext(ctx, `
UPDATE batch_jobs
SET processed = processed + 1,
    succeeded = succeeded + $2,
    failed = failed + $3,
    current_item = $4,
    updated_at = $5
WHERE id = $1
`, item.JobID, succeeded, failed, item.DocumentID, time.Now().UTC()); err != nil {
		return fmt.Errorf("bump batch counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit item result tx: %w", err)
	}
	return nil
}
