package domain

import "time"

type BatchStatus string

const (
	BatchPending    BatchStatus = "pending"
	BatchProcessing BatchStatus = "processing"
	BatchCompleted  BatchStatus = "completed"
	BatchFailed     BatchStatus = "failed"
)

type BatchItemStatus string

const (
	ItemPending   BatchItemStatus = "pending"
	ItemSucceeded BatchItemStatus = "succeeded"
	ItemFailed    BatchItemStatus = "failed"
)

// BatchJob tracks one multi-document submission. The row is the single
// source of truth for progress: counters are bumped as each document
// finishes, so a crash mid-batch leaves correct partial counts. Only
// job-level setup errors mark the job failed; per-document failures are
// recorded on their items and counted.
type BatchJob struct {
	ID          string      `json:"id"`
	TenantID    string      `json:"tenant_id"`
	Status      BatchStatus `json:"status"`
	Total       int         `json:"total"`
	Processed   int         `json:"processed"`
	Succeeded   int         `json:"succeeded"`
	Failed      int         `json:"failed"`
	CurrentItem string      `json:"current_item,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// BatchItem is the per-document outcome inside a batch job.
type BatchItem struct {
	JobID      string          `json:"job_id"`
	DocumentID string          `json:"document_id"`
	StorageKey string          `json:"storage_key"`
	Filename   string          `json:"filename"`
	Status     BatchItemStatus `json:"status"`
	CategoryID string          `json:"category_id,omitempty"`
	Score      float64         `json:"score"`
	Outcome    Outcome         `json:"outcome,omitempty"`
	Error      string          `json:"error,omitempty"`
}
