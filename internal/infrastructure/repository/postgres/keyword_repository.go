package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mkarasev/doccat/internal/core/domain"
	"github.com/mkarasev/doccat/internal/infrastructure/resilience"
)

// dedupeWeightsQuery keeps the highest-weight row per key tuple. The
// table predates the uniqueness constraint, so the pass runs both at
// schema bootstrap and on demand.
const dedupeWeightsQuery = `
DELETE FROM keyword_weights a
USING keyword_weights b
WHERE a.category_id = b.category_id
  AND a.term = b.term
  AND a.language = b.language
  AND (a.weight < b.weight OR (a.weight = b.weight AND a.ctid < b.ctid))
`

// KeywordRepository is the keyword-weight store. Same-key upserts
// serialize on the unique index; contended writes retry through the
// resilience executor with the (idempotent) clamp already applied by
// the caller.
type KeywordRepository struct {
	db       *sql.DB
	executor *resilience.Executor
}

func NewKeywordRepository(db *sql.DB, executor *resilience.Executor) *KeywordRepository {
	return &KeywordRepository{db: db, executor: executor}
}

func (r *KeywordRepository) GetWeights(ctx context.Context, categoryIDs []string, language string) (map[string]map[string]float64, error) {
	out := make(map[string]map[string]float64, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT category_id, term, weight
FROM keyword_weights
WHERE category_id = ANY($1) AND language = $2
ORDER BY category_id, term
`, categoryIDs, strings.ToLower(language))
	if err != nil {
		return nil, fmt.Errorf("query keyword weights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var categoryID, term string
		var weight float64
		if err := rows.Scan(&categoryID, &term, &weight); err != nil {
			return nil, fmt.Errorf("scan keyword weight: %w", err)
		}
		terms := out[categoryID]
		if terms == nil {
			terms = make(map[string]float64)
			out[categoryID] = terms
		}
		terms[term] = weight
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keyword weights: %w", err)
	}
	return out, nil
}

func (r *KeywordRepository) UpsertWeight(ctx context.Context, weight domain.KeywordWeight) error {
	call := func(callCtx context.Context) error {
		_, err := r.db.ExecContext(callCtx, `
INSERT INTO keyword_weights (category_id, term, language, weight, match_count, learned, updated_at)
VALUES ($1, $2, $3, $4, 1, $5, $6)
ON CONFLICT (category_id, term, language) DO UPDATE
SET weight = EXCLUDED.weight,
    match_count = keyword_weights.match_count + 1,
    learned = keyword_weights.learned OR EXCLUDED.learned,
    updated_at = EXCLUDED.updated_at
`, weight.CategoryID, weight.Term, weight.Language, weight.Weight, weight.Learned, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("upsert keyword weight: %w", err)
		}
		return nil
	}

	if r.executor != nil {
		return r.executor.Execute(ctx, "keyword_weights.upsert", call, classifyWriteError)
	}
	return call(ctx)
}

func (r *KeywordRepository) SeedWeights(ctx context.Context, weights []domain.KeywordWeight) error {
	if len(weights) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	for _, w := range weights {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO keyword_weights (category_id, term, language, weight, match_count, learned, updated_at)
VALUES ($1, $2, $3, $4, 0, $5, $6)
ON CONFLICT (category_id, term, language) DO NOTHING
`, w.CategoryID, w.Term, w.Language, w.Weight, w.Learned, now); err != nil {
			return fmt.Errorf("seed keyword weight %s/%s: %w", w.CategoryID, w.Term, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}

func (r *KeywordRepository) DedupeWeights(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, dedupeWeightsQuery)
	if err != nil {
		return 0, fmt.Errorf("dedupe keyword weights: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("dedupe rows affected: %w", err)
	}
	return removed, nil
}

// classifyWriteError treats serialization and deadlock conflicts as
// retryable; the clamp was applied before the write, so a retry simply
// replays the same bounded value.
func classifyWriteError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	msg := err.Error()
	retryable := strings.Contains(msg, "40001") || // serialization_failure
		strings.Contains(msg, "40P01") || // deadlock_detected
		strings.Contains(msg, "55P03") // lock_not_available
	return resilience.ErrorClassification{
		Retryable:     retryable,
		RecordFailure: !retryable,
	}
}
