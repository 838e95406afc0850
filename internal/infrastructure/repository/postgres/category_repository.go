package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mkarasev/doccat/internal/core/domain"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListActive returns the tenant's active categories in creation order,
// falling back to the system templates when the tenant owns none. The
// creation order is load-bearing: the scorer breaks score ties by it.
func (r *CategoryRepository) ListActive(ctx context.Context, tenantID string) ([]domain.Category, error) {
	categories, err := r.listActiveScope(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if len(categories) == 0 && tenantID != "" {
		return r.listActiveScope(ctx, "")
	}
	return categories, nil
}

func (r *CategoryRepository) listActiveScope(ctx context.Context, tenantID string) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, tenant_id, key, name, active, created_at
FROM categories
WHERE tenant_id = $1 AND active
ORDER BY created_at, id
`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Key, &c.Name, &c.Active, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate categories: %w", err)
	}
	return out, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, tenant_id, key, name, active, created_at
FROM categories
WHERE id = $1
`, id)

	var c domain.Category
	err := row.Scan(&c.ID, &c.TenantID, &c.Key, &c.Name, &c.Active, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrCategoryNotFound, "get category", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category domain.Category) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO categories (id, tenant_id, key, name, active, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, category.ID, category.TenantID, category.Key, category.Name, category.Active, category.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// Deactivate soft-disables a category. Rows are never hard-deleted
// while documents reference them.
func (r *CategoryRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE categories SET active = FALSE WHERE id = $1
`, id)
	if err != nil {
		return fmt.Errorf("deactivate category: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrCategoryNotFound, "deactivate category", fmt.Errorf("id=%s", id))
	}
	return nil
}

// SeedTenant clones the active system templates (with their seed
// weights) for a new tenant. Re-running for the same tenant is a no-op
// per template key.
func (r *CategoryRepository) SeedTenant(ctx context.Context, tenantID string) ([]domain.Category, error) {
	if tenantID == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "seed tenant", errors.New("empty tenant id"))
	}

	templates, err := r.listActiveScope(ctx, "")
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin seed tenant tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	created := make([]domain.Category, 0, len(templates))
	now := time.Now().UTC()
	for _, template := range templates {
		clone, err := domain.NewCategory(uuid.NewString(), tenantID, template.Key, template.Name, now)
		if err != nil {
			return nil, err
		}

		var insertedID string
		err = tx.QueryRowContext(ctx, `
INSERT INTO categories (id, tenant_id, key, name, active, created_at)
VALUES ($1, $2, $3, $4, TRUE, $5)
ON CONFLICT (tenant_id, key) DO NOTHING
RETURNING id
`, clone.ID, clone.TenantID, clone.Key, clone.Name, clone.CreatedAt).Scan(&insertedID)
		if errors.Is(err, sql.ErrNoRows) {
			continue // tenant already has this key
		}
		if err != nil {
			return nil, fmt.Errorf("clone template %s: %w", template.Key, err)
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO keyword_weights (category_id, term, language, weight, match_count, learned, updated_at)
SELECT $1, term, language, weight, 0, FALSE, $2
FROM keyword_weights
WHERE category_id = $3
ON CONFLICT (category_id, term, language) DO NOTHING
`, insertedID, now, template.ID); err != nil {
			return nil, fmt.Errorf("copy seed weights for %s: %w", template.Key, err)
		}

		created = append(created, clone)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit seed tenant tx: %w", err)
	}
	return created, nil
}
