package domain

import (
	"errors"
	"strings"
	"time"
)

// Category is a classification target. TenantID is empty for system
// templates; tenant categories are cloned from templates at onboarding
// and soft-deactivated, never hard-deleted while documents reference them.
type Category struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id,omitempty"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewCategory(id, tenantID, key, name string, createdAt time.Time) (Category, error) {
	id = strings.TrimSpace(id)
	key = strings.TrimSpace(key)
	if id == "" {
		return Category{}, WrapError(ErrInvalidInput, "new category", errors.New("empty id"))
	}
	if key == "" {
		return Category{}, WrapError(ErrInvalidInput, "new category", errors.New("empty reference key"))
	}
	if name == "" {
		name = key
	}
	return Category{
		ID:        id,
		TenantID:  strings.TrimSpace(tenantID),
		Key:       key,
		Name:      name,
		Active:    true,
		CreatedAt: createdAt.UTC(),
	}, nil
}

// IsTemplate reports whether the category is a system-wide template
// rather than a tenant-owned clone.
func (c Category) IsTemplate() bool {
	return c.TenantID == ""
}
