package records

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// ListFilter narrows List. An empty Owner matches every owner.
type ListFilter struct {
	Owner      string
	ActiveOnly bool
}

// Repository stores records. It applies no ownership rules; callers do.
// Results are ordered newest first (created_at DESC, id DESC).
type Repository interface {
	Insert(ctx context.Context, record *models.Record) error
	FindByID(ctx context.Context, id string) (*models.Record, error)
	// UpdateContent rewrites title and body of an active record.
	UpdateContent(ctx context.Context, record *models.Record) error
	// SetActive flips the active flag. It fails with common.ErrNotFound when
	// the record is absent or already in the requested state.
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, filter ListFilter) ([]*models.Record, error)
}
