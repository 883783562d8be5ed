package records

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps records in a map. Returned records are copies.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]models.Record
	now     func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records: make(map[string]models.Record),
		now:     time.Now,
	}
}

func (r *MemoryRepository) Insert(_ context.Context, record *models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.Active = true
	record.CreatedAt = r.now().UTC()
	r.records[record.ID] = *record
	return nil
}

func (r *MemoryRepository) FindByID(_ context.Context, id string) (*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &rec, nil
}

func (r *MemoryRepository) UpdateContent(_ context.Context, record *models.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[record.ID]
	if !ok || !rec.Active {
		return common.ErrNotFound
	}
	rec.Title = record.Title
	rec.Body = record.Body
	r.records[record.ID] = rec
	return nil
}

func (r *MemoryRepository) SetActive(_ context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok || rec.Active == active {
		return common.ErrNotFound
	}
	rec.Active = active
	r.records[id] = rec
	return nil
}

func (r *MemoryRepository) List(_ context.Context, filter ListFilter) ([]*models.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Record
	for _, rec := range r.records {
		if filter.Owner != "" && rec.Owner != filter.Owner {
			continue
		}
		if filter.ActiveOnly && !rec.Active {
			continue
		}
		item := rec
		result = append(result, &item)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}
