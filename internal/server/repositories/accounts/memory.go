package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// MemoryRepository keeps accounts in a map. Returned accounts are copies.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]models.Account
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		accounts: make(map[string]models.Account),
		now:      time.Now,
	}
}

func (r *MemoryRepository) Insert(_ context.Context, account *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.accounts[account.Identity]; ok {
		return common.ErrDuplicateIdentity
	}

	account.CreatedAt = r.now().UTC()
	r.accounts[account.Identity] = *account
	return nil
}

func (r *MemoryRepository) FindByIdentity(_ context.Context, identity string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.accounts[identity]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &a, nil
}

// FindByIdentityForUpdate does not lock; the memory repository manager
// serialises transactions instead.
func (r *MemoryRepository) FindByIdentityForUpdate(ctx context.Context, identity string) (*models.Account, error) {
	return r.FindByIdentity(ctx, identity)
}

func (r *MemoryRepository) UpdateRole(_ context.Context, identity string, role models.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.accounts[identity]
	if !ok {
		return common.ErrNotFound
	}
	a.Role = role
	r.accounts[identity] = a
	return nil
}
