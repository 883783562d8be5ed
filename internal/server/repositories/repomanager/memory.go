package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/records"
)

// MemoryRepositoryManager serves process-local repositories. Transactions
// are serialised by a single mutex and are not rolled back on error.
type MemoryRepositoryManager struct {
	txMu     sync.Mutex
	accounts *accounts.MemoryRepository
	records  *records.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		accounts: accounts.NewMemoryRepository(),
		records:  records.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Accounts() accounts.Repository { return m.accounts }
func (m *MemoryRepositoryManager) Records() records.Repository   { return m.records }

func (m *MemoryRepositoryManager) InTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, m)
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close() error { return nil }
