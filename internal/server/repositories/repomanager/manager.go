package repomanager

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/records"
)

// Repositories is a set of repositories bound to one connection or
// transaction.
type Repositories interface {
	Accounts() accounts.Repository
	Records() records.Repository
}

// RepositoryManager vends repositories for a storage backend.
type RepositoryManager interface {
	Repositories
	RunMigrations(ctx context.Context) error
	// InTx runs fn with repositories bound to a single transaction. The
	// transaction commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Repositories) error) error
	Close() error
}
