package accounts

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Repository is the credential store. It holds no policy: uniqueness of
// identity is its only enforced invariant.
type Repository interface {
	FindByIdentity(ctx context.Context, identity string) (*models.Account, error)
	// FindByIdentityForUpdate is FindByIdentity that also locks the row for
	// the rest of the surrounding transaction.
	FindByIdentityForUpdate(ctx context.Context, identity string) (*models.Account, error)
	Insert(ctx context.Context, account *models.Account) error
	UpdateRole(ctx context.Context, identity string, role models.Role) error
}
