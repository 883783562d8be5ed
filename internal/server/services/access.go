package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

// TokenValidator is implemented by auth.TokenService.
type TokenValidator interface {
	Validate(token string) (string, error)
}

// AccessController resolves bearer tokens to accounts and enforces role
// membership.
type AccessController struct {
	repos  repomanager.RepositoryManager
	tokens TokenValidator
}

func NewAccessController(repos repomanager.RepositoryManager, tokens TokenValidator) *AccessController {
	return &AccessController{repos: repos, tokens: tokens}
}

// ResolveIdentity validates token and loads its subject. Token defects yield
// common.ErrUnauthenticated (wrapping the specific cause); a subject that no
// longer exists yields common.ErrAccountGone.
func (c *AccessController) ResolveIdentity(ctx context.Context, token string) (*models.Account, error) {
	identity, err := c.tokens.Validate(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthenticated, err)
	}

	account, err := c.repos.Accounts().FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAccountGone
		}
		return nil, internal("find account", err)
	}
	return account, nil
}

// Authorize fails with common.ErrForbidden unless account's role is in
// allowed. There is no role hierarchy.
func (c *AccessController) Authorize(account *models.Account, allowed RoleSet) error {
	if account == nil || !allowed.Contains(account.Role) {
		return common.ErrForbidden
	}
	return nil
}
