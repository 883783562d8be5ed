// Package services contains the server-side business logic: account
// registration and login, token resolution and role policy, and the
// record lifecycle rules.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

// PasswordHasher is implemented by auth.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// TokenIssuer is implemented by auth.TokenService.
type TokenIssuer interface {
	Issue(identity string) (string, error)
}

// Authenticator turns credentials into accounts and tokens and owns role
// assignment.
type Authenticator struct {
	repos  repomanager.RepositoryManager
	hasher PasswordHasher
	tokens TokenIssuer

	// dummyHash is verified against for unknown identities so that both
	// login failures cost one hash verification.
	dummyHash string
}

// NewAuthenticator hashes the dummy password up front and fails if the
// hasher cannot.
func NewAuthenticator(repos repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer) (*Authenticator, error) {
	dummy, err := hasher.Hash("notekeeper-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("hash dummy password: %w", err)
	}
	return &Authenticator{repos: repos, hasher: hasher, tokens: tokens, dummyHash: dummy}, nil
}

// Register creates an account with role User. An existing identity fails
// with common.ErrDuplicateIdentity; the store's unique constraint decides
// concurrent registrations.
func (a *Authenticator) Register(ctx context.Context, identity, password string) (*models.Account, error) {
	return a.create(ctx, identity, password, models.RoleUser)
}

func (a *Authenticator) create(ctx context.Context, identity, password string, role models.Role) (*models.Account, error) {
	repo := a.repos.Accounts()

	_, err := repo.FindByIdentity(ctx, identity)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateIdentity
	case !errors.Is(err, common.ErrNotFound):
		return nil, internal("find account", err)
	}

	hash, err := a.hasher.Hash(password)
	if err != nil {
		return nil, internal("hash password", err)
	}

	account := &models.Account{Identity: identity, PasswordHash: hash, Role: role}
	if err := repo.Insert(ctx, account); err != nil {
		return nil, passDeclared("insert account", err, common.ErrDuplicateIdentity)
	}
	return account, nil
}

// Login verifies the password and issues an access token. Unknown identity
// and wrong password both yield common.ErrInvalidCredentials, and both pay
// for one hash verification.
func (a *Authenticator) Login(ctx context.Context, identity, password string) (string, error) {
	account, err := a.repos.Accounts().FindByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			a.hasher.Verify(password, a.dummyHash)
			return "", common.ErrInvalidCredentials
		}
		return "", internal("find account", err)
	}

	if !a.hasher.Verify(password, account.PasswordHash) {
		return "", common.ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(account.Identity)
	if err != nil {
		return "", internal("issue token", err)
	}
	return token, nil
}

// UpdateRole assigns newRole to target. Checks run in order: requester must
// be Superuser, newRole must be defined, target must exist, and the role
// must actually change.
func (a *Authenticator) UpdateRole(ctx context.Context, requesterRole models.Role, target string, newRole models.Role) error {
	if requesterRole != models.RoleSuperuser {
		return common.ErrForbidden
	}
	if !newRole.Valid() {
		return common.ErrInvalidRole
	}

	err := a.repos.InTx(ctx, func(ctx context.Context, tx repomanager.Repositories) error {
		repo := tx.Accounts()

		account, err := repo.FindByIdentityForUpdate(ctx, target)
		if err != nil {
			return err
		}
		if account.Role == newRole {
			return common.ErrRoleUnchanged
		}
		return repo.UpdateRole(ctx, target, newRole)
	})
	if err != nil {
		return passDeclared("update role", err, common.ErrNotFound, common.ErrRoleUnchanged)
	}
	return nil
}

// EnsureSuperuser creates identity as a Superuser unless an account with
// that identity already exists. created reports whether an account was
// written.
func (a *Authenticator) EnsureSuperuser(ctx context.Context, identity, password string) (created bool, err error) {
	_, err = a.create(ctx, identity, password, models.RoleSuperuser)
	if errors.Is(err, common.ErrDuplicateIdentity) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
