package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/records"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

var errStoreDown = errors.New("store down")

func cheapHasher() *auth.Hasher {
	return auth.NewHasher(auth.Params{MemoryKiB: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
}

func newTokens(t *testing.T, now *time.Time) *auth.TokenService {
	t.Helper()
	ts, err := auth.NewTokenService("secret", "HS256", 240*time.Minute, auth.WithClock(func() time.Time { return *now }))
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

func mustAuthenticator(t *testing.T, repos repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator(repos, hasher, tokens)
	if err != nil {
		t.Fatalf("NewAuthenticator: %v", err)
	}
	return a
}

// countingHasher records Hash and Verify calls.
type countingHasher struct {
	PasswordHasher
	hashes   int
	verifies int
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.hashes++
	return h.PasswordHasher.Hash(password)
}

func (h *countingHasher) Verify(password, encoded string) bool {
	h.verifies++
	return h.PasswordHasher.Verify(password, encoded)
}

// failingHasher fails Hash once broken is set.
type failingHasher struct {
	PasswordHasher
	broken bool
}

func (h *failingHasher) Hash(password string) (string, error) {
	if h.broken {
		return "", errors.New("no entropy")
	}
	return h.PasswordHasher.Hash(password)
}

type failingIssuer struct{}

func (failingIssuer) Issue(string) (string, error) { return "", errors.New("sign failed") }

// brokenAccounts fails every call.
type brokenAccounts struct{}

func (brokenAccounts) FindByIdentity(context.Context, string) (*models.Account, error) {
	return nil, errStoreDown
}
func (brokenAccounts) FindByIdentityForUpdate(context.Context, string) (*models.Account, error) {
	return nil, errStoreDown
}
func (brokenAccounts) Insert(context.Context, *models.Account) error { return errStoreDown }
func (brokenAccounts) UpdateRole(context.Context, string, models.Role) error {
	return errStoreDown
}

// brokenRecords fails every call.
type brokenRecords struct{}

func (brokenRecords) Insert(context.Context, *models.Record) error { return errStoreDown }
func (brokenRecords) FindByID(context.Context, string) (*models.Record, error) {
	return nil, errStoreDown
}
func (brokenRecords) UpdateContent(context.Context, *models.Record) error { return errStoreDown }
func (brokenRecords) SetActive(context.Context, string, bool) error       { return errStoreDown }
func (brokenRecords) List(context.Context, records.ListFilter) ([]*models.Record, error) {
	return nil, errStoreDown
}

type brokenManager struct{}

func (brokenManager) Accounts() accounts.Repository { return brokenAccounts{} }
func (brokenManager) Records() records.Repository   { return brokenRecords{} }
func (brokenManager) RunMigrations(context.Context) error {
	return errStoreDown
}
func (m brokenManager) InTx(ctx context.Context, fn func(context.Context, repomanager.Repositories) error) error {
	return fn(ctx, m)
}
func (brokenManager) Close() error { return nil }

// racingAccounts reports the identity as absent on lookup but rejects the
// insert, as a concurrent registration would.
type racingAccounts struct {
	brokenAccounts
	insertErr error
}

func (racingAccounts) FindByIdentity(context.Context, string) (*models.Account, error) {
	return nil, common.ErrNotFound
}
func (r racingAccounts) Insert(context.Context, *models.Account) error { return r.insertErr }

type racingManager struct {
	brokenManager
	accounts racingAccounts
}

func (m racingManager) Accounts() accounts.Repository { return m.accounts }
