// Package accounts provides account persistence for PostgreSQL and an
// in-memory implementation used when no database is configured.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores a new account and fills in its creation time. A second
// account with the same identity fails with common.ErrDuplicateIdentity.
func (r *PostgresRepository) Insert(ctx context.Context, account *models.Account) error {
	query :=
		`INSERT INTO accounts (identity, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		account.Identity, account.PasswordHash, string(account.Role)).Scan(&account.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrDuplicateIdentity
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FindByIdentity(ctx context.Context, identity string) (*models.Account, error) {
	query :=
		`SELECT identity, password_hash, role, created_at FROM accounts
		 WHERE identity = $1
		 `
	return r.findOne(ctx, query, identity)
}

func (r *PostgresRepository) FindByIdentityForUpdate(ctx context.Context, identity string) (*models.Account, error) {
	query :=
		`SELECT identity, password_hash, role, created_at FROM accounts
		 WHERE identity = $1
		 FOR UPDATE
		 `
	return r.findOne(ctx, query, identity)
}

func (r *PostgresRepository) findOne(ctx context.Context, query, identity string) (*models.Account, error) {
	account := &models.Account{}
	var role string

	err := r.db.QueryRowContext(ctx, query, identity).Scan(
		&account.Identity, &account.PasswordHash, &role, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.Role = models.Role(role)
	return account, nil
}

// UpdateRole sets the role of an existing account; an unknown identity
// yields common.ErrNotFound.
func (r *PostgresRepository) UpdateRole(ctx context.Context, identity string, role models.Role) error {
	query :=
		`UPDATE accounts SET role = $2
		 WHERE identity = $1
		 `

	res, err := r.db.ExecContext(ctx, query, identity, string(role))
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
