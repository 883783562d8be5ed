// Package records provides record persistence for PostgreSQL and an
// in-memory implementation with the same contract.
package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/google/uuid"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert stores record as active, assigning a UUID when ID is empty.
func (r *PostgresRepository) Insert(ctx context.Context, record *models.Record) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.Active = true

	query :=
		`INSERT INTO records (id, owner, title, body, active)
		 VALUES ($1, $2, $3, $4, TRUE)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		record.ID, record.Owner, record.Title, record.Body).Scan(&record.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindByID returns the record in either state. Ids that are not UUIDs are
// reported as not found.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*models.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrNotFound
	}

	query :=
		`SELECT id, owner, title, body, active, created_at FROM records
		 WHERE id = $1
		 `

	record := &models.Record{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID, &record.Owner, &record.Title, &record.Body, &record.Active, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return record, nil
}

func (r *PostgresRepository) UpdateContent(ctx context.Context, record *models.Record) error {
	query :=
		`UPDATE records SET title = $2, body = $3
		 WHERE id = $1 AND active = TRUE
		 `
	res, err := r.db.ExecContext(ctx, query, record.ID, record.Title, record.Body)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	query :=
		`UPDATE records SET active = $2
		 WHERE id = $1 AND active <> $2
		 `
	res, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]*models.Record, error) {
	query :=
		`SELECT id, owner, title, body, active, created_at FROM records
		 WHERE ($1 = '' OR owner = $1) AND (NOT $2 OR active)
		 ORDER BY created_at DESC, id DESC
		 `
	rows, err := r.db.QueryContext(ctx, query, filter.Owner, filter.ActiveOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var result []*models.Record
	for rows.Next() {
		var item models.Record
		if err := rows.Scan(
			&item.ID, &item.Owner, &item.Title, &item.Body, &item.Active, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
