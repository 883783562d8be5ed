package records

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/google/uuid"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const (
	insertQuery    = `(?s)^INSERT\s+INTO\s+records\s*\(id,\s*owner,\s*title,\s*body,\s*active\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*TRUE\)\s*RETURNING\s+created_at\s*$`
	selectQuery    = `(?s)^SELECT\s+id,\s*owner,\s*title,\s*body,\s*active,\s*created_at\s+FROM\s+records\s+WHERE\s+id\s*=\s*\$1\s*$`
	updateQuery    = `(?s)^UPDATE\s+records\s+SET\s+title\s*=\s*\$2,\s*body\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+AND\s+active\s*=\s*TRUE\s*$`
	setActiveQuery = `(?s)^UPDATE\s+records\s+SET\s+active\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s+AND\s+active\s*<>\s*\$2\s*$`
	listQuery      = `(?s)^SELECT\s+id,\s*owner,\s*title,\s*body,\s*active,\s*created_at\s+FROM\s+records\s+WHERE\s+.*ORDER\s+BY\s+created_at\s+DESC,\s*id\s+DESC\s*$`
)

var (
	recordID  = "7b0c6f9e-1d2a-4e5b-9c3d-2f1a0b9c8d7e"
	createdAt = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	columns   = []string{"id", "owner", "title", "body", "active", "created_at"}
)

func TestInsert_AssignsIDAndActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).
		WithArgs(sqlmock.AnyArg(), "alice", "T", "B").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

	rec := &models.Record{Owner: "alice", Title: "T", Body: "B"}
	if err := repo.Insert(context.Background(), rec); err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", rec.ID)
	}
	if !rec.Active || !rec.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected record: %+v", rec)
	}
}

func TestInsert_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	err := repo.Insert(context.Background(), &models.Record{Owner: "alice"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFindByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs(recordID).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(recordID, "alice", "T", "B", false, createdAt))

	got, err := repo.FindByID(context.Background(), recordID)
	if err != nil {
		t.Fatalf("FindByID error: %v", err)
	}
	if got.Owner != "alice" || got.Active {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestFindByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(selectQuery).WithArgs(recordID).WillReturnError(sql.ErrNoRows)

	if _, err := repo.FindByID(context.Background(), recordID); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestFindByID_MalformedIDSkipsQuery(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	if _, err := repo.FindByID(context.Background(), "not-a-uuid"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected query: %v", err)
	}
}

func TestUpdateContent(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rec := &models.Record{ID: recordID, Title: "T2", Body: "B2"}

	mock.ExpectExec(updateQuery).WithArgs(recordID, "T2", "B2").WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.UpdateContent(context.Background(), rec); err != nil {
		t.Fatalf("UpdateContent error: %v", err)
	}

	mock.ExpectExec(updateQuery).WithArgs(recordID, "T2", "B2").WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.UpdateContent(context.Background(), rec); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestSetActive(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(setActiveQuery).WithArgs(recordID, false).WillReturnResult(sqlmock.NewResult(0, 1))
	if err := repo.SetActive(context.Background(), recordID, false); err != nil {
		t.Fatalf("SetActive error: %v", err)
	}

	// lost race or already in state
	mock.ExpectExec(setActiveQuery).WithArgs(recordID, false).WillReturnResult(sqlmock.NewResult(0, 0))
	if err := repo.SetActive(context.Background(), recordID, false); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}

	mock.ExpectExec(setActiveQuery).WithArgs(recordID, true).WillReturnResult(sqlmock.NewResult(0, 2))
	if err := repo.SetActive(context.Background(), recordID, true); err == nil {
		t.Fatal("expected error for unexpected rows affected")
	}
}

func TestList(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("b", "alice", "T2", "B2", true, createdAt.Add(time.Minute)).
		AddRow("a", "alice", "T1", "B1", true, createdAt)
	mock.ExpectQuery(listQuery).WithArgs("alice", true).WillReturnRows(rows)

	got, err := repo.List(context.Background(), ListFilter{Owner: "alice", ActiveOnly: true})
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestList_QueryError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(listQuery).WithArgs("", false).WillReturnError(errors.New("boom"))

	if _, err := repo.List(context.Background(), ListFilter{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestList_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).AddRow("a", "alice", "T", "B", "not-bool", createdAt)
	mock.ExpectQuery(listQuery).WithArgs("", false).WillReturnRows(rows)

	if _, err := repo.List(context.Background(), ListFilter{}); err == nil {
		t.Fatal("expected scan error")
	}
}
