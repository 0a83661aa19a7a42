package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/graphragio/gateway/internal/core/domain"
)

func newRepoWithMock(t *testing.T) (*QueryLogRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return &QueryLogRepository{db: db}, mock, func() { _ = db.Close() }
}

func TestRecordInsertsRow(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	createdAt := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO query_log").
		WithArgs("req-1", "demo", "local", "who founded ACME?", 42, 128, int64(850), createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Record(context.Background(), domain.QueryRecord{
		RequestID:    "req-1",
		Index:        "demo",
		Engine:       "local",
		Query:        "who founded ACME?",
		AnswerChars:  42,
		PromptTokens: 128,
		Duration:     850 * time.Millisecond,
		CreatedAt:    createdAt,
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordFillsMissingCreatedAt(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO query_log").
		WithArgs("req-2", "demo", "global", "q", 0, 0, int64(0), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Record(context.Background(), domain.QueryRecord{
		RequestID: "req-2",
		Index:     "demo",
		Engine:    "global",
		Query:     "q",
	})
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRecordWrapsDriverError(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectExec("INSERT INTO query_log").
		WillReturnError(fmt.Errorf("connection reset"))

	err := repo.Record(context.Background(), domain.QueryRecord{RequestID: "req-3"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestEnsureSchemaRunsDDLInTransaction(t *testing.T) {
	repo, mock, done := newRepoWithMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("pg_advisory_xact_lock").
		WithArgs(int64(2026082901)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS query_log").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	if err := repo.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
