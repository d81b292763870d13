package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hcpdash/internal/errors"
	"hcpdash/ports"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestUploadRepository_Record(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUploadRepository(db)

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := ports.UploadRecord{
		ID:        "0190f5c4-7d8a-7000-8000-000000000001",
		Filename:  "hcp.csv",
		SizeBytes: 2048,
		Rows:      10,
		Columns:   pq.StringArray{"Age", "Gender"},
		Status:    ports.UploadPublished,
		CreatedAt: created,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO uploads")).
		WithArgs(rec.ID, rec.Filename, rec.SizeBytes, rec.Rows, sqlmock.AnyArg(), rec.Status, "", 0, created).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Record(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepository_RecordError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUploadRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO uploads")).
		WillReturnError(errors.New("connection refused"))

	err := repo.Record(context.Background(), ports.UploadRecord{ID: "x", CreatedAt: time.Now()})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDatabaseError, apperrors.GetCode(err))
}

func TestUploadRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUploadRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{
		"id", "filename", "size_bytes", "row_count", "columns", "status", "error_message", "panel_errors", "created_at",
	}).
		AddRow("b", "second.csv", 10, 0, "{}", "rejected", "cannot parse second.csv", 0, now).
		AddRow("a", "first.csv", 20, 3, "{Age,Gender}", "published", "", 1, now.Add(-time.Minute))

	mock.ExpectQuery(regexp.QuoteMeta("FROM uploads")).
		WithArgs(5).
		WillReturnRows(rows)

	records, err := repo.List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "b", records[0].ID)
	assert.Equal(t, ports.UploadRejected, records[0].Status)
	assert.Equal(t, "cannot parse second.csv", records[0].Error)
	assert.Equal(t, pq.StringArray{"Age", "Gender"}, records[1].Columns)
	assert.Equal(t, 1, records[1].PanelErrors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadRepository_ListNoLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUploadRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	records, err := repo.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
