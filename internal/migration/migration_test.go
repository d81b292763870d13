package migration

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "hcpdash/internal/errors"
)

func TestRunner_Run(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS uploads").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("ALTER TABLE uploads ADD COLUMN panel_errors").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_uploads_created_at").WillReturnResult(sqlmock.NewResult(0, 0))

	r := NewRunner()
	require.NoError(t, r.Run(context.Background(), sqlx.NewDb(db, "postgres")))
	assert.Equal(t, "1.0.0", r.Version())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunner_RunStopsOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS uploads").WillReturnError(errors.New("permission denied"))

	err = NewRunner().Run(context.Background(), sqlx.NewDb(db, "postgres"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create uploads table")
	assert.Equal(t, apperrors.CodeInternalError, apperrors.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
