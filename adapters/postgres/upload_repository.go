package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	apperrors "hcpdash/internal/errors"
	"hcpdash/ports"
)

// UploadRepositoryImpl implements UploadRepository for PostgreSQL
type UploadRepositoryImpl struct {
	db *sqlx.DB
}

// NewUploadRepository creates a new PostgreSQL upload repository
func NewUploadRepository(db *sqlx.DB) ports.UploadRepository {
	return &UploadRepositoryImpl{db: db}
}

// Record inserts one upload attempt
func (r *UploadRepositoryImpl) Record(ctx context.Context, rec ports.UploadRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO uploads (id, filename, size_bytes, row_count, columns, status, error_message, panel_errors, created_at)
		VALUES (:id, :filename, :size_bytes, :row_count, :columns, :status, :error_message, :panel_errors, :created_at)
	`, rec)
	if err != nil {
		return apperrors.DatabaseError("failed to record upload", err)
	}
	return nil
}

// List returns the most recent uploads first. A limit of zero or less returns all.
func (r *UploadRepositoryImpl) List(ctx context.Context, limit int) ([]ports.UploadRecord, error) {
	query := `
		SELECT id, filename, size_bytes, row_count, columns, status, error_message, panel_errors, created_at
		FROM uploads
		ORDER BY created_at DESC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	var records []ports.UploadRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, apperrors.DatabaseError("failed to list uploads", err)
	}
	return records, nil
}
