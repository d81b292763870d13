package ports

import (
	"context"
	"time"

	"github.com/lib/pq"
)

// UploadStatus records what happened to an upload
type UploadStatus string

const (
	UploadPublished UploadStatus = "published"
	UploadRejected  UploadStatus = "rejected"
)

// UploadRecord is the audit entry for one upload attempt. View state is never stored.
type UploadRecord struct {
	ID          string         `db:"id" json:"id"`
	Filename    string         `db:"filename" json:"filename"`
	SizeBytes   int64          `db:"size_bytes" json:"size_bytes"`
	Rows        int            `db:"row_count" json:"rows"`
	Columns     pq.StringArray `db:"columns" json:"columns"`
	Status      UploadStatus   `db:"status" json:"status"`
	Error       string         `db:"error_message" json:"error,omitempty"`
	PanelErrors int            `db:"panel_errors" json:"panel_errors"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// UploadRepository defines storage for the upload history
type UploadRepository interface {
	Record(ctx context.Context, rec UploadRecord) error
	List(ctx context.Context, limit int) ([]UploadRecord, error)
}
