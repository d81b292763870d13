// Package memory holds in-process repositories used when no database is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"hcpdash/ports"
)

// UploadRepository keeps the upload history in memory, newest last, up to a cap
type UploadRepository struct {
	mu      sync.RWMutex
	records []ports.UploadRecord
	max     int
}

// DefaultMaxUploads bounds the in-memory history
const DefaultMaxUploads = 500

// NewUploadRepository creates an in-memory upload repository keeping at most max
// records. max <= 0 uses DefaultMaxUploads.
func NewUploadRepository(max int) *UploadRepository {
	if max <= 0 {
		max = DefaultMaxUploads
	}
	return &UploadRepository{max: max}
}

// Record appends rec, dropping the oldest record when full
func (r *UploadRepository) Record(_ context.Context, rec ports.UploadRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.Columns = append([]string(nil), rec.Columns...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	if len(r.records) > r.max {
		r.records = append([]ports.UploadRecord(nil), r.records[len(r.records)-r.max:]...)
	}
	return nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
func (r *UploadRepository) List(_ context.Context, limit int) ([]ports.UploadRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := len(r.records)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]ports.UploadRecord, 0, n)
	for i := len(r.records) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.records[i])
	}
	return out, nil
}
