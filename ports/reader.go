package ports

import (
	"context"

	"hcpdash/domain/view"
)

// ReaderPort provides read-only access to dashboard state for UI/API.
// Front ends holding only a ReaderPort cannot publish data or change controls.
type ReaderPort interface {
	Panels() []view.State
	Panel(id string) (view.State, error)
	Help(id string) (string, error)
	Uploads(ctx context.Context, limit int) ([]UploadRecord, error)
}
