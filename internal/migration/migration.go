package migration

import (
	"context"

	"hcpdash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createUploadsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create uploads table")
	}

	if err := r.addUploadsColumns(ctx, db); err != nil {
		return errors.Wrap(err, "failed to add uploads columns")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createUploadsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS uploads (
			id UUID PRIMARY KEY,
			filename VARCHAR(255) NOT NULL,
			size_bytes BIGINT NOT NULL DEFAULT 0,
			row_count INTEGER NOT NULL DEFAULT 0,
			columns TEXT[] NOT NULL DEFAULT '{}',
			status VARCHAR(20) NOT NULL,
			error_message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	return err
}

// addUploadsColumns brings tables created before panel failure tracking up to date
func (r *MigrationRunner) addUploadsColumns(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		DO $$
		BEGIN
			IF NOT EXISTS (
				SELECT 1 FROM information_schema.columns
				WHERE table_name = 'uploads' AND column_name = 'panel_errors'
			) THEN
				ALTER TABLE uploads ADD COLUMN panel_errors INTEGER NOT NULL DEFAULT 0;
			END IF;
		END $$;
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_uploads_created_at ON uploads(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_uploads_status ON uploads(status);
	`)
	return err
}
