package container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"hcpdash/adapters/chart"
	"hcpdash/adapters/memory"
	"hcpdash/adapters/postgres"
	"hcpdash/internal/api"
	"hcpdash/internal/config"
	"hcpdash/internal/dashboard"
	"hcpdash/internal/hub"
	"hcpdash/internal/migration"
	"hcpdash/internal/panel"
	"hcpdash/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Upload history, in memory until a database is attached
	Uploads ports.UploadRepository

	// Panel wiring
	Schemas map[string]panel.Schema
	Hub     *hub.Hub
	Panels  []panel.Panel

	// Surfaces
	SVG    *chart.SVGSurface
	SSEHub *api.SSEHub

	Dashboard *dashboard.Dashboard
}

// New creates a container with the hub, surfaces and in-memory upload history. Call
// InitWithDatabase before Build to keep the history in Postgres instead.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	schemas, err := panel.LoadSchemas(cfg.Data.SchemaFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load panel schemas: %w", err)
	}

	policy, err := hub.ParsePolicy(cfg.Hub.NotifyPolicy)
	if err != nil {
		return nil, err
	}

	return &Container{
		Config:  cfg,
		Uploads: memory.NewUploadRepository(memory.DefaultMaxUploads),
		Schemas: schemas,
		Hub:     hub.New(hub.WithPolicy(policy)),
		SVG:     chart.NewSVGSurface(cfg.Charts.Width, cfg.Charts.Height),
		SSEHub:  api.NewSSEHub(),
	}, nil
}

// InitWithDatabase migrates the schema and switches the upload history to db
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	if c.Dashboard != nil {
		return fmt.Errorf("database must be attached before Build")
	}

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	runner := migration.NewRunner()
	if err := runner.Run(ctx, db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	c.DB = db
	c.Uploads = postgres.NewUploadRepository(db)
	log.Printf("Upload history stored in Postgres (schema %s)", runner.Version())
	return nil
}

// Build creates the panels and the dashboard. Figures fan out to the SVG cache first
// and then to SSE clients, so a pushed figure can always be fetched.
func (c *Container) Build() *dashboard.Dashboard {
	if c.Dashboard != nil {
		return c.Dashboard
	}

	surface := ports.Fanout(c.SVG, c.SSEHub)
	c.Panels = panel.NewDefaultPanels(surface, c.Schemas)
	c.Dashboard = dashboard.New(c.Hub, c.Panels,
		dashboard.WithUploads(c.Uploads),
		dashboard.WithNotifier(api.NewSSEEventBroadcaster(c.SSEHub)),
	)

	log.Printf("Container initialized: %d panels, policy %s", len(c.Panels), c.Hub.Policy())
	return c.Dashboard
}

// Shutdown disconnects SSE clients and closes the database
func (c *Container) Shutdown(ctx context.Context) error {
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
