package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"hcpdash/internal/config"
	"hcpdash/internal/container"
	"hcpdash/internal/dashboard"
	"hcpdash/internal/errors"
	"hcpdash/internal/watch"
	"hcpdash/ui"
)

// initDatabase opens the PostgreSQL connection for the upload history
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create container: %v", err)
	}
	defer appContainer.Shutdown(context.Background())

	if appConfig.Database.Enabled() {
		db, err := initDatabase(appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		if err := appContainer.InitWithDatabase(ctx, db); err != nil {
			db.Close()
			log.Fatalf("Failed to initialize database: %v", err)
		}
	} else {
		log.Println("DATABASE_URL not set, keeping upload history in memory")
	}

	dash := appContainer.Build()

	if path := appConfig.Data.File; path != "" {
		loadDataFile(ctx, dash, path)
	}

	server, err := ui.NewServer(dash, appContainer.SVG, appContainer.SSEHub, appConfig.Server.MaxUploadBytes())
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	if err := run(ctx, appConfig, appContainer, server); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
	log.Println("Shut down cleanly")
}

// loadDataFile publishes the configured dataset. A bad file is logged and the
// dashboard starts empty.
func loadDataFile(ctx context.Context, dash *dashboard.Dashboard, path string) {
	result, err := dash.LoadFile(ctx, path)
	if err != nil {
		log.Printf("[Upload] Failed to load %s: %v", path, err)
		return
	}
	for _, pe := range result.PanelErrors {
		log.Printf("[Upload] Panel %s: %s", pe.PanelID, pe.Message)
	}
}

// run serves HTTP, the file watcher and pprof until ctx is cancelled or one of them
// fails
func run(ctx context.Context, appConfig *config.Config, c *container.Container, server *ui.Server) error {
	eg, egctx := errgroup.WithContext(ctx)

	addr := ":" + appConfig.Server.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: server.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		log.Printf("Starting HCP-YA explorer on http://localhost%s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if appConfig.Data.Watch {
		w := watch.New(appConfig.Data.File, appConfig.Data.WatchDebounce, func(ctx context.Context, path string) error {
			_, err := c.Dashboard.LoadFile(ctx, path)
			return err
		})
		eg.Go(func() error {
			log.Printf("[Watch] Reloading %s on change", appConfig.Data.File)
			return w.Run(egctx)
		})
	}

	if appConfig.Profiling.Enabled {
		pprofSrv := &http.Server{Addr: ":" + appConfig.Profiling.Port, ReadHeaderTimeout: 10 * time.Second}
		eg.Go(func() error {
			log.Printf("pprof listening on :%s", appConfig.Profiling.Port)
			if err := pprofSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("pprof server error: %w", err)
			}
			return nil
		})
		eg.Go(func() error {
			<-egctx.Done()
			return pprofSrv.Close()
		})
	}

	// Graceful shutdown. SSE streams are closed first so Shutdown does not wait on them.
	eg.Go(func() error {
		<-egctx.Done()
		c.SSEHub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
