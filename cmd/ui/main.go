// Command ui serves a read-only view of DATA_FILE. Controls and uploads are not
// available; the file is reloaded on change when WATCH_ENABLED is set.
package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"hcpdash/internal/config"
	"hcpdash/internal/container"
	"hcpdash/internal/watch"
	"hcpdash/ui"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appConfig.Data.File == "" {
		log.Fatal("DATA_FILE is required for the viewer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create container: %v", err)
	}
	defer c.Shutdown(context.Background())
	dash := c.Build()

	if _, err := dash.LoadFile(ctx, appConfig.Data.File); err != nil {
		log.Printf("[Upload] Failed to load %s: %v", appConfig.Data.File, err)
	}

	app, err := ui.NewApp(dash, c.SVG, ui.Config{Port: appConfig.Server.Port})
	if err != nil {
		log.Fatalf("Failed to create UI app: %v", err)
	}

	eg, egctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              app.Addr(),
		Handler:           app.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return egctx },
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		log.Printf("Starting HCP-YA viewer on http://localhost%s", app.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if appConfig.Data.Watch {
		w := watch.New(appConfig.Data.File, appConfig.Data.WatchDebounce, func(ctx context.Context, path string) error {
			_, err := dash.LoadFile(ctx, path)
			return err
		})
		eg.Go(func() error { return w.Run(egctx) })
	}

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		log.Fatalf("Viewer stopped: %v", err)
	}
}
