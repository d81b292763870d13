package ui

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	apperrors "hcpdash/internal/errors"
	"hcpdash/ports"
)

// App is the read-only viewer. It can show panels, figures and upload history but has
// no way to publish data or change controls.
type App struct {
	router    *chi.Mux
	reader    ports.ReaderPort
	figures   FigureSource
	templates *template.Template
	port      string
}

// Config holds UI application configuration
type Config struct {
	Port string
}

// NewApp creates the viewer over reader
func NewApp(reader ports.ReaderPort, figures FigureSource, config Config) (*App, error) {
	if reader == nil {
		return nil, fmt.Errorf("reader cannot be nil")
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	port := config.Port
	if port == "" {
		port = "8080"
	}

	app := &App{
		router:    chi.NewRouter(),
		reader:    reader,
		figures:   figures,
		templates: templates,
		port:      port,
	}

	if err := app.setupMiddleware(); err != nil {
		return nil, err
	}
	app.setupRoutes()

	return app, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() error {
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	return nil
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/healthz", a.handleHealth)

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/panels", a.handlePanels)
		r.Get("/panels/{id}", a.handlePanel)
		r.Get("/figures/{panel}/{name}", a.handleFigure)
		r.Get("/uploads", a.handleUploads)
	})
}

// Handler exposes the router for an http.Server or tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Addr is the listen address for the configured port
func (a *App) Addr() string {
	return ":" + a.port
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := buildPage(r.Context(), a.reader, true)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := executeTemplate(a.templates, w, "index.html", data); err != nil {
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"panels": len(a.reader.Panels()),
	})
}

func (a *App) handlePanels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.reader.Panels())
}

func (a *App) handlePanel(w http.ResponseWriter, r *http.Request) {
	st, err := a.reader.Panel(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *App) handleFigure(w http.ResponseWriter, r *http.Request) {
	svg, err := figureSVG(a.figures, chi.URLParam(r, "panel"), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", svgContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	w.Write(svg)
}

func (a *App) handleUploads(w http.ResponseWriter, r *http.Request) {
	limit := defaultUploadsLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, apperrors.InvalidInput("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	uploads, err := a.reader.Uploads(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if uploads == nil {
		uploads = []ports.UploadRecord{}
	}
	writeJSON(w, http.StatusOK, uploads)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[UI] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error(), "code": apperrors.GetCode(err)})
}
