package ui

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"hcpdash/internal/api"
	"hcpdash/internal/dashboard"
)

// FigureSource serves the latest rendered image of a figure
type FigureSource interface {
	SVG(panelID, name string) ([]byte, bool)
}

// Server is the interactive web front end: uploads, controls, figures and the live
// event stream
type Server struct {
	router         *gin.Engine
	dash           *dashboard.Dashboard
	figures        FigureSource
	events         *api.SSEHub
	templates      *template.Template
	maxUploadBytes int64
}

// NewServer creates the web server. events may be nil, in which case /api/events
// answers 404.
func NewServer(dash *dashboard.Dashboard, figures FigureSource, events *api.SSEHub, maxUploadBytes int64) (*Server, error) {
	if dash == nil {
		return nil, fmt.Errorf("dashboard cannot be nil")
	}
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:         gin.Default(),
		dash:           dash,
		figures:        figures,
		events:         events,
		templates:      templates,
		maxUploadBytes: maxUploadBytes,
	}
	if err := s.setupMiddleware(); err != nil {
		return nil, err
	}
	s.setupRoutes()
	return s, nil
}

// setupMiddleware serves the embedded static assets
func (s *Server) setupMiddleware() error {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static filesystem: %w", err)
	}
	s.router.StaticFS("/static", http.FS(staticFS))
	return nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	apiGroup := s.router.Group("/api")
	apiGroup.POST("/upload", s.handleUpload)
	apiGroup.GET("/uploads", s.handleUploads)

	apiGroup.GET("/panels", s.handlePanels)
	apiGroup.GET("/panels/:id", s.handlePanel)
	apiGroup.POST("/panels/:id/controls", s.handleControls)
	apiGroup.POST("/panels/:id/detach", s.handleDetach)
	apiGroup.POST("/panels/:id/attach", s.handleAttach)

	apiGroup.GET("/figures/:panel/:name", s.handleFigure)
	if s.events != nil {
		apiGroup.GET("/events", s.events.HandleSSE)
	}
}

// Handler exposes the router for an http.Server or tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) renderTemplate(c *gin.Context, name string, data interface{}) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := executeTemplate(s.templates, c.Writer, name, data); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Template rendering failed", "details": err.Error()})
	}
}
