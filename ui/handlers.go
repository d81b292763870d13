package ui

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"hcpdash/adapters/tabular"
	"hcpdash/domain/core"
	apperrors "hcpdash/internal/errors"
	"hcpdash/ports"
)

// multipartOverhead is the slack allowed on top of the file size for form boundaries
// and headers
const multipartOverhead = 1 << 20

// defaultUploadsLimit bounds /api/uploads when no limit is given
const defaultUploadsLimit = 50

// statusFor maps an error to an HTTP status
func statusFor(err error) int {
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	case apperrors.HasCode(err, apperrors.CodeInvalidInput),
		apperrors.HasCode(err, apperrors.CodeParseError):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error(), "code": apperrors.GetCode(err)})
}

// handleIndex renders the dashboard page
func (s *Server) handleIndex(c *gin.Context) {
	data := buildPage(c.Request.Context(), s.dash, false)
	if info, ok := s.dash.Dataset(); ok {
		data.Dataset = &info
	}
	s.renderTemplate(c, "index.html", data)
}

// handleHealth reports liveness
func (s *Server) handleHealth(c *gin.Context) {
	_, loaded := s.dash.Dataset()
	clients := 0
	if s.events != nil {
		clients = s.events.GetClientCount()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"dataset":     loaded,
		"panels":      len(s.dash.Panels()),
		"sse_clients": clients,
	})
}

// handleUpload parses the multipart "dataset" file and publishes it
func (s *Server) handleUpload(c *gin.Context) {
	if s.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes+multipartOverhead)
	}

	header, err := c.FormFile("dataset")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		log.Printf("[Upload] Request body over %d bytes", tooLarge.Limit)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Upload exceeds the %s limit", humanize.Bytes(uint64(s.maxUploadBytes))),
			"code":  apperrors.CodeInvalidInput,
		})
		return
	}
	if err != nil {
		log.Printf("[Upload] No file uploaded: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded", "code": apperrors.CodeInvalidInput})
		return
	}

	if s.maxUploadBytes > 0 && header.Size > s.maxUploadBytes {
		log.Printf("[Upload] File too large: %s (%d bytes)", header.Filename, header.Size)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("File size (%s) exceeds the %s limit",
				humanize.Bytes(uint64(header.Size)), humanize.Bytes(uint64(s.maxUploadBytes))),
			"code": apperrors.CodeInvalidInput,
		})
		return
	}

	if _, ok := tabular.FileType(header.Filename); !ok {
		log.Printf("[Upload] Invalid file extension: %s", header.Filename)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only Excel (.xlsx) and CSV (.csv, .txt) files are allowed", "code": apperrors.CodeInvalidInput})
		return
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, apperrors.Wrap(err, "failed to open upload"))
		return
	}
	defer file.Close()

	result, err := s.dash.Load(c.Request.Context(), header.Filename, header.Size, file)
	if err != nil {
		body := gin.H{"error": err.Error(), "code": apperrors.GetCode(err)}
		if result != nil {
			body["upload"] = result.Upload
		}
		c.JSON(statusFor(err), body)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleUploads lists the upload history, newest first
func (s *Server) handleUploads(c *gin.Context) {
	limit := defaultUploadsLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer", "code": apperrors.CodeInvalidInput})
			return
		}
		limit = n
	}

	uploads, err := s.dash.Uploads(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if uploads == nil {
		uploads = []ports.UploadRecord{}
	}
	c.JSON(http.StatusOK, uploads)
}

func (s *Server) handlePanels(c *gin.Context) {
	c.JSON(http.StatusOK, s.dash.Panels())
}

func (s *Server) handlePanel(c *gin.Context) {
	st, err := s.dash.Panel(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// handleControls applies a JSON object of control values
func (s *Server) handleControls(c *gin.Context) {
	var updates map[string]string
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON object of control values", "code": apperrors.CodeInvalidInput})
		return
	}

	st, err := s.dash.Control(c.Param("id"), updates)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleDetach(c *gin.Context) {
	st, err := s.dash.Detach(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleAttach(c *gin.Context) {
	st, err := s.dash.Attach(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// handleFigure serves the latest SVG of a figure. A trailing .svg is accepted.
func (s *Server) handleFigure(c *gin.Context) {
	svg, err := figureSVG(s.figures, c.Param("panel"), c.Param("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, svgContentType, svg)
}

const svgContentType = "image/svg+xml"

func figureSVG(figures FigureSource, panelID, name string) ([]byte, error) {
	name = strings.TrimSuffix(name, ".svg")
	if figures == nil {
		return nil, fmt.Errorf("%w: %s/%s", core.ErrFigureMissing, panelID, name)
	}
	svg, ok := figures.SVG(panelID, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", core.ErrFigureMissing, panelID, name)
	}
	return svg, nil
}
