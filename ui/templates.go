package ui

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"hcpdash/domain/view"
	"hcpdash/internal/dashboard"
	"hcpdash/ports"
)

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// recentUploads is how many upload records the page lists
const recentUploads = 10

// panelView is one panel as the page renders it
type panelView struct {
	view.State
	Help template.HTML
}

// pageData feeds templates/index.html
type pageData struct {
	Title    string
	ReadOnly bool
	Dataset  *dashboard.DatasetInfo
	Panels   []panelView
	Uploads  []ports.UploadRecord
}

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"bytes": func(n int64) string {
			if n < 0 {
				n = 0
			}
			return humanize.Bytes(uint64(n))
		},
		"ago":   func(t time.Time) string { return humanize.Time(t) },
		"comma": func(n int) string { return humanize.Comma(int64(n)) },
		"join":  strings.Join,
		"isToggle": func(c view.Control) bool {
			return c.Kind == view.ControlToggle
		},
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return templates, nil
}

// buildPage collects panel states, help and recent uploads from reader
func buildPage(ctx context.Context, reader ports.ReaderPort, readOnly bool) pageData {
	states := reader.Panels()
	data := pageData{
		Title:    "HCP-YA data explorer",
		ReadOnly: readOnly,
		Panels:   make([]panelView, 0, len(states)),
	}
	for _, st := range states {
		md, err := reader.Help(st.ID)
		if err != nil {
			log.Printf("[UI] No help for panel %s: %v", st.ID, err)
		}
		data.Panels = append(data.Panels, panelView{State: st, Help: renderHelp(md)})
	}

	uploads, err := reader.Uploads(ctx, recentUploads)
	if err != nil {
		log.Printf("[UI] Failed to list uploads: %v", err)
	}
	data.Uploads = uploads
	return data
}

// executeTemplate renders to a buffer first so a template error never leaves a
// half-written page
func executeTemplate(templates *template.Template, w io.Writer, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		log.Printf("Template error for %s: %v", name, err)
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}
