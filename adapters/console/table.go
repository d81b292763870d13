// Package console prints figures as terminal tables.
package console

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"hcpdash/domain/figure"
	"hcpdash/internal/profiling"
)

// TableSurface writes a table for every redraw request
type TableSurface struct {
	mu sync.Mutex
	w  io.Writer
}

// NewTableSurface creates a surface writing to w
func NewTableSurface(w io.Writer) *TableSurface {
	return &TableSurface{w: w}
}

// Redraw prints fig
func (s *TableSurface) Redraw(fig figure.Figure) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Write(s.w, fig)
}

// Write renders one figure as a titled table
func Write(w io.Writer, fig figure.Figure) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s · %s", fig.PanelID, fig.Title))

	switch {
	case fig.NoData:
		t.AppendRow(table.Row{fig.Message})
	case fig.Kind == figure.KindScatter:
		scatterRows(t, fig)
	default:
		categoryRows(t, fig)
	}

	t.Render()
	return nil
}

func scatterRows(t table.Writer, fig figure.Figure) {
	t.AppendHeader(table.Row{"", fig.XLabel, fig.YLabel})

	xs, ys := fig.XSummary, fig.YSummary
	if xs == nil {
		xs = profiling.Summarize(fig.X)
	}
	if ys == nil {
		ys = profiling.Summarize(fig.Y)
	}
	if xs == nil || ys == nil {
		t.AppendRow(table.Row{"n", 0, 0})
		return
	}

	t.AppendRows([]table.Row{
		{"n", humanize.Comma(int64(xs.N)), humanize.Comma(int64(ys.N))},
		{"mean", num(xs.Mean), num(ys.Mean)},
		{"median", num(xs.Median), num(ys.Median)},
		{"sd", num(xs.StdDev), num(ys.StdDev)},
		{"min", num(xs.Min), num(ys.Min)},
		{"q25", num(xs.Q25), num(ys.Q25)},
		{"q75", num(xs.Q75), num(ys.Q75)},
		{"max", num(xs.Max), num(ys.Max)},
		{"outliers", profiling.Outliers(fig.X, xs), profiling.Outliers(fig.Y, ys)},
	})

	if tr := fig.Trend; tr != nil {
		t.AppendFooter(table.Row{"trend", fmt.Sprintf("slope %s", num(tr.Slope)), fmt.Sprintf("R² %s", num(tr.RSquared))})
	}
}

func categoryRows(t table.Writer, fig figure.Figure) {
	label := fig.XLabel
	if label == "" {
		label = fig.Title
	}
	t.AppendHeader(table.Row{label, "N", "share", ""})

	total := 0
	for _, c := range fig.Categories {
		total += c.Count
	}
	for _, c := range fig.Categories {
		mark := ""
		if c.Color == figure.HighlightColor {
			mark = "selected"
		}
		share := 0.0
		if total > 0 {
			share = float64(c.Count) / float64(total) * 100
		}
		t.AppendRow(table.Row{c.Label, humanize.Comma(int64(c.Count)), humanize.FtoaWithDigits(share, 1) + "%", mark})
	}
	t.AppendFooter(table.Row{"total", humanize.Comma(int64(total)), "", ""})
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', 5, 64)
}
