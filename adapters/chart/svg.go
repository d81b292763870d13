// Package chart renders figures to SVG with go-chart and keeps the latest rendering of
// every figure for the web front end.
package chart

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"sync"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"hcpdash/domain/figure"
)

// Default canvas size in pixels
const (
	DefaultWidth  = 640
	DefaultHeight = 420
)

var palette = map[string]drawing.Color{
	figure.DefaultColor:   drawing.ColorFromHex("4682b4"),
	figure.HighlightColor: drawing.ColorFromHex("ff0000"),
}

func colorOf(name string) drawing.Color {
	if c, ok := palette[name]; ok {
		return c
	}
	return palette[figure.DefaultColor]
}

// pointStyle draws markers only, no connecting line
func pointStyle(col drawing.Color, opacity float64) chart.Style {
	if opacity > 0 && opacity < 1 {
		col = col.WithAlpha(uint8(math.Round(opacity * 255)))
	}
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// SVGSurface renders every redraw request and caches the result by figure key
type SVGSurface struct {
	mu      sync.RWMutex
	width   int
	height  int
	figures map[string][]byte
}

// NewSVGSurface creates a surface drawing width x height charts. Non-positive sizes
// use the defaults.
func NewSVGSurface(width, height int) *SVGSurface {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	return &SVGSurface{width: width, height: height, figures: make(map[string][]byte)}
}

// Redraw renders fig and replaces the cached SVG for its key
func (s *SVGSurface) Redraw(fig figure.Figure) error {
	svg, err := Render(fig, s.width, s.height)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.figures[fig.Key()] = svg
	s.mu.Unlock()
	return nil
}

// SVG returns the latest rendering of a panel's figure
func (s *SVGSurface) SVG(panelID, name string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svg, ok := s.figures[panelID+"/"+name]
	return svg, ok
}

// Render draws one figure as SVG
func Render(fig figure.Figure, width, height int) ([]byte, error) {
	if fig.NoData {
		return placeholder(fig, width, height), nil
	}

	var (
		buf bytes.Buffer
		err error
	)
	switch fig.Kind {
	case figure.KindScatter:
		err = scatter(fig, width, height).Render(chart.SVG, &buf)
	case figure.KindBars:
		err = bars(fig, width, height).Render(chart.SVG, &buf)
	case figure.KindPie:
		err = pie(fig, width, height).Render(chart.SVG, &buf)
	default:
		return nil, fmt.Errorf("unsupported figure kind %q", fig.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", fig.Key(), err)
	}
	return buf.Bytes(), nil
}

func scatter(fig figure.Figure, width, height int) chart.Chart {
	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    fig.YLabel,
			XValues: fig.X,
			YValues: fig.Y,
			Style:   pointStyle(colorOf(figure.DefaultColor), fig.Opacity),
		},
	}
	if t := fig.Trend; t != nil {
		series = append(series, chart.ContinuousSeries{
			Name:    fmt.Sprintf("trend (R² %.2f)", t.RSquared),
			XValues: t.X[:],
			YValues: t.Y[:],
			Style: chart.Style{
				StrokeColor: colorOf(figure.HighlightColor),
				StrokeWidth: 2,
			},
		})
	}

	ys := fig.Y
	if fig.Trend != nil {
		ys = append(append([]float64(nil), fig.Y...), fig.Trend.Y[:]...)
	}

	return chart.Chart{
		Title:      fig.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 30, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      chart.XAxis{Name: fig.XLabel, Range: paddedRange(fig.X)},
		YAxis:      chart.YAxis{Name: fig.YLabel, Range: paddedRange(ys)},
		Series:     series,
	}
}

// paddedRange gives the axis some slack and never a zero width, which go-chart rejects
func paddedRange(values []float64) *chart.ContinuousRange {
	if len(values) == 0 {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(lo)*0.05, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func bars(fig figure.Figure, width, height int) chart.BarChart {
	values := make([]chart.Value, len(fig.Categories))
	top := 0
	for i, c := range fig.Categories {
		col := colorOf(c.Color)
		values[i] = chart.Value{
			Label: c.Label,
			Value: float64(c.Count),
			Style: chart.Style{FillColor: col, StrokeColor: col},
		}
		if c.Count > top {
			top = c.Count
		}
	}

	return chart.BarChart{
		Title:      fig.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 40}},
		BarWidth:   40,
		XAxis:      chart.Style{},
		YAxis: chart.YAxis{
			Name:  fig.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top) * 1.1},
		},
		Bars: values,
	}
}

func pie(fig figure.Figure, width, height int) chart.PieChart {
	values := make([]chart.Value, len(fig.Categories))
	for i, c := range fig.Categories {
		values[i] = chart.Value{
			Label: fmt.Sprintf("%s (%d)", c.Label, c.Count),
			Value: float64(c.Count),
		}
	}
	return chart.PieChart{
		Title:  fig.Title,
		Width:  width,
		Height: height,
		Values: values,
	}
}

// placeholder draws the no-data message. go-chart cannot render a chart without
// series, so this one is written by hand.
func placeholder(fig figure.Figure, width, height int) []byte {
	msg := fig.Message
	if msg == "" {
		msg = "no data"
	}
	return []byte(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+
		`<rect width="100%%" height="100%%" fill="#ffffff"/>`+
		`<text x="50%%" y="24" text-anchor="middle" font-family="sans-serif" font-size="15" fill="#333333">%s</text>`+
		`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="14" fill="#888888">%s</text>`+
		`</svg>`,
		width, height, width, height, html.EscapeString(fig.Title), html.EscapeString(msg)))
}
