package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hcpdash/domain/figure"
)

func scatterFigure() figure.Figure {
	return figure.Figure{
		PanelID: "behavior",
		Name:    "scatter",
		Kind:    figure.KindScatter,
		Title:   "Behavior & brain volume",
		XLabel:  "PicSeq_AgeAdj",
		YLabel:  "CardSort_AgeAdj",
		X:       []float64{100, 110, 120},
		Y:       []float64{95, 105, 118},
		Opacity: 0.5,
	}
}

func TestRender_Scatter(t *testing.T) {
	svg, err := Render(scatterFigure(), 400, 300)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(svg), "<svg"))
	assert.Contains(t, string(svg), "PicSeq_AgeAdj")
}

func TestRender_ScatterWithTrend(t *testing.T) {
	fig := scatterFigure()
	fig.Trend = &figure.TrendLine{X: [2]float64{100, 120}, Y: [2]float64{94, 117}, Slope: 1.15, RSquared: 0.98}

	svg, err := Render(fig, 400, 300)
	require.NoError(t, err)
	assert.NotEmpty(t, svg)
}

func TestRender_SinglePoint(t *testing.T) {
	fig := scatterFigure()
	fig.X, fig.Y = []float64{7}, []float64{7}

	_, err := Render(fig, 400, 300)
	require.NoError(t, err)
}

func TestRender_Bars(t *testing.T) {
	fig := figure.Figure{
		PanelID: "demographics",
		Name:    "age",
		Kind:    figure.KindBars,
		Title:   "Age brackets",
		YLabel:  "N",
		Categories: []figure.Category{
			{Label: "22-25", Count: 2, Color: figure.DefaultColor},
			{Label: "26-30", Count: 2, Color: figure.HighlightColor},
		},
	}
	svg, err := Render(fig, 400, 300)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "22-25")
}

func TestRender_PieSingleSlice(t *testing.T) {
	fig := figure.Figure{
		PanelID:    "demographics",
		Name:       "gender",
		Kind:       figure.KindPie,
		Title:      "Gender",
		Categories: []figure.Category{{Label: "F", Count: 3, Color: figure.DefaultColor}},
	}
	_, err := Render(fig, 400, 300)
	require.NoError(t, err)
}

func TestRender_NoData(t *testing.T) {
	fig := figure.Empty("tract", "profile", figure.KindScatter, "Tract <profiles>", "no data")

	svg, err := Render(fig, 400, 300)
	require.NoError(t, err)
	assert.Contains(t, string(svg), "no data")
	assert.Contains(t, string(svg), "Tract &lt;profiles&gt;")
}

func TestRender_UnknownKind(t *testing.T) {
	_, err := Render(figure.Figure{Kind: "heatmap"}, 400, 300)
	require.Error(t, err)
}

func TestPaddedRange(t *testing.T) {
	r := paddedRange([]float64{5, 5})
	assert.Less(t, r.Min, 5.0)
	assert.Greater(t, r.Max, 5.0)

	r = paddedRange(nil)
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 1.0, r.Max)

	r = paddedRange([]float64{0, 10})
	assert.InDelta(t, -0.5, r.Min, 1e-9)
	assert.InDelta(t, 10.5, r.Max, 1e-9)
}

func TestSVGSurface_CachesLatest(t *testing.T) {
	s := NewSVGSurface(0, 0)

	_, ok := s.SVG("behavior", "scatter")
	assert.False(t, ok)

	require.NoError(t, s.Redraw(figure.Empty("behavior", "scatter", figure.KindScatter, "first", "no data")))
	first, ok := s.SVG("behavior", "scatter")
	require.True(t, ok)
	assert.Contains(t, string(first), "first")

	require.NoError(t, s.Redraw(scatterFigure()))
	second, _ := s.SVG("behavior", "scatter")
	assert.NotEqual(t, first, second)

	assert.Error(t, s.Redraw(figure.Figure{PanelID: "x", Name: "y", Kind: "heatmap"}))
	_, ok = s.SVG("x", "y")
	assert.False(t, ok)
}
