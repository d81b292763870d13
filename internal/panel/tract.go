package panel

import (
	"strconv"

	"hcpdash/domain/dataset"
	"hcpdash/domain/figure"
	"hcpdash/domain/view"
	"hcpdash/internal/profiling"
	"hcpdash/ports"
)

// Tract profile columns
const (
	TractColumn = "tractID"
	NodeColumn  = "nodeID"
)

const tractHelp = `Diffusion kurtosis **tract profiles**: one point per node along the selected
white-matter tract.

Pick the tract and the DKI measure to plot. Rows missing any profile value are dropped.`

// TractPanel plots a diffusion measure along the nodes of one tract
type TractPanel struct {
	base

	tracts []string

	tract   string
	measure string
	trend   bool
}

// NewTractPanel creates the tract profile panel
func NewTractPanel(surface ports.Surface, schema Schema) *TractPanel {
	return &TractPanel{
		base:    newBase(TractID, "Tract profiles", tractHelp, schema, surface),
		measure: nth(schema.Labels(), 0),
	}
}

// OnData recomputes the tract list and redraws
func (p *TractPanel) OnData(ds *dataset.Dataset) error {
	if err := p.accept(ds); err != nil {
		return err
	}
	p.tracts = p.ds.Distinct(TractColumn, p.rows)
	p.tract = keepOr(p.tracts, p.tract, nth(p.tracts, 0))
	p.measure = keepOr(p.schema.Labels(), p.measure, nth(p.schema.Labels(), 0))
	return p.render()
}

// Points returns node indices and measure values of the selected tract
func (p *TractPanel) Points() (xs, ys []float64) {
	if p.ds == nil {
		return nil, nil
	}
	col, ok := p.schema.ColumnFor(p.measure)
	if !ok {
		return nil, nil
	}
	for _, i := range p.rows {
		if p.ds.Value(i, TractColumn).String() != p.tract {
			continue
		}
		node, okX := p.ds.Value(i, NodeColumn).Float()
		v, okY := p.ds.Value(i, col).Float()
		if !okX || !okY {
			continue
		}
		xs = append(xs, node)
		ys = append(ys, v)
	}
	return xs, ys
}

func (p *TractPanel) render() error {
	title := p.title
	if p.tract != "" {
		title = p.title + ": " + p.tract
	}

	xs, ys := p.Points()
	if len(xs) == 0 {
		fig := figure.Empty(p.id, "profile", figure.KindScatter, title, NoDataMessage)
		fig.XLabel, fig.YLabel = "node", p.measure
		return p.redraw(fig)
	}

	fig := figure.Figure{
		PanelID:  p.id,
		Name:     "profile",
		Kind:     figure.KindScatter,
		Title:    title,
		XLabel:   "node",
		YLabel:   p.measure,
		X:        xs,
		Y:        ys,
		Opacity:  scatterOpacity,
		YSummary: profiling.Summarize(ys),
	}
	if p.trend {
		fig.Trend = FitTrend(xs, ys)
	}
	return p.redraw(fig)
}

func (p *TractPanel) controls() []view.Control {
	return []view.Control{
		{Name: "tract", Label: "Tract", Kind: view.ControlSelect, Value: p.tract, Options: p.tracts},
		{Name: "measure", Label: "Measure", Kind: view.ControlSelect, Value: p.measure, Options: p.schema.Labels()},
		{Name: "trend", Label: "Show trend line", Kind: view.ControlToggle, Value: strconv.FormatBool(p.trend)},
	}
}

// State returns the panel snapshot
func (p *TractPanel) State() view.State {
	return p.state(p.controls())
}

// Apply updates the selection from control values and redraws
func (p *TractPanel) Apply(updates map[string]string) error {
	accepted, err := p.validate(p.controls(), updates)
	if err != nil {
		return err
	}
	for name, v := range accepted {
		switch name {
		case "tract":
			p.tract = v
		case "measure":
			p.measure = v
		case "trend":
			p.trend = v == "true"
		}
	}
	return p.render()
}
