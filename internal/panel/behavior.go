package panel

import (
	"strconv"

	"hcpdash/domain/dataset"
	"hcpdash/domain/figure"
	"hcpdash/domain/view"
	"hcpdash/internal/profiling"
	"hcpdash/ports"
)

// Filter columns of the behavioral panel
const (
	AgeColumn    = "Age"
	GenderColumn = "Gender"
)

const behaviorHelp = `Scatter any two **cognitive** (NIH Toolbox, age-adjusted) or **FreeSurfer volume**
measures against each other. Subjects missing any required value are left out.

Narrow the cohort with the *age* and *gender* filters and switch on the trend line for an
ordinary least-squares fit over the points shown.`

// BehaviorPanel scatters behavioral and volumetric measures per subject
type BehaviorPanel struct {
	base

	measures []string
	ages     []string
	genders  []string

	x, y   string
	age    string
	gender string
	trend  bool
}

// NewBehaviorPanel creates the behavioral scatter panel
func NewBehaviorPanel(surface ports.Surface, schema Schema) *BehaviorPanel {
	p := &BehaviorPanel{
		base:   newBase(BehaviorID, "Behavior & brain volume", behaviorHelp, schema, surface),
		age:    view.All,
		gender: view.All,
	}
	p.measures = schema.Labels()
	p.x, p.y = nth(p.measures, 0), nth(p.measures, 1)
	return p
}

// OnData recomputes measures and filter options from ds and redraws
func (p *BehaviorPanel) OnData(ds *dataset.Dataset) error {
	if err := p.accept(ds); err != nil {
		return err
	}
	p.refreshOptions()
	return p.render()
}

// refreshOptions derives the selectable measures and filter values, resetting any
// selection the new dataset no longer offers.
func (p *BehaviorPanel) refreshOptions() {
	measures := p.schema.Labels()
	known := make(map[string]bool)
	for _, c := range p.schema.Columns() {
		known[c] = true
	}
	for _, c := range p.ds.Columns() {
		if !known[c] && p.ds.IsNumeric(c, p.rows) {
			measures = append(measures, c)
		}
	}
	p.measures = measures

	if !contains(measures, p.x) || !contains(measures, p.y) {
		p.x, p.y = nth(measures, 0), nth(measures, 1)
	}

	p.ages = dataset.SortCategories(p.ds.Distinct(AgeColumn, p.rows))
	p.genders = dataset.SortCategories(p.ds.Distinct(GenderColumn, p.rows))
	p.age = keepOr(p.ages, p.age, view.All)
	p.gender = keepOr(p.genders, p.gender, view.All)
}

func (p *BehaviorPanel) column(label string) string {
	if c, ok := p.schema.ColumnFor(label); ok {
		return c
	}
	return label
}

// Points returns the displayed X and Y values for the current selection
func (p *BehaviorPanel) Points() (xs, ys []float64) {
	if p.ds == nil {
		return nil, nil
	}
	xc, yc := p.column(p.x), p.column(p.y)
	for _, i := range p.rows {
		if p.age != view.All && p.ds.Value(i, AgeColumn).String() != p.age {
			continue
		}
		if p.gender != view.All && p.ds.Value(i, GenderColumn).String() != p.gender {
			continue
		}
		xv, okX := p.ds.Value(i, xc).Float()
		yv, okY := p.ds.Value(i, yc).Float()
		if !okX || !okY {
			continue
		}
		xs = append(xs, xv)
		ys = append(ys, yv)
	}
	return xs, ys
}

func (p *BehaviorPanel) render() error {
	xs, ys := p.Points()
	if len(xs) == 0 {
		fig := figure.Empty(p.id, "scatter", figure.KindScatter, p.title, NoDataMessage)
		fig.XLabel, fig.YLabel = p.x, p.y
		return p.redraw(fig)
	}

	fig := figure.Figure{
		PanelID:  p.id,
		Name:     "scatter",
		Kind:     figure.KindScatter,
		Title:    p.title,
		XLabel:   p.x,
		YLabel:   p.y,
		X:        xs,
		Y:        ys,
		Opacity:  scatterOpacity,
		XSummary: profiling.Summarize(xs),
		YSummary: profiling.Summarize(ys),
	}
	if p.trend {
		fig.Trend = FitTrend(xs, ys)
	}
	return p.redraw(fig)
}

func (p *BehaviorPanel) controls() []view.Control {
	return []view.Control{
		{Name: "x", Label: "X measure", Kind: view.ControlSelect, Value: p.x, Options: p.measures},
		{Name: "y", Label: "Y measure", Kind: view.ControlSelect, Value: p.y, Options: p.measures},
		{Name: "age", Label: "Age", Kind: view.ControlSelect, Value: p.age, Options: withAll(p.ages)},
		{Name: "gender", Label: "Gender", Kind: view.ControlSelect, Value: p.gender, Options: withAll(p.genders)},
		{Name: "trend", Label: "Show trend line", Kind: view.ControlToggle, Value: strconv.FormatBool(p.trend)},
	}
}

// State returns the panel snapshot
func (p *BehaviorPanel) State() view.State {
	return p.state(p.controls())
}

// Apply updates the selection from control values and redraws
func (p *BehaviorPanel) Apply(updates map[string]string) error {
	accepted, err := p.validate(p.controls(), updates)
	if err != nil {
		return err
	}
	for name, v := range accepted {
		switch name {
		case "x":
			p.x = v
		case "y":
			p.y = v
		case "age":
			p.age = v
		case "gender":
			p.gender = v
		case "trend":
			p.trend = v == "true"
		}
	}
	return p.render()
}
