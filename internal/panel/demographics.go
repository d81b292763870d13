package panel

import (
	"hcpdash/domain/dataset"
	"hcpdash/domain/figure"
	"hcpdash/domain/view"
	"hcpdash/ports"
)

const demographicsHelp = `Cohort make-up: subjects per **age bracket** and the **gender** split.

Selecting a bracket highlights its bar and restricts the gender chart to that bracket.`

// DemographicsPanel charts age bracket counts and the gender split
type DemographicsPanel struct {
	base

	ages []string
	age  string
}

// NewDemographicsPanel creates the demographics panel
func NewDemographicsPanel(surface ports.Surface, schema Schema) *DemographicsPanel {
	return &DemographicsPanel{
		base: newBase(DemographicsID, "Demographics", demographicsHelp, schema, surface),
		age:  view.All,
	}
}

// OnData recomputes age brackets and redraws both charts
func (p *DemographicsPanel) OnData(ds *dataset.Dataset) error {
	if err := p.accept(ds); err != nil {
		return err
	}
	p.ages = dataset.SortCategories(p.ds.Distinct(AgeColumn, p.rows))
	p.age = keepOr(p.ages, p.age, view.All)
	return p.render()
}

// AgeCounts returns subjects per age bracket
func (p *DemographicsPanel) AgeCounts() map[string]int {
	if p.ds == nil {
		return map[string]int{}
	}
	return p.ds.Counts(AgeColumn, p.rows)
}

// GenderCounts returns subjects per gender within the selected age bracket
func (p *DemographicsPanel) GenderCounts() map[string]int {
	if p.ds == nil {
		return map[string]int{}
	}
	rows := p.rows
	if p.age != view.All {
		rows = make([]int, 0, len(p.rows))
		for _, i := range p.rows {
			if p.ds.Value(i, AgeColumn).String() == p.age {
				rows = append(rows, i)
			}
		}
	}
	return p.ds.Counts(GenderColumn, rows)
}

func (p *DemographicsPanel) render() error {
	if len(p.rows) == 0 {
		return p.redraw(
			figure.Empty(p.id, "age", figure.KindBars, "Age brackets", NoDataMessage),
			figure.Empty(p.id, "gender", figure.KindPie, "Gender", NoDataMessage),
		)
	}

	ageFig := figure.Figure{
		PanelID:    p.id,
		Name:       "age",
		Kind:       figure.KindBars,
		Title:      "Age brackets",
		XLabel:     "Age",
		YLabel:     "N",
		Categories: categories(p.AgeCounts(), p.age),
	}
	genderFig := figure.Figure{
		PanelID:    p.id,
		Name:       "gender",
		Kind:       figure.KindPie,
		Title:      "Gender",
		Categories: categoriesByCount(p.GenderCounts()),
	}
	return p.redraw(ageFig, genderFig)
}

func (p *DemographicsPanel) controls() []view.Control {
	return []view.Control{
		{Name: "age", Label: "Age bracket", Kind: view.ControlSelect, Value: p.age, Options: withAll(p.ages)},
	}
}

// State returns the panel snapshot
func (p *DemographicsPanel) State() view.State {
	return p.state(p.controls())
}

// Apply updates the selected bracket and redraws
func (p *DemographicsPanel) Apply(updates map[string]string) error {
	accepted, err := p.validate(p.controls(), updates)
	if err != nil {
		return err
	}
	if v, ok := accepted["age"]; ok {
		p.age = v
	}
	return p.render()
}
