// Package panel implements the dashboard's plot panels. Each panel declares the
// columns it needs, derives its options and display arrays from a published dataset,
// and sends redraw requests to a surface.
package panel

import (
	"fmt"
	"sort"

	"hcpdash/domain/core"
	"hcpdash/domain/dataset"
	"hcpdash/domain/figure"
	"hcpdash/domain/view"
	apperrors "hcpdash/internal/errors"
	"hcpdash/ports"
)

// Panel IDs
const (
	BehaviorID     = "behavior"
	TractID        = "tract"
	DemographicsID = "demographics"
)

// Panel is a hub subscriber with user controls
type Panel interface {
	ports.Panel
	Title() string
	Help() string
	Schema() Schema
	State() view.State
	// Apply validates every control value against the current options, then updates
	// the selection and redraws. Nothing changes when any value is rejected.
	Apply(controls map[string]string) error
}

// NoDataMessage is shown on figures with nothing to plot
const NoDataMessage = "no data"

// scatterOpacity is the default point opacity of scatter figures
const scatterOpacity = 0.5

// base carries what every panel variant shares: identity, schema, the last accepted
// dataset and the last figures drawn.
type base struct {
	id      string
	title   string
	help    string
	schema  Schema
	surface ports.Surface

	ds      *dataset.Dataset
	rows    []int
	figures []figure.Figure
	err     error
}

func newBase(id, title, help string, schema Schema, surface ports.Surface) base {
	return base{id: id, title: title, help: help, schema: schema, surface: surface}
}

func (b *base) ID() string     { return b.id }
func (b *base) Title() string  { return b.title }
func (b *base) Help() string   { return b.help }
func (b *base) Schema() Schema { return b.schema }

// accept runs the schema filter against ds. On MISSING_COLUMN the previous dataset and
// view are kept and the error is returned. An empty result is accepted.
func (b *base) accept(ds *dataset.Dataset) error {
	rows, err := b.schema.Filter(b.id, ds)
	if err != nil && !apperrors.HasCode(err, apperrors.CodeEmptyResult) {
		b.err = err
		return err
	}
	b.ds, b.rows, b.err = ds, rows, nil
	return nil
}

// redraw sends figures to the surface and remembers them
func (b *base) redraw(figs ...figure.Figure) error {
	for _, f := range figs {
		if err := b.surface.Redraw(f); err != nil {
			return apperrors.Wrapf(err, "%s: redraw %s failed", b.id, f.Name)
		}
	}
	b.figures = figs
	return nil
}

func (b *base) state(controls []view.Control) view.State {
	st := view.State{
		ID:       b.id,
		Title:    b.title,
		Rows:     len(b.rows),
		Controls: controls,
		Figures:  append([]figure.Figure(nil), b.figures...),
	}
	if b.err != nil {
		st.Error = b.err.Error()
		st.ErrCode = apperrors.GetCode(b.err)
	}
	return st
}

// validate checks a control update against the current controls and returns the
// accepted values
func (b *base) validate(controls []view.Control, updates map[string]string) (map[string]string, error) {
	if b.ds == nil {
		return nil, apperrors.WithCode(apperrors.CodeInvalidInput, fmt.Errorf("%s: %w", b.id, core.ErrNoDataset))
	}

	byName := make(map[string]view.Control, len(controls))
	for _, c := range controls {
		byName[c.Name] = c
	}

	accepted := make(map[string]string, len(updates))
	for name, value := range updates {
		c, ok := byName[name]
		if !ok {
			return nil, apperrors.InvalidInput(fmt.Sprintf("%s: unknown control %q", b.id, name))
		}
		if !c.HasOption(value) {
			return nil, apperrors.InvalidInput(fmt.Sprintf("%s: %q is not an option for %s", b.id, value, name))
		}
		accepted[name] = value
	}
	return accepted, nil
}

// withAll prefixes options with the no-filter option
func withAll(options []string) []string {
	return append([]string{view.All}, options...)
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}

// keepOr returns current when it is still an option, fallback otherwise
func keepOr(options []string, current, fallback string) string {
	if contains(options, current) {
		return current
	}
	return fallback
}

// nth returns options[i], clamped to the last option, or "" when there are none
func nth(options []string, i int) string {
	if len(options) == 0 {
		return ""
	}
	if i >= len(options) {
		i = len(options) - 1
	}
	return options[i]
}

// categories turns counts into categories ordered by label, highlighting selected
func categories(counts map[string]int, selected string) []figure.Category {
	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	dataset.SortCategories(labels)

	cats := make([]figure.Category, len(labels))
	for i, l := range labels {
		color := figure.DefaultColor
		if l == selected {
			color = figure.HighlightColor
		}
		cats[i] = figure.Category{Label: l, Count: counts[l], Color: color}
	}
	return cats
}

// categoriesByCount orders by descending count, then label
func categoriesByCount(counts map[string]int) []figure.Category {
	cats := make([]figure.Category, 0, len(counts))
	for l, n := range counts {
		cats = append(cats, figure.Category{Label: l, Count: n, Color: figure.DefaultColor})
	}
	sort.Slice(cats, func(i, j int) bool {
		if cats[i].Count != cats[j].Count {
			return cats[i].Count > cats[j].Count
		}
		return cats[i].Label < cats[j].Label
	})
	return cats
}

// NewDefaultPanels builds the three HCP-YA panels from a schema set
func NewDefaultPanels(surface ports.Surface, schemas map[string]Schema) []Panel {
	return []Panel{
		NewBehaviorPanel(surface, schemas[BehaviorID]),
		NewTractPanel(surface, schemas[TractID]),
		NewDemographicsPanel(surface, schemas[DemographicsID]),
	}
}
