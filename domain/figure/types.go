package figure

// Kind selects how a surface draws a figure
type Kind string

const (
	KindScatter Kind = "scatter"
	KindBars    Kind = "bars"
	KindPie     Kind = "pie"
)

// Colors used for categorical highlighting
const (
	DefaultColor   = "steelblue"
	HighlightColor = "red"
)

// Figure is one redraw request issued by a panel to a plotting surface
type Figure struct {
	PanelID string `json:"panel_id"`
	Name    string `json:"name"`
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`

	XLabel  string    `json:"x_label,omitempty"`
	YLabel  string    `json:"y_label,omitempty"`
	X       []float64 `json:"x,omitempty"`
	Y       []float64 `json:"y,omitempty"`
	Opacity float64   `json:"opacity,omitempty"`

	Trend *TrendLine `json:"trend,omitempty"`

	Categories []Category `json:"categories,omitempty"`

	XSummary *Summary `json:"x_summary,omitempty"`
	YSummary *Summary `json:"y_summary,omitempty"`

	NoData  bool   `json:"no_data"`
	Message string `json:"message,omitempty"`
}

// Key identifies a figure across redraws
func (f Figure) Key() string {
	return f.PanelID + "/" + f.Name
}

// Points returns the number of plotted points or categories
func (f Figure) Points() int {
	if f.Kind == KindScatter {
		return len(f.X)
	}
	return len(f.Categories)
}

// TrendLine is a fitted degree-1 overlay given by its two endpoints
type TrendLine struct {
	X         [2]float64 `json:"x"`
	Y         [2]float64 `json:"y"`
	Slope     float64    `json:"slope"`
	Intercept float64    `json:"intercept"`
	RSquared  float64    `json:"r_squared"`
}

// At evaluates the fitted line at x
func (t TrendLine) At(x float64) float64 {
	return t.Intercept + t.Slope*x
}

// Category is one bar or pie slice
type Category struct {
	Label string `json:"label"`
	Count int    `json:"count"`
	Color string `json:"color"`
}

// Summary describes the distribution of one plotted axis
type Summary struct {
	N      int     `json:"n"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// Empty builds a no-data figure carrying a visible message
func Empty(panelID, name string, kind Kind, title, message string) Figure {
	return Figure{
		PanelID: panelID,
		Name:    name,
		Kind:    kind,
		Title:   title,
		NoData:  true,
		Message: message,
	}
}
