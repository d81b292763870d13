package view

import "hcpdash/domain/figure"

// ControlKind tells a front end how to draw a control
type ControlKind string

const (
	ControlSelect ControlKind = "select"
	ControlToggle ControlKind = "toggle"
)

// All is the option meaning "no filter" for categorical filters
const All = "all"

// Control is one user-adjustable input of a panel
type Control struct {
	Name    string      `json:"name"`
	Label   string      `json:"label"`
	Kind    ControlKind `json:"kind"`
	Value   string      `json:"value"`
	Options []string    `json:"options,omitempty"`
}

// HasOption reports whether value is one of the control's options. Toggles accept
// "true" and "false".
func (c Control) HasOption(value string) bool {
	if c.Kind == ControlToggle {
		return value == "true" || value == "false"
	}
	for _, o := range c.Options {
		if o == value {
			return true
		}
	}
	return false
}

// State is a read-only snapshot of a panel for front ends
type State struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Attached bool            `json:"attached"`
	Rows     int             `json:"rows"`
	Controls []Control       `json:"controls"`
	Figures  []figure.Figure `json:"figures"`
	Error    string          `json:"error,omitempty"`
	ErrCode  string          `json:"error_code,omitempty"`
}

// Control returns the named control
func (s State) Control(name string) (Control, bool) {
	for _, c := range s.Controls {
		if c.Name == name {
			return c, true
		}
	}
	return Control{}, false
}

// Figure returns the named figure
func (s State) Figure(name string) (figure.Figure, bool) {
	for _, f := range s.Figures {
		if f.Name == name {
			return f, true
		}
	}
	return figure.Figure{}, false
}
