package panel

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"hcpdash/domain/dataset"
	apperrors "hcpdash/internal/errors"
)

// Measure is a plottable numeric column with its display label
type Measure struct {
	Label  string `yaml:"label"`
	Column string `yaml:"column"`
}

// Schema declares the columns a panel needs. Every identity column and every measure
// column is required.
type Schema struct {
	Required []string  `yaml:"required"`
	Measures []Measure `yaml:"measures"`
}

// Columns returns identity columns followed by measure columns
func (s Schema) Columns() []string {
	cols := append([]string(nil), s.Required...)
	for _, m := range s.Measures {
		cols = append(cols, m.Column)
	}
	return cols
}

// Labels returns the measure labels in declared order
func (s Schema) Labels() []string {
	labels := make([]string, len(s.Measures))
	for i, m := range s.Measures {
		labels[i] = m.Label
	}
	return labels
}

// ColumnFor maps a measure label to its column
func (s Schema) ColumnFor(label string) (string, bool) {
	for _, m := range s.Measures {
		if m.Label == label {
			return m.Column, true
		}
	}
	return "", false
}

// Check fails with MISSING_COLUMN when ds lacks any schema column
func (s Schema) Check(panelID string, ds *dataset.Dataset) error {
	if absent := ds.MissingColumns(s.Columns()); len(absent) > 0 {
		return apperrors.MissingColumns(panelID, absent)
	}
	return nil
}

// Filter returns the rows of ds with a value in every schema column. It fails with
// MISSING_COLUMN when a column is absent and EMPTY_RESULT when no row survives.
func (s Schema) Filter(panelID string, ds *dataset.Dataset) ([]int, error) {
	if err := s.Check(panelID, ds); err != nil {
		return nil, err
	}
	rows := ds.Complete(s.Columns())
	if len(rows) == 0 {
		return rows, apperrors.EmptyResult(panelID)
	}
	return rows, nil
}

func columnMeasures(columns ...string) []Measure {
	ms := make([]Measure, len(columns))
	for i, c := range columns {
		ms[i] = Measure{Label: c, Column: c}
	}
	return ms
}

// DefaultSchemas are the HCP-YA column sets keyed by panel ID
func DefaultSchemas() map[string]Schema {
	return map[string]Schema{
		BehaviorID: {
			Required: []string{"Subject", "Age", "Gender"},
			Measures: columnMeasures(
				"PicSeq_AgeAdj", "CardSort_AgeAdj", "Flanker_AgeAdj", "ListSort_AgeAdj",
				"ReadEng_AgeAdj", "PicVocab_AgeAdj", "ProcSpeed_AgeAdj",
				"FS_TotCort_GM_Vol", "FS_SubCort_GM_Vol", "FS_Total_GM_Vol",
				"FS_L_WM_Vol", "FS_R_WM_Vol", "FS_Tot_WM_Vol",
			),
		},
		TractID: {
			Required: []string{"tractID", "nodeID"},
			Measures: []Measure{
				{Label: "Fractional Anisotropy", Column: "dki_fa"},
				{Label: "Mean Diffusivity", Column: "dki_md"},
				{Label: "Mean Kurtosis", Column: "dki_mk"},
				{Label: "Axonal Water Fraction", Column: "dki_awf"},
			},
		},
		DemographicsID: {
			Required: []string{"Age", "Gender"},
		},
	}
}

// LoadSchemas reads per-panel overrides from a YAML file and merges them over the
// defaults. A panel entry replaces the lists it sets and keeps the ones it omits. An
// empty path returns the defaults.
func LoadSchemas(path string) (map[string]Schema, error) {
	schemas := DefaultSchemas()
	if path == "" {
		return schemas, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to read schema file %s", path)
	}

	var overrides map[string]Schema
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return nil, apperrors.WithCode(apperrors.CodeConfigInvalid, fmt.Errorf("schema file %s: %w", path, err))
	}

	for id, o := range overrides {
		base, ok := schemas[id]
		if !ok {
			return nil, apperrors.ConfigInvalid(fmt.Sprintf("schema file %s: unknown panel %q", path, id))
		}
		if o.Required != nil {
			base.Required = o.Required
		}
		if o.Measures != nil {
			for i, m := range o.Measures {
				if m.Column == "" {
					return nil, apperrors.ConfigInvalid(fmt.Sprintf("schema file %s: %s measure %d has no column", path, id, i))
				}
				if m.Label == "" {
					o.Measures[i].Label = m.Column
				}
			}
			base.Measures = o.Measures
		}
		schemas[id] = base
	}
	return schemas, nil
}
