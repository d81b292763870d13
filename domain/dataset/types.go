package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"hcpdash/domain/core"
)

// Kind classifies a cell value
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

// Value is a single cell: a number, a piece of text, or missing
type Value struct {
	kind Kind
	num  float64
	text string
}

// Number builds a numeric value. NaN and infinities are stored as missing.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Value{kind: KindNumber, num: f}
}

// Text builds a text value
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Missing builds a missing value
func Missing() Value {
	return Value{}
}

// missingTokens are cell spellings read as missing, matching pandas read_csv defaults
var missingTokens = map[string]bool{
	"":     true,
	"NA":   true,
	"N/A":  true,
	"n/a":  true,
	"NaN":  true,
	"nan":  true,
	"null": true,
	"NULL": true,
	"None": true,
	"#N/A": true,
}

// Parse classifies a raw cell. Surrounding whitespace is ignored.
func Parse(raw string) Value {
	s := strings.TrimSpace(raw)
	if missingTokens[s] {
		return Missing()
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number(f)
	}
	return Text(s)
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == KindMissing }

// Float returns the numeric value and whether the cell holds a number
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// String renders the value the way it is shown in category lists
func (v Value) String() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Dataset is an immutable snapshot of an uploaded table. Construct with New; the
// column and row slices are copied and never handed out.
type Dataset struct {
	ID       core.ID
	Source   string
	LoadedAt time.Time

	columns []string
	index   map[string]int
	rows    [][]Value
}

// New builds a dataset from column names and rows. Column names must be unique and
// every row must have exactly len(columns) cells.
func New(source string, columns []string, rows [][]Value) (*Dataset, error) {
	index := make(map[string]int, len(columns))
	cols := make([]string, len(columns))
	for i, name := range columns {
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: %q", core.ErrDuplicateName, name)
		}
		index[name] = i
		cols[i] = name
	}

	copied := make([][]Value, len(rows))
	for i, row := range rows {
		if len(row) != len(cols) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i+1, len(row), len(cols))
		}
		copied[i] = append([]Value(nil), row...)
	}

	return &Dataset{
		ID:       core.NewID(),
		Source:   source,
		LoadedAt: time.Now(),
		columns:  cols,
		index:    index,
		rows:     copied,
	}, nil
}

// Columns returns the column names in file order
func (d *Dataset) Columns() []string {
	return append([]string(nil), d.columns...)
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.rows)
}

// Has reports whether the named column exists
func (d *Dataset) Has(column string) bool {
	_, ok := d.index[column]
	return ok
}

// MissingColumns returns the subset of columns that are absent, preserving argument order
func (d *Dataset) MissingColumns(columns []string) []string {
	var absent []string
	for _, c := range columns {
		if !d.Has(c) {
			absent = append(absent, c)
		}
	}
	return absent
}

// Value returns the cell at row i, column name. Unknown columns read as missing.
func (d *Dataset) Value(i int, column string) Value {
	j, ok := d.index[column]
	if !ok || i < 0 || i >= len(d.rows) {
		return Missing()
	}
	return d.rows[i][j]
}

// Row returns a copy of row i keyed by column name
func (d *Dataset) Row(i int) map[string]Value {
	out := make(map[string]Value, len(d.columns))
	for j, c := range d.columns {
		out[c] = d.rows[i][j]
	}
	return out
}

// Complete returns the indices of rows with no missing value in any of the given
// columns, in row order.
func (d *Dataset) Complete(columns []string) []int {
	idx := make([]int, 0, len(d.rows))
	for i := range d.rows {
		ok := true
		for _, c := range columns {
			if d.Value(i, c).IsMissing() {
				ok = false
				break
			}
		}
		if ok {
			idx = append(idx, i)
		}
	}
	return idx
}

// IsNumeric reports whether every non-missing value of column over rows is a number
// and at least one such value exists.
func (d *Dataset) IsNumeric(column string, rows []int) bool {
	seen := false
	for _, i := range rows {
		v := d.Value(i, column)
		switch v.Kind() {
		case KindText:
			return false
		case KindNumber:
			seen = true
		}
	}
	return seen
}

// Distinct returns the distinct non-missing values of column over rows as strings, in
// first-appearance order.
func (d *Dataset) Distinct(column string, rows []int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, i := range rows {
		v := d.Value(i, column)
		if v.IsMissing() {
			continue
		}
		s := v.String()
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Counts tallies the non-missing values of column over rows
func (d *Dataset) Counts(column string, rows []int) map[string]int {
	counts := make(map[string]int)
	for _, i := range rows {
		v := d.Value(i, column)
		if v.IsMissing() {
			continue
		}
		counts[v.String()]++
	}
	return counts
}

// SortCategories orders category labels numerically when all of them parse as
// numbers, lexically otherwise. The input slice is sorted in place and returned.
func SortCategories(labels []string) []string {
	numeric := true
	nums := make(map[string]float64, len(labels))
	for _, l := range labels {
		f, err := strconv.ParseFloat(l, 64)
		if err != nil {
			numeric = false
			break
		}
		nums[l] = f
	}
	if numeric {
		sort.SliceStable(labels, func(i, j int) bool { return nums[labels[i]] < nums[labels[j]] })
	} else {
		sort.Strings(labels)
	}
	return labels
}
