package panel

import (
	"errors"
	"testing"

	"hcpdash/domain/dataset"
	"hcpdash/domain/figure"
	"hcpdash/ports"

	"github.com/stretchr/testify/require"
)

// recorder collects every figure a panel draws
type recorder struct {
	figs []figure.Figure
	err  error
}

func (r *recorder) surface() ports.Surface {
	return ports.SurfaceFunc(func(f figure.Figure) error {
		if r.err != nil {
			return r.err
		}
		r.figs = append(r.figs, f)
		return nil
	})
}

func (r *recorder) last(name string) (figure.Figure, bool) {
	for i := len(r.figs) - 1; i >= 0; i-- {
		if r.figs[i].Name == name {
			return r.figs[i], true
		}
	}
	return figure.Figure{}, false
}

// table builds a dataset from raw cells, parsing each one
func table(t *testing.T, columns []string, rows ...[]string) *dataset.Dataset {
	t.Helper()
	values := make([][]dataset.Value, len(rows))
	for i, r := range rows {
		values[i] = make([]dataset.Value, len(r))
		for j, cell := range r {
			values[i][j] = dataset.Parse(cell)
		}
	}
	ds, err := dataset.New("test.csv", columns, values)
	require.NoError(t, err)
	return ds
}

var errSurface = errors.New("surface closed")
