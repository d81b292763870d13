package panel

import (
	"strconv"
	"testing"

	apperrors "hcpdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tractColumns = []string{"tractID", "nodeID", "dki_fa", "dki_md", "dki_mk", "dki_awf"}

func tractData(t *testing.T) [][]string {
	t.Helper()
	return [][]string{
		{"Left Arcuate", "0", "0.40", "0.80", "0.90", "0.30"},
		{"Left Arcuate", "1", "0.42", "0.81", "0.91", "0.31"},
		{"Left Arcuate", "2", "0.44", "", "0.92", "0.32"},
		{"Right SLF", "0", "0.50", "0.70", "1.00", "0.40"},
		{"Right SLF", "1", "0.52", "0.71", "1.01", "0.41"},
	}
}

func TestTractPanel_Profile(t *testing.T) {
	rec := &recorder{}
	p := NewTractPanel(rec.surface(), DefaultSchemas()[TractID])

	require.NoError(t, p.OnData(table(t, tractColumns, tractData(t)...)))

	st := p.State()
	assert.Equal(t, 4, st.Rows)

	tract, _ := st.Control("tract")
	assert.Equal(t, []string{"Left Arcuate", "Right SLF"}, tract.Options)
	assert.Equal(t, "Left Arcuate", tract.Value)

	measure, _ := st.Control("measure")
	assert.Equal(t, "Fractional Anisotropy", measure.Value)
	assert.Len(t, measure.Options, 4)

	fig, ok := rec.last("profile")
	require.True(t, ok)
	assert.Equal(t, "node", fig.XLabel)
	assert.Equal(t, "Fractional Anisotropy", fig.YLabel)
	assert.Equal(t, "Tract profiles: Left Arcuate", fig.Title)
	assert.Equal(t, []float64{0, 1}, fig.X)
	assert.Equal(t, []float64{0.40, 0.42}, fig.Y)
}

func TestTractPanel_Apply(t *testing.T) {
	rec := &recorder{}
	p := NewTractPanel(rec.surface(), DefaultSchemas()[TractID])
	require.NoError(t, p.OnData(table(t, tractColumns, tractData(t)...)))

	require.NoError(t, p.Apply(map[string]string{"tract": "Right SLF", "measure": "Mean Kurtosis", "trend": "true"}))

	fig, _ := rec.last("profile")
	assert.Equal(t, "Mean Kurtosis", fig.YLabel)
	assert.Equal(t, []float64{1.00, 1.01}, fig.Y)
	require.NotNil(t, fig.Trend)
	assert.InDelta(t, 0.01, fig.Trend.Slope, 1e-9)

	err := p.Apply(map[string]string{"measure": "dki_mk"})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestTractPanel_TractResetOnNewDataset(t *testing.T) {
	p := NewTractPanel((&recorder{}).surface(), DefaultSchemas()[TractID])
	require.NoError(t, p.OnData(table(t, tractColumns, tractData(t)...)))
	require.NoError(t, p.Apply(map[string]string{"tract": "Right SLF"}))

	require.NoError(t, p.OnData(table(t, tractColumns,
		[]string{"Callosum Forceps Major", "0", "0.6", "0.7", "1.1", "0.5"},
	)))

	tract, _ := p.State().Control("tract")
	assert.Equal(t, "Callosum Forceps Major", tract.Value)
}

func TestTractPanel_MissingColumn(t *testing.T) {
	p := NewTractPanel((&recorder{}).surface(), DefaultSchemas()[TractID])

	err := p.OnData(table(t, []string{"tractID", "nodeID", "dki_fa"},
		[]string{"Left Arcuate", "0", "0.4"},
	))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeMissingColumn))
	assert.Contains(t, err.Error(), "dki_md, dki_mk, dki_awf")
	assert.Empty(t, p.State().Figures)
}

func TestTractPanel_EmptyResult(t *testing.T) {
	rec := &recorder{}
	p := NewTractPanel(rec.surface(), DefaultSchemas()[TractID])

	require.NoError(t, p.OnData(table(t, tractColumns,
		[]string{"Left Arcuate", "0", "", "0.8", "0.9", "0.3"},
	)))

	fig, ok := rec.last("profile")
	require.True(t, ok)
	assert.True(t, fig.NoData)
	assert.Equal(t, "Tract profiles", fig.Title)
}

func TestTractPanel_SelectionRestrictsNodes(t *testing.T) {
	var rows [][]string
	for _, tract := range []string{"A", "B"} {
		for node := 0; node < 5; node++ {
			n := strconv.Itoa(node)
			rows = append(rows, []string{tract, n, "0." + n, "0.5", "1.0", "0.3"})
		}
	}
	rec := &recorder{}
	p := NewTractPanel(rec.surface(), DefaultSchemas()[TractID])
	require.NoError(t, p.OnData(table(t, tractColumns, rows...)))
	require.NoError(t, p.Apply(map[string]string{"tract": "B"}))
	require.NoError(t, p.Apply(map[string]string{"tract": "A"}))

	xs, _ := p.Points()
	assert.Equal(t, []float64{0, 1, 2, 3, 4}, xs)
}
