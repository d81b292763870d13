package panel

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "hcpdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSchemaFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultSchemas(t *testing.T) {
	schemas := DefaultSchemas()

	assert.Len(t, schemas[BehaviorID].Measures, 13)
	assert.Equal(t, []string{"tractID", "nodeID", "dki_fa", "dki_md", "dki_mk", "dki_awf"}, schemas[TractID].Columns())
	assert.Equal(t, []string{"Age", "Gender"}, schemas[DemographicsID].Columns())

	col, ok := schemas[TractID].ColumnFor("Mean Diffusivity")
	assert.True(t, ok)
	assert.Equal(t, "dki_md", col)
	_, ok = schemas[TractID].ColumnFor("dki_md")
	assert.False(t, ok)
}

func TestSchema_Filter(t *testing.T) {
	s := Schema{Required: []string{"Age"}, Measures: columnMeasures("A")}

	ds := table(t, []string{"Age", "A", "Other"},
		[]string{"22", "1", ""},
		[]string{"", "2", "x"},
		[]string{"26", "n/a", "y"},
		[]string{"31", "4", "z"},
	)

	rows, err := s.Filter("p", ds)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, rows)
	assert.Equal(t, ds.Len()-2, len(rows))
}

func TestLoadSchemas(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		schemas, err := LoadSchemas("")
		require.NoError(t, err)
		assert.Equal(t, DefaultSchemas(), schemas)
	})

	t.Run("override measures", func(t *testing.T) {
		path := writeSchemaFile(t, `
tract:
  measures:
    - label: FA
      column: dti_fa
    - column: dti_md
`)
		schemas, err := LoadSchemas(path)
		require.NoError(t, err)

		tract := schemas[TractID]
		assert.Equal(t, []string{"tractID", "nodeID"}, tract.Required)
		assert.Equal(t, []string{"FA", "dti_md"}, tract.Labels())
		assert.Len(t, schemas[BehaviorID].Measures, 13)
	})

	t.Run("unknown panel", func(t *testing.T) {
		path := writeSchemaFile(t, "connectome:\n  required: [x]\n")
		_, err := LoadSchemas(path)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
	})

	t.Run("measure without column", func(t *testing.T) {
		path := writeSchemaFile(t, "behavior:\n  measures:\n    - label: Memory\n")
		_, err := LoadSchemas(path)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeSchemaFile(t, "behavior: [\n")
		_, err := LoadSchemas(path)
		require.Error(t, err)
		assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSchemas(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})
}
