package tabular

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "hcpdash/internal/errors"
)

func TestFileType(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"hcp.csv", TypeCSV, true},
		{"HCP.CSV", TypeCSV, true},
		{"export.txt", TypeCSV, true},
		{"book.xlsx", TypeXLSX, true},
		{"book.xls", "", false},
		{"data.parquet", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FileType(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NewDataReader("data.parquet")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidInput, apperrors.GetCode(err))
}

func TestRead_CSV(t *testing.T) {
	r, err := NewDataReader("hcp.csv")
	require.NoError(t, err)

	ds, err := r.Read(strings.NewReader("Subject, Age,Gender,PicSeq_AgeAdj\n100206,26-30,M,NA\n100307,22-25,F,98.5\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"Subject", "Age", "Gender", "PicSeq_AgeAdj"}, ds.Columns())
	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, "hcp.csv", ds.Source)
	assert.True(t, ds.Value(0, "PicSeq_AgeAdj").IsMissing())
	v, ok := ds.Value(1, "PicSeq_AgeAdj").Float()
	assert.True(t, ok)
	assert.Equal(t, 98.5, v)
	assert.Equal(t, "22-25", ds.Value(1, "Age").String())
}

func TestRead_HeaderOnly(t *testing.T) {
	r, _ := NewDataReader("a.csv")
	ds, err := r.Read(strings.NewReader("Age,Gender\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
	assert.Equal(t, []string{"Age", "Gender"}, ds.Columns())
}

func TestRead_BOMAndBlankHeader(t *testing.T) {
	r, _ := NewDataReader("a.csv")
	ds, err := r.Read(strings.NewReader("\ufeffAge,,Gender\n22,x,M\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Age", "Unnamed: 1", "Gender"}, ds.Columns())
}

func TestRead_ShortRowsPadded(t *testing.T) {
	r, _ := NewDataReader("short.csv")
	ds, err := r.Read(strings.NewReader("Age,Gender,Score\n22,M,1\n26,F\n31\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, "F", ds.Value(1, "Gender").String())
	assert.True(t, ds.Value(1, "Score").IsMissing())
	assert.True(t, ds.Value(2, "Gender").IsMissing())
	assert.True(t, ds.Value(2, "Score").IsMissing())

	_, err = r.Read(strings.NewReader("Age,Gender\n22,M\n26,F,,\n"))
	assert.NoError(t, err, "empty trailing cells are allowed")
}

func TestRead_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty file", ""},
		{"duplicate header", "Age,Age\n1,2\n"},
		{"ragged row", "Age,Gender\n22,M,extra\n"},
		{"bad quoting", "Age,Gender\n\"22,M\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := NewDataReader("bad.csv")
			_, err := r.Read(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, apperrors.CodeParseError))
			assert.Contains(t, err.Error(), "bad.csv")
		})
	}
}

func TestRead_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"tractID", "nodeID", "dki_fa"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"Left Arcuate", 0, 0.41}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]interface{}{"Left Arcuate", 1}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	r, err := NewDataReader("tracts.xlsx")
	require.NoError(t, err)
	ds, err := r.Read(buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"tractID", "nodeID", "dki_fa"}, ds.Columns())
	assert.Equal(t, 2, ds.Len())
	fa, ok := ds.Value(0, "dki_fa").Float()
	assert.True(t, ok)
	assert.InDelta(t, 0.41, fa, 1e-12)
	assert.True(t, ds.Value(1, "dki_fa").IsMissing())
}

func TestRead_InvalidWorkbook(t *testing.T) {
	r, _ := NewDataReader("broken.xlsx")
	_, err := r.Read(strings.NewReader("not a zip archive"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeParseError))
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.csv")
	require.NoError(t, os.WriteFile(path, []byte("Age,Gender\n22,M\n26,F\n"), 0o644))

	ds, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}
