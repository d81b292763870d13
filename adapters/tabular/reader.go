// Package tabular reads uploaded CSV and XLSX files into datasets.
package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"hcpdash/domain/dataset"
	apperrors "hcpdash/internal/errors"
)

// File types the reader understands
const (
	TypeCSV  = "csv"
	TypeXLSX = "xlsx"
)

// DataReader parses one uploaded file. The type is chosen from the file extension.
type DataReader struct {
	name     string
	fileType string
}

// NewDataReader creates a reader for a file called name
func NewDataReader(name string) (*DataReader, error) {
	fileType, ok := FileType(name)
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unsupported file type %q: expected .csv or .xlsx", filepath.Ext(name)))
	}
	return &DataReader{name: name, fileType: fileType}, nil
}

// FileType maps a file name to TypeCSV or TypeXLSX
func FileType(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return TypeCSV, true
	case ".xlsx":
		return TypeXLSX, true
	default:
		return "", false
	}
}

// ReadFile opens path and parses it
func ReadFile(path string) (*dataset.Dataset, error) {
	r, err := NewDataReader(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return r.Read(f)
}

// Read parses the whole of src. Any malformed input yields a PARSE_ERROR.
func (r *DataReader) Read(src io.Reader) (*dataset.Dataset, error) {
	start := time.Now()

	var (
		rows [][]string
		err  error
	)
	switch r.fileType {
	case TypeCSV:
		rows, err = readCSV(src)
	case TypeXLSX:
		rows, err = readXLSX(src)
	}
	if err != nil {
		return nil, apperrors.ParseError(r.name, err)
	}

	ds, err := r.build(rows)
	if err != nil {
		return nil, apperrors.ParseError(r.name, err)
	}

	log.Printf("[DataReader] %s parsed in %.2fms (%d columns, %d rows)",
		r.name, float64(time.Since(start).Nanoseconds())/1e6, len(ds.Columns()), ds.Len())
	return ds, nil
}

func readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true
	// row width is checked against the header in build
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	return rows, nil
}

// readXLSX reads the first sheet of a workbook
func readXLSX(src io.Reader) ([][]string, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("invalid workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	// excelize drops trailing empty cells; blank rows are skipped like blank CSV lines
	out := rows[:0]
	for _, row := range rows {
		if !blank(row) {
			out = append(out, row)
		}
	}
	return out, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// build turns a header row plus data rows into a dataset. Short rows are padded with
// missing cells; a non-empty cell beyond the header is an error.
func (r *DataReader) build(rows [][]string) (*dataset.Dataset, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("file is empty")
	}

	headers := make([]string, len(rows[0]))
	for j, h := range rows[0] {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if h == "" {
			h = fmt.Sprintf("Unnamed: %d", j)
		}
		headers[j] = h
	}

	values := make([][]dataset.Value, 0, len(rows)-1)
	for i, row := range rows[1:] {
		cells := make([]dataset.Value, len(headers))
		for j, cell := range row {
			if j >= len(headers) {
				if strings.TrimSpace(cell) != "" {
					return nil, fmt.Errorf("row %d has more cells than the header", i+2)
				}
				continue
			}
			cells[j] = dataset.Parse(cell)
		}
		values = append(values, cells)
	}

	return dataset.New(r.name, headers, values)
}
