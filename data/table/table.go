package table

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/guregu/null/v6"

	m "dealmetrics/data/models"
)

// Table is a header plus raw string rows. Cells are kept exactly as read so
// writing a table back preserves every input column untouched.
type Table struct {
	Header []string
	Rows   [][]string
}

// Read loads a table by file extension, .xlsx through excelize, everything else as csv
func Read(path string) (*Table, error) {
	if isSpreadsheet(path) {
		return readXlsx(path)
	}
	return readCsv(path)
}

// Write saves a table by file extension, creating the parent directory when needed
func Write(path string, t *Table) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating output directory %s: %w", dir, err)
		}
	}

	if isSpreadsheet(path) {
		return writeXlsx(path, t)
	}
	return writeCsv(path, t)
}

// newTable drops blank rows and trailing empty cells past the header. A row with a value
// past the header has no column to keep it in and fails the read.
func newTable(header []string, records [][]string) (*Table, error) {
	t := &Table{Header: header}
	for i, rec := range records {
		if isBlank(rec) {
			continue
		}
		if len(rec) > len(header) {
			if !isBlank(rec[len(header):]) {
				return nil, fmt.Errorf("error reading table, row %d has %d cells but the header has %d", i+2, len(rec), len(header))
			}
			rec = rec[:len(header)]
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func (t *Table) ColumnIndex(column string) int {
	return slices.IndexFunc(t.Header, func(h string) bool { return strings.TrimSpace(h) == column })
}

// RequireColumns fails when any of the columns is absent from the header
func (t *Table) RequireColumns(columns ...string) error {
	var missing []string
	for _, c := range columns {
		if t.ColumnIndex(c) < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("table is missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// RowValues maps column name to cell for one row, short rows read as empty cells
func (t *Table) RowValues(row int) map[string]string {
	res := make(map[string]string, len(t.Header))
	for i, h := range t.Header {
		v := ""
		if i < len(t.Rows[row]) {
			v = t.Rows[row][i]
		}
		res[strings.TrimSpace(h)] = v
	}
	return res
}

// Enrich returns a new table with the output metric columns appended, results are matched to rows by position
func Enrich(t *Table, results []*m.DealResult) (*Table, error) {
	if len(results) != len(t.Rows) {
		return nil, fmt.Errorf("error enriching table, %d rows but %d results", len(t.Rows), len(results))
	}

	header := make([]string, 0, len(t.Header)+len(m.OutputColumns))
	header = append(header, t.Header...)
	header = append(header, m.OutputColumns...)

	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		out := make([]string, len(t.Header), len(header))
		copy(out, row)

		res := results[i]
		out = append(out,
			FormatFloat(res.Metrics.AcquirerReturn),
			FormatFloat(res.Metrics.BenchmarkReturn),
			FormatFloat(res.Metrics.AbnormalReturn),
			FormatFloat(res.Metrics.MarketCapB),
			FormatFloat(res.Metrics.RelativeDealSize),
			res.ErrorMessage(),
		)
		rows[i] = out
	}

	return &Table{Header: header, Rows: rows}, nil
}

// FormatFloat writes the shortest representation that round trips, empty for a missing value
func FormatFloat(v null.Float) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatFloat(v.Float64, 'f', -1, 64)
}

func isSpreadsheet(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}
