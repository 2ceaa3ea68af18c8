package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

const byteOrderMark = "\ufeff"

func readCsv(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening table %s: %w", path, err)
	}
	defer f.Close()

	return ReadCsv(f)
}

func ReadCsv(reader io.Reader) (*Table, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1 // ragged rows are padded by RowValues

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("error reading csv: no header row")
	}

	// spreadsheets saved as csv lead with a byte order mark
	records[0][0] = strings.TrimPrefix(records[0][0], byteOrderMark)

	return newTable(records[0], records[1:])
}

func writeCsv(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating table %s: %w", path, err)
	}

	if err := WriteCsv(f, t); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func WriteCsv(writer io.Writer, t *Table) error {
	w := csv.NewWriter(writer)
	if err := w.Write(t.Header); err != nil {
		return fmt.Errorf("error writing csv header: %w", err)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("error writing csv rows: %w", err)
	}
	return nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if v != "" {
			return false
		}
	}
	return true
}
