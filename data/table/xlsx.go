package table

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

func readXlsx(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("error reading spreadsheet %s: no sheets", path)
	}

	// deals are read from the first sheet only
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading rows from sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("error reading spreadsheet %s: no header row", path)
	}

	return newTable(rows[0], rows[1:])
}

func writeXlsx(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := setRow(f, sheet, 1, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("error saving spreadsheet %s: %w", path, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, rowNumber int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNumber)
	if err != nil {
		return fmt.Errorf("error resolving cell for row %d: %w", rowNumber, err)
	}

	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("error writing row %d: %w", rowNumber, err)
	}
	return nil
}
