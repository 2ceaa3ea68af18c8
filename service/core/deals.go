package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	ex "dealmetrics/data/extensions"
	m "dealmetrics/data/models"
	tbl "dealmetrics/data/table"
)

var validate = validator.New()

// ParseDeals turns every table row into a pending result. Only a missing column fails the batch,
// a bad row is recorded on its own result.
func ParseDeals(t *tbl.Table) ([]*m.DealResult, error) {
	if err := t.RequireColumns(m.InputColumns...); err != nil {
		return nil, err
	}

	results := make([]*m.DealResult, len(t.Rows))
	for i := range t.Rows {
		deal, err := ParseDeal(i+1, t.RowValues(i))
		results[i] = &m.DealResult{Deal: deal, Err: err}
	}
	return results, nil
}

// ParseDeal reads the deal columns by name, other columns are ignored
func ParseDeal(row int, values map[string]string) (m.DealRecord, error) {
	deal := m.DealRecord{
		Row:            row,
		AcquirerTicker: normaliseTicker(values[m.ColumnAcquirerTicker]),
		TargetTicker:   normaliseTicker(values[m.ColumnTargetTicker]),
	}

	announced, err := ex.ParseDateOnly(values[m.ColumnAnnouncementDate])
	if err != nil {
		return deal, fmt.Errorf("%w: row %d: %w", ErrDataIntegrity, row, err)
	}
	deal.AnnouncementDate = announced

	size, err := strconv.ParseFloat(strings.TrimSpace(values[m.ColumnDealSize]), 64)
	if err != nil {
		return deal, fmt.Errorf("%w: row %d: error parsing deal size %q", ErrDataIntegrity, row, values[m.ColumnDealSize])
	}
	if math.IsInf(size, 0) || math.IsNaN(size) {
		return deal, fmt.Errorf("%w: row %d: deal size %q is not a finite number", ErrDataIntegrity, row, values[m.ColumnDealSize])
	}
	deal.DealSizeB = size

	if err := validate.Struct(deal); err != nil {
		return deal, fmt.Errorf("%w: row %d: %w", ErrDataIntegrity, row, err)
	}

	return deal, nil
}

func normaliseTicker(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
