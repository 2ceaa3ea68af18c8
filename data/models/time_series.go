package models

import (
	"time"

	"github.com/guregu/null/v6"
)

// TimeSeriesResult is one ticker's daily history over a requested window.
// Providers return it sorted by Timestamp ascending with date only timestamps.
type TimeSeriesResult struct {
	Metadata   *TimeSeriesMetadata
	TimeSeries []*TimeSeriesData
}

type TimeSeriesMetadata struct {
	Symbol        string
	LastRefreshed time.Time
	TimeZone      string
}

type TimeSeriesData struct {
	Timestamp time.Time
	TimeSeriesOHLCV
}

// TimeSeriesOHLCV values are nullable, feeds publish gaps as null or "None"
type TimeSeriesOHLCV struct {
	Open   null.Float
	High   null.Float
	Low    null.Float
	Close  null.Float
	Volume null.Float
}

// FinancialStatement is one quarterly statement column, line items keyed by their reported name
type FinancialStatement struct {
	Date   time.Time
	Fields map[string]null.Float
}

// Field reports the value and whether the line item exists on the statement at all
func (fs *FinancialStatement) Field(name string) (null.Float, bool) {
	v, ok := fs.Fields[name]
	return v, ok
}

type SharesOutstanding struct {
	Date   time.Time
	Shares null.Float
}
