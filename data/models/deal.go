package models

import (
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// input columns
const (
	ColumnAcquirerTicker   = "Acquirer_Ticker"
	ColumnTargetTicker     = "Target_Ticker"
	ColumnAnnouncementDate = "Announcement_Date"
	ColumnDealSize         = "Deal_Size_B"
)

// appended output columns, in output order
const (
	ColumnAcquirerReturn   = "Acquirer_Return"
	ColumnBenchmarkReturn  = "SP500_Return"
	ColumnAbnormalReturn   = "True_Adjusted_Return"
	ColumnMarketCap        = "Acquirer_Market_Cap_B"
	ColumnRelativeDealSize = "Relative_Deal_Size"
	ColumnError            = "Error"
)

var (
	InputColumns  = []string{ColumnAcquirerTicker, ColumnTargetTicker, ColumnAnnouncementDate, ColumnDealSize}
	OutputColumns = []string{ColumnAcquirerReturn, ColumnBenchmarkReturn, ColumnAbnormalReturn, ColumnMarketCap, ColumnRelativeDealSize, ColumnError}
)

type DealRecord struct {
	Row              int
	AcquirerTicker   string `validate:"required"`
	TargetTicker     string
	AnnouncementDate time.Time `validate:"required"`
	DealSizeB        float64   `validate:"gte=0"`
}

// MetricBundle holds the derived metrics for a deal, returns are rounded to 4 places
type MetricBundle struct {
	AcquirerReturn   null.Float
	BenchmarkReturn  null.Float
	AbnormalReturn   null.Float
	MarketCapB       null.Float
	RelativeDealSize null.Float
}

// TradingDayPair is the reaction day and the trading day before it, with the four closes used
type TradingDayPair struct {
	PreviousDate            time.Time
	ReactionDate            time.Time
	AcquirerCloseToday      float64
	AcquirerCloseYesterday  float64
	BenchmarkCloseToday     float64
	BenchmarkCloseYesterday float64
}

type DealResult struct {
	Deal         DealRecord
	Metrics      MetricBundle
	PreviousDate null.Time
	ReactionDate null.Time
	PriceAtDeal  null.Float
	Shares       null.Float
	SharesSource null.String
	Err          error
}

func (dr *DealResult) Succeeded() bool {
	return dr.Err == nil
}

// ErrorMessage is empty for a successful deal, joined errors are flattened onto one line
func (dr *DealResult) ErrorMessage() string {
	if dr.Err == nil {
		return ""
	}
	return strings.ReplaceAll(dr.Err.Error(), "\n", "; ")
}
