package core

import (
	"context"
	"time"

	m "dealmetrics/data/models"
)

// MarketDataProvider is everything the pipeline needs from a price and fundamentals source.
// Implementations hold no per deal state and every call is safe to repeat.
type MarketDataProvider interface {
	Name() string

	// GetDailyPrices returns date only bars in [start, end), oldest first
	GetDailyPrices(ctx context.Context, ticker string, start, end time.Time) (*m.TimeSeriesResult, error)

	// GetQuarterlyStatements returns income statement columns keyed by statement date
	GetQuarterlyStatements(ctx context.Context, ticker string) ([]*m.FinancialStatement, error)

	// GetSharesOutstanding returns the shares outstanding history on or after start, oldest first
	GetSharesOutstanding(ctx context.Context, ticker string, start time.Time) ([]*m.SharesOutstanding, error)
}

// ResultStore persists a finished run
type ResultStore interface {
	SaveMetricRun(ctx context.Context, run *m.MetricRun, results []*m.DealResult) error
}
