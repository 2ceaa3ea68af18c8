package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/guregu/null/v6"

	ex "dealmetrics/data/extensions"
	m "dealmetrics/data/models"
)

const testBenchmark = "^GSPC"

type fakeProvider struct {
	mu         sync.Mutex
	prices     map[string][]*m.TimeSeriesData
	statements map[string][]*m.FinancialStatement
	shares     map[string][]*m.SharesOutstanding
	errs       map[string]error // keyed by ticker, fails every call for it
	calls      int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		prices:     map[string][]*m.TimeSeriesData{},
		statements: map[string][]*m.FinancialStatement{},
		shares:     map[string][]*m.SharesOutstanding{},
		errs:       map[string]error{},
	}
}

func (f *fakeProvider) Name() string {
	return "fake"
}

func (f *fakeProvider) GetDailyPrices(ctx context.Context, ticker string, start, end time.Time) (*m.TimeSeriesResult, error) {
	if err := f.begin(ctx, ticker); err != nil {
		return nil, err
	}

	in := func(d *m.TimeSeriesData) bool { return !d.Timestamp.Before(start) && d.Timestamp.Before(end) }
	return &m.TimeSeriesResult{
		Metadata:   &m.TimeSeriesMetadata{Symbol: ticker, TimeZone: "UTC"},
		TimeSeries: ex.FilterMultiplePtr(f.prices[ticker], in),
	}, nil
}

func (f *fakeProvider) GetQuarterlyStatements(ctx context.Context, ticker string) ([]*m.FinancialStatement, error) {
	if err := f.begin(ctx, ticker); err != nil {
		return nil, err
	}
	return f.statements[ticker], nil
}

func (f *fakeProvider) GetSharesOutstanding(ctx context.Context, ticker string, start time.Time) ([]*m.SharesOutstanding, error) {
	if err := f.begin(ctx, ticker); err != nil {
		return nil, err
	}
	return ex.FilterMultiplePtr(f.shares[ticker], func(s *m.SharesOutstanding) bool { return !s.Date.Before(start) }), nil
}

func (f *fakeProvider) begin(ctx context.Context, ticker string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if err := ctx.Err(); err != nil {
		return err
	}
	if err, ok := f.errs[ticker]; ok {
		return err
	}
	return nil
}

// closes adds daily bars as date/close pairs
func (f *fakeProvider) closes(ticker string, pairs ...any) *fakeProvider {
	for i := 0; i+1 < len(pairs); i += 2 {
		bar := &m.TimeSeriesData{Timestamp: date(pairs[i].(string))}
		switch v := pairs[i+1].(type) {
		case float64:
			bar.Close = null.FloatFrom(v)
		case int:
			bar.Close = null.FloatFrom(float64(v))
		case nil:
		default:
			panic(fmt.Sprintf("unsupported close %T", v))
		}
		f.prices[ticker] = append(f.prices[ticker], bar)
	}
	return f
}

func (f *fakeProvider) statement(ticker, day string, fields map[string]null.Float) *fakeProvider {
	f.statements[ticker] = append(f.statements[ticker], &m.FinancialStatement{Date: date(day), Fields: fields})
	return f
}

func (f *fakeProvider) sharesHistory(ticker, day string, shares float64) *fakeProvider {
	f.shares[ticker] = append(f.shares[ticker], &m.SharesOutstanding{Date: date(day), Shares: null.FloatFrom(shares)})
	return f
}

func newTestContext(ctx context.Context, provider MarketDataProvider) *ServiceContext {
	return &ServiceContext{
		Context:  ctx,
		Provider: provider,
		Settings: Settings{
			InputPath:       "data/acquisitions_raw.csv",
			BenchmarkTicker: testBenchmark,
			Workers:         1,
		},
	}
}

func date(s string) time.Time {
	d, err := ex.ParseDateOnly(s)
	if err != nil {
		panic(err)
	}
	return d
}

func basicShares(v float64) map[string]null.Float {
	return map[string]null.Float{"BasicAverageShares": null.FloatFrom(v)}
}

// aaplProvider is the 2023-06-01 announcement with a full set of market data
func aaplProvider() *fakeProvider {
	return newFakeProvider().
		closes("AAPL", "2023-05-30", 149.0, "2023-05-31", 150.0, "2023-06-01", 153.0, "2023-06-02", 154.0).
		closes(testBenchmark, "2023-05-30", 4190.0, "2023-05-31", 4200.0, "2023-06-01", 4179.0, "2023-06-02", 4220.0).
		statement("AAPL", "2023-04-01", basicShares(15_700_000_000)).
		sharesHistory("AAPL", "2023-06-05", 15_600_000_000)
}
