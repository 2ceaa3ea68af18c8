package core

import (
	"context"
	"fmt"
	"slices"
	"time"

	ex "dealmetrics/data/extensions"
	m "dealmetrics/data/models"
)

// AlignPrices fetches the acquirer and benchmark over the window and pairs the reaction day with the trading day before it
func (sc *ServiceContext) AlignPrices(ctx context.Context, ticker string, window Window, announced time.Time) (*m.TradingDayPair, error) {
	acquirer, err := sc.fetchCloses(ctx, ticker, window)
	if err != nil {
		return nil, err
	}

	benchmark, err := sc.fetchCloses(ctx, sc.Settings.BenchmarkTicker, window)
	if err != nil {
		return nil, err
	}

	return AlignTradingDays(acquirer, benchmark, announced)
}

// AlignTradingDays finds the first acquirer bar on or after announced and its predecessor,
// then reads the benchmark closes on exactly those two dates
func AlignTradingDays(acquirer, benchmark []*m.TimeSeriesData, announced time.Time) (*m.TradingDayPair, error) {
	bars := tradingDays(acquirer)
	target := ex.DateOnly(announced)

	idx, _ := slices.BinarySearchFunc(bars, target, func(bar *m.TimeSeriesData, t time.Time) int {
		return bar.Timestamp.Compare(t)
	})

	if idx == len(bars) {
		return nil, fmt.Errorf("%w: no acquirer trading day on or after %s", ErrDataUnavailable, ex.FmtShort(target))
	}
	if idx == 0 {
		return nil, fmt.Errorf("%w: no acquirer trading day before %s", ErrDataUnavailable, ex.FmtShort(bars[idx].Timestamp))
	}

	today, yesterday := bars[idx], bars[idx-1]

	benchmarkCloses := make(map[time.Time]float64, len(benchmark))
	for _, bar := range tradingDays(benchmark) {
		benchmarkCloses[bar.Timestamp] = bar.Close.Float64
	}

	benchmarkToday, ok := benchmarkCloses[today.Timestamp]
	if !ok {
		return nil, fmt.Errorf("%w: no benchmark close on reaction day %s", ErrDataUnavailable, ex.FmtShort(today.Timestamp))
	}
	benchmarkYesterday, ok := benchmarkCloses[yesterday.Timestamp]
	if !ok {
		return nil, fmt.Errorf("%w: no benchmark close on previous day %s", ErrDataUnavailable, ex.FmtShort(yesterday.Timestamp))
	}

	return &m.TradingDayPair{
		PreviousDate:            yesterday.Timestamp,
		ReactionDate:            today.Timestamp,
		AcquirerCloseToday:      today.Close.Float64,
		AcquirerCloseYesterday:  yesterday.Close.Float64,
		BenchmarkCloseToday:     benchmarkToday,
		BenchmarkCloseYesterday: benchmarkYesterday,
	}, nil
}

func (sc *ServiceContext) fetchCloses(ctx context.Context, ticker string, window Window) ([]*m.TimeSeriesData, error) {
	res, err := sc.Provider.GetDailyPrices(ctx, ticker, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("%w: error fetching prices for %s: %w", ErrDataUnavailable, ticker, err)
	}
	if res == nil {
		return nil, fmt.Errorf("%w: no prices for %s", ErrDataUnavailable, ticker)
	}
	return res.TimeSeries, nil
}

// tradingDays keeps bars with a usable close, date normalised and sorted oldest first
func tradingDays(series []*m.TimeSeriesData) []*m.TimeSeriesData {
	res := make([]*m.TimeSeriesData, 0, len(series))
	for _, bar := range series {
		if bar == nil || !ex.IsUsable(bar.Close) {
			continue
		}
		normalised := *bar
		normalised.Timestamp = ex.DateOnly(bar.Timestamp)
		res = append(res, &normalised)
	}

	slices.SortStableFunc(res, func(a, b *m.TimeSeriesData) int { return a.Timestamp.Compare(b.Timestamp) })
	return res
}
