package core

import (
	"fmt"
	"math"

	ex "dealmetrics/data/extensions"
	m "dealmetrics/data/models"
)

const returnPlaces = 4

type Returns struct {
	Acquirer  float64
	Benchmark float64
	Abnormal  float64
}

// CalculateReturns computes the day over day returns across the pair. The abnormal return is taken
// from the unrounded returns, then all three are rounded half away from zero to four places.
func CalculateReturns(pair *m.TradingDayPair) (Returns, error) {
	acquirer, err := simpleReturn(pair.AcquirerCloseToday, pair.AcquirerCloseYesterday)
	if err != nil {
		return Returns{}, fmt.Errorf("error calculating acquirer return: %w", err)
	}

	benchmark, err := simpleReturn(pair.BenchmarkCloseToday, pair.BenchmarkCloseYesterday)
	if err != nil {
		return Returns{}, fmt.Errorf("error calculating benchmark return: %w", err)
	}

	return Returns{
		Acquirer:  ex.Round(acquirer, returnPlaces),
		Benchmark: ex.Round(benchmark, returnPlaces),
		Abnormal:  ex.Round(acquirer-benchmark, returnPlaces),
	}, nil
}

func simpleReturn(today, yesterday float64) (float64, error) {
	if yesterday == 0 {
		return 0, fmt.Errorf("%w: previous close is zero", ErrDataIntegrity)
	}

	r := (today - yesterday) / yesterday
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, fmt.Errorf("%w: return is not a finite number", ErrDataIntegrity)
	}
	return r, nil
}
