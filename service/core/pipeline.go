package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/guregu/null/v6"
	"github.com/phuslu/log"
	"golang.org/x/sync/errgroup"

	ex "dealmetrics/data/extensions"
	m "dealmetrics/data/models"
	tbl "dealmetrics/data/table"
)

// Run parses the deals out of t, computes every deal's metrics and returns the enriched table.
// The error is only set when the table itself is unusable.
func (sc *ServiceContext) Run(t *tbl.Table) (*tbl.Table, []*m.DealResult, error) {
	results, err := ParseDeals(t)
	if err != nil {
		return nil, nil, err
	}

	log.Info().Int("deals", len(results)).Str("benchmark", sc.Settings.BenchmarkTicker).Int("workers", sc.workers()).Msg("processing deals")
	sc.ProcessDeals(results)

	enriched, err := tbl.Enrich(t, results)
	if err != nil {
		return nil, results, err
	}
	return enriched, results, nil
}

// ProcessDeals fills in every pending result in place. Deals run one at a time unless more than one
// worker is configured; a failed deal never stops its siblings and results keep their input order.
func (sc *ServiceContext) ProcessDeals(results []*m.DealResult) {
	total := len(results)

	if sc.workers() == 1 {
		for i, res := range results {
			sc.processDeal(sc.Context, i+1, total, res)
		}
		return
	}

	g, ctx := errgroup.WithContext(sc.Context)
	g.SetLimit(sc.workers())
	for i, res := range results {
		g.Go(func() error {
			sc.processDeal(ctx, i+1, total, res)
			return nil
		})
	}
	_ = g.Wait()
}

func (sc *ServiceContext) processDeal(ctx context.Context, position, total int, res *m.DealResult) {
	if res.Err == nil {
		if err := ctx.Err(); err != nil {
			res.Err = fmt.Errorf("deal not processed: %w", err)
		} else {
			*res = *sc.ComputeDealMetrics(ctx, res.Deal)
		}
	}
	logDeal(position, total, res)
}

// ComputeDealMetrics runs the return branch and the market cap branch independently. Whatever
// either branch produced is kept; any failure marks the whole deal as failed.
func (sc *ServiceContext) ComputeDealMetrics(ctx context.Context, deal m.DealRecord) *m.DealResult {
	res := &m.DealResult{Deal: deal}
	window := BuildWindow(deal.AnnouncementDate)

	returnsErr := func() error {
		pair, err := sc.AlignPrices(ctx, deal.AcquirerTicker, window, deal.AnnouncementDate)
		if err != nil {
			return err
		}
		res.PreviousDate = null.TimeFrom(pair.PreviousDate)
		res.ReactionDate = null.TimeFrom(pair.ReactionDate)

		r, err := CalculateReturns(pair)
		if err != nil {
			return err
		}
		res.Metrics.AcquirerReturn = null.FloatFrom(r.Acquirer)
		res.Metrics.BenchmarkReturn = null.FloatFrom(r.Benchmark)
		res.Metrics.AbnormalReturn = null.FloatFrom(r.Abnormal)
		return nil
	}()

	marketCapErr := func() error {
		estimate, err := sc.EstimateMarketCap(ctx, deal)
		if err != nil {
			return err
		}
		res.PriceAtDeal = null.FloatFrom(estimate.PriceAtDeal)
		res.Shares = null.FloatFrom(estimate.Shares)
		res.SharesSource = null.StringFrom(estimate.SharesSource)
		res.Metrics.MarketCapB = null.FloatFrom(estimate.MarketCapB)
		res.Metrics.RelativeDealSize = null.FloatFrom(estimate.RelativeDealSize)
		return nil
	}()

	if returnsErr != nil {
		returnsErr = fmt.Errorf("returns: %w", returnsErr)
	}
	if marketCapErr != nil {
		marketCapErr = fmt.Errorf("market cap: %w", marketCapErr)
	}
	res.Err = errors.Join(returnsErr, marketCapErr)

	return res
}

func (sc *ServiceContext) workers() int {
	return max(sc.Settings.Workers, 1)
}

func logDeal(position, total int, res *m.DealResult) {
	deal := res.Deal
	if res.Succeeded() {
		log.Info().
			Str("deal", fmt.Sprintf("%d/%d", position, total)).
			Str("acquirer", deal.AcquirerTicker).
			Str("target", deal.TargetTicker).
			Str("announced", ex.FmtShort(deal.AnnouncementDate)).
			Float64("acquirer_return", res.Metrics.AcquirerReturn.Float64).
			Float64("benchmark_return", res.Metrics.BenchmarkReturn.Float64).
			Float64("abnormal_return", res.Metrics.AbnormalReturn.Float64).
			Str("market_cap_b", fmt.Sprintf("%.2f", res.Metrics.MarketCapB.Float64)).
			Str("relative_size", fmt.Sprintf("%.3f", res.Metrics.RelativeDealSize.Float64)).
			Msg("deal processed")
		return
	}

	log.Warn().
		Str("deal", fmt.Sprintf("%d/%d", position, total)).
		Str("acquirer", deal.AcquirerTicker).
		Str("target", deal.TargetTicker).
		Str("announced", ex.FmtShort(deal.AnnouncementDate)).
		Str("reason", res.ErrorMessage()).
		Msg("deal failed")
}
