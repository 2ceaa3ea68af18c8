package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/phuslu/log"

	m "dealmetrics/data/models"
	sm "dealmetrics/service/models"
)

// persistence still runs after an interrupt, bounded by this
const persistTimeout = 30 * time.Second

// SummariseRun counts the results and attaches the run statistics
func (sc *ServiceContext) SummariseRun(runId uuid.UUID, startedAt time.Time, results []*m.DealResult) *sm.RunSummary {
	rs := &sm.RunSummary{
		RunId:           runId,
		InputPath:       sc.Settings.InputPath,
		Provider:        sc.Provider.Name(),
		BenchmarkTicker: sc.Settings.BenchmarkTicker,
		TotalDeals:      len(results),
		StartedAt:       startedAt,
		FinishedAt:      time.Now(),
		Statistics:      GetRunStatistics(results),
	}

	for _, res := range results {
		if res.Succeeded() {
			rs.Succeeded++
		} else {
			rs.Failed++
		}
	}

	return rs
}

// PersistRun saves the run and every deal's metrics, a no op without a store
func (sc *ServiceContext) PersistRun(summary *sm.RunSummary, results []*m.DealResult) error {
	if sc.Store == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(sc.Context), persistTimeout)
	defer cancel()

	start := time.Now()
	run := sm.MapRunSummaryToMetricRun(summary)
	if err := sc.Store.SaveMetricRun(ctx, &run, results); err != nil {
		return fmt.Errorf("error persisting run %s: %w", summary.RunId, err)
	}

	log.Info().Str("run_id", summary.RunId.String()).Int32("id", run.Id).Int("deals", len(results)).Dur("time", time.Since(start)).Msg("run persisted")
	return nil
}
