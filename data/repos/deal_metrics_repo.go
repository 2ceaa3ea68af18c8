package repos

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	m "dealmetrics/data/models"
	q "dealmetrics/data/queries"
)

var dealMetricsColumns = []string{
	"run_id", "row_number", "acquirer_ticker", "target_ticker", "announcement_date",
	"deal_size_b", "previous_date", "reaction_date", "acquirer_return", "benchmark_return",
	"abnormal_return", "price_at_deal", "shares", "shares_source", "market_cap_b",
	"relative_deal_size", "error_message",
}

func (pg *Postgres) InsertDealMetrics(ctx context.Context, data []*m.DealMetrics, tx pgx.Tx) (int64, error) {
	if len(data) == 0 {
		return 0, nil
	}

	entries := make([][]any, len(data))
	for i, ent := range data {
		entries[i] = []any{
			ent.RunId, ent.RowNumber, ent.AcquirerTicker, ent.TargetTicker, ent.AnnouncementDate,
			ent.DealSizeB, ent.PreviousDate, ent.ReactionDate, ent.AcquirerReturn, ent.BenchmarkReturn,
			ent.AbnormalReturn, ent.PriceAtDeal, ent.Shares, ent.SharesSource, ent.MarketCapB,
			ent.RelativeDealSize, ent.ErrorMessage,
		}
	}

	ra, err := pg.BulkInsert(ctx, "deal_metrics", dealMetricsColumns, entries, tx)
	if err != nil {
		return 0, fmt.Errorf("error inserting deal metrics: %w", err)
	}
	return ra, nil
}

func (pg *Postgres) GetDealMetricsByRunId(ctx context.Context, runId uuid.UUID) ([]*m.DealMetrics, error) {
	sql := q.Get(q.QueryHelper.Select.DealMetricsByRunId)
	res, err := Query[m.DealMetrics](ctx, pg, sql, pgx.NamedArgs{"run_id": runId})
	if err != nil {
		return nil, fmt.Errorf("unable to query deal metrics by run (%s): %w", runId, err)
	}
	return res, nil
}
