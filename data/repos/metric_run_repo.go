package repos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	m "dealmetrics/data/models"
	q "dealmetrics/data/queries"
)

func (pg *Postgres) InsertMetricRun(ctx context.Context, run *m.MetricRun, tx pgx.Tx) error {
	sql := q.Get(q.QueryHelper.Insert.MetricRun)
	args := pgx.NamedArgs{
		"run_id":           run.RunId,
		"input_path":       run.InputPath,
		"provider":         run.Provider,
		"benchmark_ticker": run.BenchmarkTicker,
		"total_deals":      run.TotalDeals,
		"started_at":       run.StartedAt,
	}

	var err error
	if tx == nil {
		err = pg.db.QueryRow(ctx, sql, args).Scan(&run.Id)
	} else {
		err = tx.QueryRow(ctx, sql, args).Scan(&run.Id)
	}

	if err != nil {
		return fmt.Errorf("error inserting metric run %s: %w", run.RunId, err)
	}

	return nil
}

func (pg *Postgres) UpdateMetricRunCompletion(ctx context.Context, id int32, succeeded, failed int32, finishedAt time.Time, tx pgx.Tx) (err error) {
	sql := q.Get(q.QueryHelper.Update.MetricRunCompletion)
	args := pgx.NamedArgs{
		"id":          id,
		"succeeded":   succeeded,
		"failed":      failed,
		"finished_at": finishedAt,
	}

	if tx == nil {
		_, err = pg.db.Exec(ctx, sql, args)
	} else {
		_, err = tx.Exec(ctx, sql, args)
	}

	if err != nil {
		return fmt.Errorf("error updating metric run %d: %w", id, err)
	}
	return nil
}

func (pg *Postgres) GetMetricRunByRunId(ctx context.Context, runId uuid.UUID) (*m.MetricRun, error) {
	sql := q.Get(q.QueryHelper.Select.MetricRunByRunId)
	res, err := QuerySingle[m.MetricRun](ctx, pg, sql, pgx.NamedArgs{"run_id": runId})
	if err != nil {
		return nil, fmt.Errorf("unable to get metric run %s: %w", runId, err)
	}
	return res, nil
}

func (pg *Postgres) DeleteMetricRun(ctx context.Context, runId uuid.UUID) error {
	sql := q.Get(q.QueryHelper.Delete.MetricRun)
	if _, err := pg.db.Exec(ctx, sql, pgx.NamedArgs{"run_id": runId}); err != nil {
		return fmt.Errorf("error deleting metric run %s: %w", runId, err)
	}
	return nil
}

// SaveMetricRun writes the run header, every deal's metrics and the completion counts in one transaction
func (pg *Postgres) SaveMetricRun(ctx context.Context, run *m.MetricRun, results []*m.DealResult) error {
	tx, err := pg.GetTransaction(ctx)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) // this will kick off if we return before committing

	if err := pg.InsertMetricRun(ctx, run, tx); err != nil {
		return err
	}

	rows := make([]*m.DealMetrics, len(results))
	for i, res := range results {
		dm := m.MapDealResultToDealMetrics(run.Id, res)
		rows[i] = &dm
	}

	if _, err := pg.InsertDealMetrics(ctx, rows, tx); err != nil {
		return err
	}

	finishedAt := time.Now()
	if run.FinishedAt.Valid {
		finishedAt = run.FinishedAt.Time
	}

	if err := pg.UpdateMetricRunCompletion(ctx, run.Id, run.Succeeded, run.Failed, finishedAt, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("error committing transaction for metric run %s: %w", run.RunId, err)
	}

	return nil
}
