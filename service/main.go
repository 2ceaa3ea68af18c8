package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/phuslu/log"

	r "dealmetrics/data/repos"
	tbl "dealmetrics/data/table"
	av "dealmetrics/service/api/alpha_vantage"
	y "dealmetrics/service/api/yahoo"
	cfg "dealmetrics/service/config"
	c "dealmetrics/service/core"
	sm "dealmetrics/service/models"
)

func main() {
	os.Exit(run())
}

func run() int {
	// initialize context and signal handler, listen for interrupt and term signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// load in environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Info().Err(err).Msg(".env not loaded")
	}

	config, err := cfg.Load()
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return sm.ExitStartup
	}

	log.DefaultLogger = log.Logger{
		Level:      log.ParseLevel(config.LogLevel),
		TimeFormat: "15:04:05",
		Writer: &log.ConsoleWriter{
			ColorOutput:    true,
			EndWithMessage: true,
		},
	}

	started := time.Now()
	runId := uuid.New()

	sc := c.ServiceContext{
		Context:  ctx,
		Provider: getProvider(config),
		Settings: c.Settings{
			InputPath:       config.InputPath,
			BenchmarkTicker: config.BenchmarkTicker,
			Workers:         config.Workers,
		},
	}

	// persistence is optional, only connect when a database is configured
	if config.PersistenceEnabled() {
		postgresConnection, err := r.GetPostgresConnection(ctx, config.DatabaseUrl)
		if err != nil {
			log.Error().Err(err).Msg("failed to connect to database")
			return sm.ExitStartup
		}
		defer postgresConnection.Close()
		sc.Store = postgresConnection
	}

	log.Info().Str("run_id", runId.String()).Str("provider", sc.Provider.Name()).Str("input", config.InputPath).Msg("starting run")

	input, err := tbl.Read(config.InputPath)
	if err != nil {
		log.Error().Err(err).Str("input", config.InputPath).Msg("failed to read input table")
		return sm.ExitStartup
	}

	output, results, err := sc.Run(input)
	if err != nil {
		log.Error().Err(err).Str("input", config.InputPath).Msg("failed to process input table")
		return sm.ExitStartup
	}

	// the table is written even when interrupted, unprocessed deals carry the reason
	if err := tbl.Write(config.OutputPath, output); err != nil {
		log.Error().Err(err).Str("output", config.OutputPath).Msg("failed to write output table")
		return sm.ExitStartup
	}
	log.Info().Str("output", config.OutputPath).Int("rows", len(output.Rows)).Msg("output written")

	summary := sc.SummariseRun(runId, started, results)
	logSummary(summary)

	if err := sc.PersistRun(summary, results); err != nil {
		log.Error().Err(err).Msg("failed to persist run")
		return sm.ExitStartup
	}

	if ctx.Err() != nil {
		log.Warn().Msg("run interrupted")
	}

	return summary.ExitCode()
}

func getProvider(config *cfg.Config) c.MarketDataProvider {
	switch config.Provider {
	case cfg.ProviderAlphaVantage:
		return av.GetClient(config.AlphaVantageKey, config.RequestTimeout, config.RequestsPerSecond)
	default:
		return y.GetClient(config.RequestTimeout, config.RequestsPerSecond)
	}
}

func logSummary(summary *sm.RunSummary) {
	stats := summary.Statistics
	entry := log.Info().
		Str("run_id", summary.RunId.String()).
		Int("total", summary.TotalDeals).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Dur("time", summary.Duration())

	if stats.MeanAbnormalReturn.Valid {
		entry = entry.
			Int("observations", stats.Observations).
			Float64("mean_abnormal_return", stats.MeanAbnormalReturn.Float64).
			Float64("median_abnormal_return", stats.MedianAbnormalReturn.Float64).
			Float64("std_dev_abnormal_return", stats.StdDevAbnormalReturn.Float64).
			Float64("mean_relative_size", stats.MeanRelativeDealSize.Float64)
	}
	if stats.TStatistic.Valid {
		entry = entry.Float64("t_statistic", stats.TStatistic.Float64)
	}

	entry.Msg("run complete")
}
