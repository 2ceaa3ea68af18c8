package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"

	dm "dealmetrics/data/models"
)

const (
	ExitOk          = 0
	ExitDealsFailed = 1
	ExitStartup     = 2
)

type RunSummary struct {
	RunId           uuid.UUID     `json:"runId"`
	InputPath       string        `json:"inputPath"`
	Provider        string        `json:"provider"`
	BenchmarkTicker string        `json:"benchmarkTicker"`
	TotalDeals      int           `json:"totalDeals"`
	Succeeded       int           `json:"succeeded"`
	Failed          int           `json:"failed"`
	StartedAt       time.Time     `json:"startedAt"`
	FinishedAt      time.Time     `json:"finishedAt"`
	Statistics      RunStatistics `json:"statistics"`
}

// RunStatistics are taken over succeeded deals only, every figure is null below two observations
type RunStatistics struct {
	Observations         int        `json:"observations"`
	MeanAbnormalReturn   null.Float `json:"meanAbnormalReturn"`
	MedianAbnormalReturn null.Float `json:"medianAbnormalReturn"`
	StdDevAbnormalReturn null.Float `json:"stdDevAbnormalReturn"`
	TStatistic           null.Float `json:"tStatistic"`
	MeanRelativeDealSize null.Float `json:"meanRelativeDealSize"`
}

func (rs *RunSummary) Duration() time.Duration {
	return rs.FinishedAt.Sub(rs.StartedAt)
}

func (rs *RunSummary) ExitCode() int {
	if rs.Failed > 0 {
		return ExitDealsFailed
	}
	return ExitOk
}

func MapRunSummaryToMetricRun(rs *RunSummary) dm.MetricRun {
	return dm.MetricRun{
		RunId:           rs.RunId,
		InputPath:       rs.InputPath,
		Provider:        rs.Provider,
		BenchmarkTicker: rs.BenchmarkTicker,
		TotalDeals:      int32(rs.TotalDeals),
		Succeeded:       int32(rs.Succeeded),
		Failed:          int32(rs.Failed),
		StartedAt:       rs.StartedAt,
		FinishedAt:      null.TimeFrom(rs.FinishedAt),
	}
}
