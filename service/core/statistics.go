package core

import (
	"math"
	"slices"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"

	ex "dealmetrics/data/extensions"
	m "dealmetrics/data/models"
	sm "dealmetrics/service/models"
)

const minObservations = 2

// GetRunStatistics summarises the abnormal returns and relative deal sizes of the succeeded deals
func GetRunStatistics(results []*m.DealResult) sm.RunStatistics {
	var abnormal, relative []null.Float
	for _, res := range results {
		if !res.Succeeded() {
			continue
		}
		abnormal = append(abnormal, res.Metrics.AbnormalReturn)
		relative = append(relative, res.Metrics.RelativeDealSize)
	}

	returns := ex.Values(abnormal)
	sizes := ex.Values(relative)

	rs := sm.RunStatistics{Observations: len(returns)}
	if len(returns) < minObservations {
		return rs
	}

	mean, stdDev := stat.MeanStdDev(returns, nil)
	rs.MeanAbnormalReturn = null.FloatFrom(mean)
	rs.StdDevAbnormalReturn = null.FloatFrom(stdDev)
	rs.MedianAbnormalReturn = null.FloatFrom(median(returns))

	// cross sectional t statistic of the mean abnormal return
	if stdDev > 0 {
		rs.TStatistic = null.FloatFrom(mean / (stdDev / math.Sqrt(float64(len(returns)))))
	}

	if len(sizes) >= minObservations {
		rs.MeanRelativeDealSize = null.FloatFrom(stat.Mean(sizes, nil))
	}

	return rs
}

func median(values []float64) float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
