package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/guregu/null/v6"
)

type MetricRun struct {
	Id              int32     `db:"id"`
	RunId           uuid.UUID `db:"run_id"`
	InputPath       string    `db:"input_path"`
	Provider        string    `db:"provider"`
	BenchmarkTicker string    `db:"benchmark_ticker"`
	TotalDeals      int32     `db:"total_deals"`
	Succeeded       int32     `db:"succeeded"`
	Failed          int32     `db:"failed"`
	StartedAt       time.Time `db:"started_at"`
	FinishedAt      null.Time `db:"finished_at"`
}

// DealMetrics is the persisted shape of a DealResult
type DealMetrics struct {
	RunId            int32       `db:"run_id"`
	RowNumber        int32       `db:"row_number"`
	AcquirerTicker   string      `db:"acquirer_ticker"`
	TargetTicker     string      `db:"target_ticker"`
	AnnouncementDate null.Time   `db:"announcement_date"`
	DealSizeB        float64     `db:"deal_size_b"`
	PreviousDate     null.Time   `db:"previous_date"`
	ReactionDate     null.Time   `db:"reaction_date"`
	AcquirerReturn   null.Float  `db:"acquirer_return"`
	BenchmarkReturn  null.Float  `db:"benchmark_return"`
	AbnormalReturn   null.Float  `db:"abnormal_return"`
	PriceAtDeal      null.Float  `db:"price_at_deal"`
	Shares           null.Float  `db:"shares"`
	SharesSource     null.String `db:"shares_source"`
	MarketCapB       null.Float  `db:"market_cap_b"`
	RelativeDealSize null.Float  `db:"relative_deal_size"`
	ErrorMessage     null.String `db:"error_message"`
}

func MapDealResultToDealMetrics(runId int32, res *DealResult) DealMetrics {
	announced := null.Time{}
	if !res.Deal.AnnouncementDate.IsZero() {
		announced = null.TimeFrom(res.Deal.AnnouncementDate)
	}

	return DealMetrics{
		RunId:            runId,
		RowNumber:        int32(res.Deal.Row),
		AcquirerTicker:   res.Deal.AcquirerTicker,
		TargetTicker:     res.Deal.TargetTicker,
		AnnouncementDate: announced,
		DealSizeB:        res.Deal.DealSizeB,
		PreviousDate:     res.PreviousDate,
		ReactionDate:     res.ReactionDate,
		AcquirerReturn:   res.Metrics.AcquirerReturn,
		BenchmarkReturn:  res.Metrics.BenchmarkReturn,
		AbnormalReturn:   res.Metrics.AbnormalReturn,
		PriceAtDeal:      res.PriceAtDeal,
		Shares:           res.Shares,
		SharesSource:     res.SharesSource,
		MarketCapB:       res.Metrics.MarketCapB,
		RelativeDealSize: res.Metrics.RelativeDealSize,
		ErrorMessage:     null.NewString(res.ErrorMessage(), res.Err != nil),
	}
}
