package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/phuslu/log"

	e "dealmetrics/data/extensions"
	m "dealmetrics/data/models"
	c "dealmetrics/service/api"
)

// public
const (
	HostDefault      = "query1.finance.yahoo.com"
	BenchmarkDefault = "^GSPC"
)

// private
const (
	chartPath      = "v8/finance/chart/"
	timeseriesPath = "ws/fundamentals-timeseries/v1/finance/timeseries/"

	quarterlyPrefix = "quarterly"

	// statements are looked up this far either side of today
	statementLookback = 10
)

// quarterly income statement line items requested from the timeseries endpoint
var statementTypes = []string{
	"quarterlyBasicAverageShares",
	"quarterlyDilutedAverageShares",
	"quarterlyTotalRevenue",
	"quarterlyNetIncome",
}

type YahooClient struct {
	*c.Client
	now func() time.Time
}

func GetClient(timeout time.Duration, requestsPerSecond float64) *YahooClient {
	return &YahooClient{
		Client: c.ClientFactory(HostDefault, "", timeout, requestsPerSecond),
		now:    time.Now,
	}
}

func (yc *YahooClient) Name() string {
	return "yahoo"
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string `json:"symbol"`
				ExchangeTimezoneName string `json:"exchangeTimezoneName"`
				RegularMarketTime    int64  `json:"regularMarketTime"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []null.Float `json:"open"`
					High   []null.Float `json:"high"`
					Low    []null.Float `json:"low"`
					Close  []null.Float `json:"close"`
					Volume []null.Float `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *responseError `json:"error"`
	} `json:"chart"`
}

type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *responseError               `json:"error"`
	} `json:"timeseries"`
}

type responseError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type timeseriesMeta struct {
	Symbol []string `json:"symbol"`
	Type   []string `json:"type"`
}

type timeseriesPoint struct {
	AsOfDate      string `json:"asOfDate"`
	PeriodType    string `json:"periodType"`
	ReportedValue struct {
		Raw null.Float `json:"raw"`
	} `json:"reportedValue"`
}

// GetDailyPrices returns the daily bars for ticker in [start, end), dated in the exchange's time zone
func (yc *YahooClient) GetDailyPrices(ctx context.Context, ticker string, start, end time.Time) (*m.TimeSeriesResult, error) {
	endpoint := buildRequestPath(chartPath+ticker, map[string]string{
		"period1":  unix(start),
		"period2":  unix(end),
		"interval": "1d",
		"events":   "history",
	})

	var resp chartResponse
	if err := yc.request(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("error from yahoo chart for %s: %s", ticker, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("error no chart result for %s", ticker)
	}

	result := resp.Chart.Result[0]
	location := getTimeZone(result.Meta.ExchangeTimezoneName)

	metadata := &m.TimeSeriesMetadata{
		Symbol:        result.Meta.Symbol,
		LastRefreshed: time.Unix(result.Meta.RegularMarketTime, 0).In(location),
		TimeZone:      location.String(),
	}

	if len(result.Indicators.Quote) == 0 {
		return &m.TimeSeriesResult{Metadata: metadata, TimeSeries: []*m.TimeSeriesData{}}, nil
	}
	quote := result.Indicators.Quote[0]

	from, to := e.DateOnly(start), e.DateOnly(end)
	timeSeries := make([]*m.TimeSeriesData, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		date := e.DateOnly(time.Unix(ts, 0).In(location))
		if date.Before(from) || !date.Before(to) {
			continue
		}

		timeSeries = append(timeSeries, &m.TimeSeriesData{
			Timestamp: date,
			TimeSeriesOHLCV: m.TimeSeriesOHLCV{
				Open:   at(quote.Open, i),
				High:   at(quote.High, i),
				Low:    at(quote.Low, i),
				Close:  at(quote.Close, i),
				Volume: at(quote.Volume, i),
			},
		})
	}

	slices.SortStableFunc(timeSeries, func(a, b *m.TimeSeriesData) int { return a.Timestamp.Compare(b.Timestamp) })

	return &m.TimeSeriesResult{
		Metadata:   metadata,
		TimeSeries: timeSeries,
	}, nil
}

// GetQuarterlyStatements returns quarterly income statement columns keyed by line item without the period prefix,
// so quarterlyBasicAverageShares is published as BasicAverageShares
func (yc *YahooClient) GetQuarterlyStatements(ctx context.Context, ticker string) ([]*m.FinancialStatement, error) {
	now := yc.now()
	endpoint := buildRequestPath(timeseriesPath+ticker, map[string]string{
		"symbol":  ticker,
		"type":    strings.Join(statementTypes, ","),
		"period1": unix(now.AddDate(-statementLookback, 0, 0)),
		"period2": unix(now),
	})

	var resp timeseriesResponse
	if err := yc.request(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Timeseries.Error != nil {
		return nil, fmt.Errorf("error from yahoo timeseries for %s: %s", ticker, resp.Timeseries.Error.Description)
	}

	statements := make(map[time.Time]*m.FinancialStatement)
	for _, result := range resp.Timeseries.Result {
		var meta timeseriesMeta
		if err := json.Unmarshal(result["meta"], &meta); err != nil {
			return nil, fmt.Errorf("error unmarshaling timeseries meta: %w", err)
		}
		if len(meta.Type) == 0 {
			continue
		}

		seriesType := meta.Type[0]
		raw, ok := result[seriesType]
		if !ok {
			// a requested line item with no history
			continue
		}

		var points []*timeseriesPoint
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, fmt.Errorf("error unmarshaling timeseries %s: %w", seriesType, err)
		}

		field := strings.TrimPrefix(seriesType, quarterlyPrefix)
		for _, point := range points {
			if point == nil {
				continue
			}
			date, err := e.ParseDateOnly(point.AsOfDate)
			if err != nil {
				return nil, err
			}

			statement, ok := statements[date]
			if !ok {
				statement = &m.FinancialStatement{Date: date, Fields: map[string]null.Float{}}
				statements[date] = statement
			}
			statement.Fields[field] = point.ReportedValue.Raw
		}
	}

	res := make([]*m.FinancialStatement, 0, len(statements))
	for _, statement := range statements {
		res = append(res, statement)
	}
	// newest first, the order statement tables are published in
	slices.SortFunc(res, func(a, b *m.FinancialStatement) int { return b.Date.Compare(a.Date) })

	return res, nil
}

// GetSharesOutstanding returns the reported share count history from start to now, oldest first
func (yc *YahooClient) GetSharesOutstanding(ctx context.Context, ticker string, start time.Time) ([]*m.SharesOutstanding, error) {
	endpoint := buildRequestPath(timeseriesPath+ticker, map[string]string{
		"symbol":  ticker,
		"period1": unix(start),
		"period2": unix(yc.now()),
	})

	var resp timeseriesResponse
	if err := yc.request(ctx, endpoint, &resp); err != nil {
		return nil, err
	}
	if resp.Timeseries.Error != nil {
		return nil, fmt.Errorf("error from yahoo shares for %s: %s", ticker, resp.Timeseries.Error.Description)
	}
	if len(resp.Timeseries.Result) == 0 {
		return []*m.SharesOutstanding{}, nil
	}

	result := resp.Timeseries.Result[0]
	var timestamps []int64
	var shares []null.Float
	if raw, ok := result["timestamp"]; ok {
		if err := json.Unmarshal(raw, &timestamps); err != nil {
			return nil, fmt.Errorf("error unmarshaling shares timestamps: %w", err)
		}
	}
	if raw, ok := result["shares_out"]; ok {
		if err := json.Unmarshal(raw, &shares); err != nil {
			return nil, fmt.Errorf("error unmarshaling shares: %w", err)
		}
	}

	if len(timestamps) != len(shares) {
		log.Warn().Str("ticker", ticker).Int("timestamps", len(timestamps)).Int("shares", len(shares)).Msg("shares history length mismatch")
	}

	from := e.DateOnly(start)
	res := make([]*m.SharesOutstanding, 0, len(timestamps))
	for i, ts := range timestamps {
		date := e.DateOnly(time.Unix(ts, 0).UTC())
		if date.Before(from) {
			continue
		}
		res = append(res, &m.SharesOutstanding{
			Date:   date,
			Shares: at(shares, i),
		})
	}

	slices.SortStableFunc(res, func(a, b *m.SharesOutstanding) int { return a.Date.Compare(b.Date) })
	return res, nil
}

func (yc *YahooClient) request(ctx context.Context, endpoint *url.URL, target any) error {
	if yc == nil {
		panic("yahoo client has not been set.")
	}

	response, err := yc.Client.Connection.Request(ctx, endpoint)
	if err != nil {
		return err
	}

	defer response.Body.Close()

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}

	return nil
}

func buildRequestPath(path string, params map[string]string) *url.URL {
	endpoint := &url.URL{}
	endpoint.Path = path

	query := endpoint.Query()
	for key, value := range params {
		query.Set(key, value)
	}
	endpoint.RawQuery = query.Encode()

	return endpoint
}

func getTimeZone(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Str("time_zone", name).Err(err).Msg("default time zone hit, not recognized")
		return time.UTC
	}
	return location
}

func unix(t time.Time) string {
	return strconv.FormatInt(e.DateOnly(t).Unix(), 10)
}

func at(values []null.Float, i int) null.Float {
	if i < len(values) {
		return values[i]
	}
	return null.Float{}
}
