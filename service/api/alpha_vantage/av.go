package alpha_vantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/url"
	"reflect"
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
	HostDefault = "www.alphavantage.co"

	// alpha vantage publishes no index series, the s&p 500 etf stands in for it
	BenchmarkDefault = "SPY"
)

// private
const (
	// default query parameters
	defaultOutputSize = "full"
	defaultDataType   = "json"

	// api request elements
	query    = "query"
	symbol   = "symbol"
	function = "function"

	functionIncomeStatement   = "INCOME_STATEMENT"
	functionSharesOutstanding = "SHARES_OUTSTANDING"
)

var (
	timeSeriesDateFormats = []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
	}

	ohlcvResultKeys = map[string]string{
		"Open":   ". open",
		"High":   ". high",
		"Low":    ". low",
		"Close":  ". close",
		"Volume": ". volume",
	}

	// throttling and bad symbols come back as 200 with one of these keys
	errorResponseKeys = []string{"Error Message", "Note", "Information"}

	// statement columns that are not line items
	statementMetaKeys = []string{"fiscalDateEnding", "reportedCurrency"}
)

type AlphaVantageClient struct {
	*c.Client
}

func GetClient(apiKey string, timeout time.Duration, requestsPerSecond float64) *AlphaVantageClient {
	return &AlphaVantageClient{
		c.ClientFactory(HostDefault, apiKey, timeout, requestsPerSecond),
	}
}

func (avc *AlphaVantageClient) Name() string {
	return "alphavantage"
}

// GetDailyPrices returns the daily closes for ticker in [start, end)
// https://www.alphavantage.co/documentation/#daily
func (avc *AlphaVantageClient) GetDailyPrices(ctx context.Context, ticker string, start, end time.Time) (*m.TimeSeriesResult, error) {
	raw, err := avc.request(ctx, map[string]string{
		function: TimeSeriesDaily.Function(),
		symbol:   ticker,
	})
	if err != nil {
		return nil, err
	}

	metaData, timeZone, err := parseMetaData(raw)
	if err != nil {
		return nil, err
	}

	timeSeriesData, err := parseTimeSeriesDataResult(raw, TimeSeriesDaily.TimeSeriesKey(), timeZone)
	if err != nil {
		return nil, err
	}

	from, to := e.DateOnly(start), e.DateOnly(end)
	f := func(d *m.TimeSeriesData) bool { return !d.Timestamp.Before(from) && d.Timestamp.Before(to) }
	inWindow := e.FilterMultiplePtr(timeSeriesData, f)
	slices.SortFunc(inWindow, func(a, b *m.TimeSeriesData) int { return a.Timestamp.Compare(b.Timestamp) })

	return &m.TimeSeriesResult{
		Metadata:   metaData,
		TimeSeries: inWindow,
	}, nil
}

// GetQuarterlyStatements returns the quarterly income statements, line items keyed by their camel case name
// https://www.alphavantage.co/documentation/#income-statement
func (avc *AlphaVantageClient) GetQuarterlyStatements(ctx context.Context, ticker string) ([]*m.FinancialStatement, error) {
	raw, err := avc.request(ctx, map[string]string{
		function: functionIncomeStatement,
		symbol:   ticker,
	})
	if err != nil {
		return nil, err
	}

	var reports []map[string]string
	if err := json.Unmarshal(raw["quarterlyReports"], &reports); err != nil {
		return nil, fmt.Errorf("error unmarshaling quarterly reports: %w", err)
	}

	res := make([]*m.FinancialStatement, 0, len(reports))
	for _, report := range reports {
		date, err := parseDate(report["fiscalDateEnding"], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("error parsing fiscal date ending: %w", err)
		}

		fields := make(map[string]null.Float, len(report))
		for key, value := range report {
			if slices.Contains(statementMetaKeys, key) {
				continue
			}
			fields[key] = parseFloat(value)
		}

		res = append(res, &m.FinancialStatement{
			Date:   e.DateOnly(date),
			Fields: fields,
		})
	}

	return res, nil
}

// GetSharesOutstanding returns basic shares outstanding on or after start, oldest first
// https://www.alphavantage.co/documentation/#shares-outstanding
func (avc *AlphaVantageClient) GetSharesOutstanding(ctx context.Context, ticker string, start time.Time) ([]*m.SharesOutstanding, error) {
	raw, err := avc.request(ctx, map[string]string{
		function: functionSharesOutstanding,
		symbol:   ticker,
	})
	if err != nil {
		return nil, err
	}

	var data []map[string]string
	if err := json.Unmarshal(raw["data"], &data); err != nil {
		return nil, fmt.Errorf("error unmarshaling shares outstanding: %w", err)
	}

	from := e.DateOnly(start)
	res := make([]*m.SharesOutstanding, 0, len(data))
	for _, point := range data {
		date, err := parseDate(point["date"], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("error parsing shares outstanding date: %w", err)
		}
		if date.Before(from) {
			continue
		}

		res = append(res, &m.SharesOutstanding{
			Date:   e.DateOnly(date),
			Shares: parseFloat(point["shares_outstanding_basic"]),
		})
	}

	slices.SortFunc(res, func(a, b *m.SharesOutstanding) int { return a.Date.Compare(b.Date) })
	return res, nil
}

func (avc *AlphaVantageClient) request(ctx context.Context, params map[string]string) (map[string]json.RawMessage, error) {
	if avc == nil {
		panic("alpha vantage client has not been set.")
	}

	endpoint := avc.buildRequestPath(params)

	response, err := avc.Client.Connection.Request(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	raw, err := parseRawJson(response.Body)
	if err != nil {
		return nil, err
	}

	if err := checkErrorResponse(raw); err != nil {
		return nil, fmt.Errorf("error from alpha vantage for %s %s: %w", params[function], params[symbol], err)
	}

	return raw, nil
}

func (avc *AlphaVantageClient) buildRequestPath(params map[string]string) *url.URL {
	// build our URL
	endpoint := &url.URL{}
	endpoint.Path = query

	// base parameters
	query := endpoint.Query()
	query.Set("apikey", avc.Client.ApiKey)
	query.Set("datatype", defaultDataType)
	query.Set("outputsize", defaultOutputSize)

	// additional parameters
	for key, value := range params {
		query.Set(key, value)
	}

	endpoint.RawQuery = query.Encode()

	return endpoint
}

func parseRawJson(reader io.Reader) (raw map[string]json.RawMessage, err error) {
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	// converting to a <string, raw message> map
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %w", err)
	}

	return
}

func checkErrorResponse(raw map[string]json.RawMessage) error {
	for _, key := range errorResponseKeys {
		message, ok := raw[key]
		if !ok {
			continue
		}
		// "Information" also appears inside healthy metadata, only a lone message is an error
		if len(raw) > 1 {
			continue
		}
		var text string
		if err := json.Unmarshal(message, &text); err != nil {
			text = string(message)
		}
		return fmt.Errorf("%s", text)
	}
	return nil
}

func parseMetaData(raw map[string]json.RawMessage) (*m.TimeSeriesMetadata, *time.Location, error) {
	var metadataElements map[string]string
	if err := json.Unmarshal(raw["Meta Data"], &metadataElements); err != nil {
		return nil, nil, fmt.Errorf("error unmarshaling meta data: %w", err)
	}

	metaDataKeys := slices.Collect(maps.Keys(metadataElements))

	// parse symbol
	sf := func(s string) bool { return strings.HasSuffix(s, ". Symbol") }
	symbolKey, err := e.FilterSingle(metaDataKeys, sf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting symbol for meta data")
	}

	// parse time zone
	tzf := func(s string) bool { return strings.HasSuffix(s, ". Time Zone") }
	timeZoneKey, err := e.FilterSingle(metaDataKeys, tzf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting time zone for meta data")
	}

	timeZone, err := getTimeZone(metadataElements[timeZoneKey])
	if err != nil {
		return nil, nil, fmt.Errorf("error converting time zone key %s, to time.Location: %w", metadataElements[timeZoneKey], err)
	}

	// parse last refreshed
	lrf := func(s string) bool { return strings.HasSuffix(s, ". Last Refreshed") }
	lastRefreshedKey, err := e.FilterSingle(metaDataKeys, lrf)
	if err != nil {
		return nil, nil, fmt.Errorf("error extracting last refreshed date")
	}

	lastRefreshed, err := parseDate(metadataElements[lastRefreshedKey], timeZone)
	if err != nil {
		return nil, nil, fmt.Errorf("error parsing last refreshed date")
	}

	res := m.TimeSeriesMetadata{
		Symbol:        metadataElements[symbolKey],
		LastRefreshed: lastRefreshed,
		TimeZone:      timeZone.String(),
	}

	return &res, timeZone, nil
}

func parseTimeSeriesDataResult(raw map[string]json.RawMessage, key string, location *time.Location) ([]*m.TimeSeriesData, error) {
	var timeSeriesElements map[string]map[string]string
	if err := json.Unmarshal(raw[key], &timeSeriesElements); err != nil {
		return nil, fmt.Errorf("error unmarshaling time series: %w", err)
	}

	if len(timeSeriesElements) == 0 {
		return []*m.TimeSeriesData{}, nil
	}

	// populate the lookups
	var firstValue map[string]string
	for _, v := range timeSeriesElements {
		firstValue = v
		break
	}

	ohlcvLookup, err := getLookupKey(ohlcvResultKeys, firstValue)
	if err != nil {
		return nil, err
	}

	timeSeries := make([]*m.TimeSeriesData, 0, len(timeSeriesElements))
	for timeSeriesKey, timeSeriesValue := range timeSeriesElements {
		// get timestamp
		timestamp, err := parseDate(timeSeriesKey, location)
		if err != nil {
			return nil, fmt.Errorf("error converting TIMESTAMP from string to time.Time: %w", err)
		}

		// get OHLCV
		ohlcv, err := parseOHLCV(timeSeriesValue, ohlcvLookup)
		if err != nil {
			return nil, fmt.Errorf("error parsing OHLCV: %w", err)
		}

		timeSeries = append(timeSeries, &m.TimeSeriesData{
			Timestamp:       e.DateOnly(timestamp),
			TimeSeriesOHLCV: ohlcv,
		})
	}

	return timeSeries, nil
}

func parseOHLCV(value, lookup map[string]string) (res m.TimeSeriesOHLCV, err error) {
	v := reflect.ValueOf(&res).Elem()
	for jsonKey, structAttribute := range lookup {
		field := v.FieldByName(structAttribute)
		if !field.IsValid() {
			return res, fmt.Errorf("field %s does not exist", structAttribute)
		}
		if !field.CanSet() {
			return res, fmt.Errorf("field %s cannot be set", structAttribute)
		}

		pv := parseFloat(value[jsonKey])
		field.Set(reflect.ValueOf(pv))
	}
	return
}

func getLookupKey(expectedKeys, values map[string]string) (map[string]string, error) {
	res := make(map[string]string)
	responseValueHeaders := slices.Collect(maps.Keys(values))

	for key, value := range expectedKeys {
		f := func(s string) bool {
			return strings.HasSuffix(strings.ToLower(s), strings.ToLower(value))
		}
		if jsonKey, err := e.FilterSingle(responseValueHeaders, f); err == nil {
			res[jsonKey] = key
		}
	}

	if len(res) == 0 {
		return nil, fmt.Errorf("error generating key value map from av response object. Available headers: %v", responseValueHeaders)
	}

	return res, nil
}

func getTimeZone(location string) (*time.Location, error) {
	var loc string
	switch strings.ToUpper(location) {
	case "US/EASTERN":
		loc = "America/New_York"
	default:
		log.Warn().Str("time_zone", location).Msg("default time zone hit, not recognized")
		return time.UTC, nil
	}

	res, err := time.LoadLocation(loc)
	if err != nil {
		return nil, fmt.Errorf("error parsing time zone %s in time.LoadLocation", loc)
	}

	return res, nil
}

func parseDate(dateString string, location *time.Location) (time.Time, error) {
	for _, format := range timeSeriesDateFormats {
		t, err := time.ParseInLocation(format, dateString, location)
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("error converting date %s to time.Time", dateString)
}

// parseFloat maps "", "None" and anything unparseable to an invalid value
func parseFloat(val string) null.Float {
	if val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return null.FloatFrom(f)
		}
	}
	return null.Float{}
}
