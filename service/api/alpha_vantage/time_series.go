package alpha_vantage

// TimeSeries specifies a frequency to query for stock data.
type TimeSeries uint8

const (
	TimeSeriesDaily TimeSeries = iota
)

func (t TimeSeries) Function() string {
	switch t {
	case TimeSeriesDaily:
		return "TIME_SERIES_DAILY"
	default:
		return ""
	}
}

// TimeSeriesKey is the json key the series is published under
func (t TimeSeries) TimeSeriesKey() string {
	switch t {
	case TimeSeriesDaily:
		return "Time Series (Daily)"
	default:
		return ""
	}
}
