package core

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ex "dealmetrics/data/extensions"
	tbl "dealmetrics/data/table"
)

const dealsCsv = `Acquirer_Ticker,Target_Ticker,Announcement_Date,Deal_Size_B,Notes
AAPL,XYZ,2023-06-01,5.0,first
GONE,ABC,2023-06-01,1.5,delisted
`

func readDeals(t *testing.T, s string) *tbl.Table {
	t.Helper()
	table, err := tbl.ReadCsv(strings.NewReader(s))
	require.NoError(t, err)
	return table
}

func Test_Pipeline_AnnouncementDayScenario(t *testing.T) {
	sc := newTestContext(context.Background(), aaplProvider())

	res := sc.ComputeDealMetrics(context.Background(), aaplDeal())
	require.NoError(t, res.Err)

	ex.AssertAreEqual(t, "succeeded", true, res.Succeeded())
	assert.InDelta(t, 0.02, res.Metrics.AcquirerReturn.Float64, 1e-12)
	assert.InDelta(t, -0.005, res.Metrics.BenchmarkReturn.Float64, 1e-12)
	assert.InDelta(t, 0.025, res.Metrics.AbnormalReturn.Float64, 1e-12)
	assert.InDelta(t, 2402.1, res.Metrics.MarketCapB.Float64, 1e-9)
	assert.InDelta(t, 5.0/2402.1, res.Metrics.RelativeDealSize.Float64, 1e-12)

	ex.AssertAreEqual(t, "reaction", "2023-06-01", ex.FmtShort(res.ReactionDate.Time))
	ex.AssertAreEqual(t, "previous", "2023-05-31", ex.FmtShort(res.PreviousDate.Time))
	ex.AssertAreEqual(t, "shares source", "quarterly_statement", res.SharesSource.String)
	ex.AssertAreEqual(t, "price at deal", 153.0, res.PriceAtDeal.Float64)
}

func Test_Pipeline_PartialMetricsAreKept(t *testing.T) {
	provider := aaplProvider()
	provider.statements["AAPL"] = nil
	provider.shares["AAPL"] = nil
	sc := newTestContext(context.Background(), provider)

	res := sc.ComputeDealMetrics(context.Background(), aaplDeal())

	ex.AssertAreEqual(t, "succeeded", false, res.Succeeded())
	ex.AssertErrorIs(t, "unresolved", ErrSharesUnresolved, res.Err)
	assert.True(t, res.Metrics.AbnormalReturn.Valid)
	assert.False(t, res.Metrics.MarketCapB.Valid)
	assert.False(t, res.Metrics.RelativeDealSize.Valid)
}

func Test_Pipeline_BothBranchesFail(t *testing.T) {
	provider := newFakeProvider()
	sc := newTestContext(context.Background(), provider)

	res := sc.ComputeDealMetrics(context.Background(), aaplDeal())

	ex.AssertErrorIs(t, "returns", ErrDataUnavailable, res.Err)
	ex.AssertErrorIs(t, "market cap", ErrSharesUnresolved, res.Err)
	assert.NotContains(t, res.ErrorMessage(), "\n")
}

func Test_Pipeline_RunEnrichesTable(t *testing.T) {
	sc := newTestContext(context.Background(), aaplProvider())

	out, results, err := sc.Run(readDeals(t, dealsCsv))
	require.NoError(t, err)
	require.Len(t, results, 2)

	ex.AssertAreEqual(t, "first succeeded", true, results[0].Succeeded())
	ex.AssertAreEqual(t, "second succeeded", false, results[1].Succeeded())

	assert.Equal(t, []string{
		"Acquirer_Ticker", "Target_Ticker", "Announcement_Date", "Deal_Size_B", "Notes",
		"Acquirer_Return", "SP500_Return", "True_Adjusted_Return", "Acquirer_Market_Cap_B", "Relative_Deal_Size", "Error",
	}, out.Header)

	first := out.Rows[0]
	assert.Equal(t, "first", first[4])
	assert.Equal(t, "0.02", first[5])
	assert.Equal(t, "-0.005", first[6])
	assert.Equal(t, "0.025", first[7])
	assert.Equal(t, "", first[10])

	second := out.Rows[1]
	assert.Equal(t, "delisted", second[4])
	assert.Equal(t, "", second[5])
	assert.Contains(t, second[10], "data unavailable")
}

func Test_Pipeline_RunIsIdempotent(t *testing.T) {
	render := func() []byte {
		sc := newTestContext(context.Background(), aaplProvider())
		out, _, err := sc.Run(readDeals(t, dealsCsv))
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, tbl.WriteCsv(&buf, out))
		return buf.Bytes()
	}

	assert.Equal(t, render(), render())
}

func Test_Pipeline_MissingColumnFailsRun(t *testing.T) {
	sc := newTestContext(context.Background(), aaplProvider())

	_, _, err := sc.Run(readDeals(t, "Acquirer_Ticker,Announcement_Date\nAAPL,2023-06-01\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Deal_Size_B")
}

func Test_Pipeline_MalformedRowIsIsolated(t *testing.T) {
	provider := aaplProvider()
	sc := newTestContext(context.Background(), provider)

	csv := "Acquirer_Ticker,Target_Ticker,Announcement_Date,Deal_Size_B\n" +
		"AAPL,XYZ,06/01/2023,5.0\n" +
		"AAPL,XYZ,2023-06-01,5.0\n"
	_, results, err := sc.Run(readDeals(t, csv))
	require.NoError(t, err)

	ex.AssertErrorIs(t, "bad date", ErrDataIntegrity, results[0].Err)
	ex.AssertAreEqual(t, "good row", true, results[1].Succeeded())
}

func Test_Pipeline_WorkersKeepInputOrder(t *testing.T) {
	provider := aaplProvider().
		closes("MSFT", "2023-05-31", 330, "2023-06-01", 333).
		statement("MSFT", "2023-03-31", basicShares(7_400_000_000))
	sc := newTestContext(context.Background(), provider)
	sc.Settings.Workers = 4

	var rows strings.Builder
	rows.WriteString("Acquirer_Ticker,Target_Ticker,Announcement_Date,Deal_Size_B\n")
	tickers := []string{"AAPL", "MSFT", "GONE", "MSFT", "AAPL", "GONE", "AAPL", "MSFT"}
	for _, ticker := range tickers {
		rows.WriteString(ticker + ",T,2023-06-01,1.0\n")
	}

	_, results, err := sc.Run(readDeals(t, rows.String()))
	require.NoError(t, err)
	require.Len(t, results, len(tickers))

	for i, res := range results {
		ex.AssertAreEqual(t, "ticker", tickers[i], res.Deal.AcquirerTicker)
		ex.AssertAreEqual(t, "row", i+1, res.Deal.Row)
		ex.AssertAreEqual(t, "succeeded", tickers[i] != "GONE", res.Succeeded())
	}
}

func Test_Pipeline_CancelledRunMarksDealsFailed(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	provider := aaplProvider()
	sc := newTestContext(ctx, provider)

	out, results, err := sc.Run(readDeals(t, dealsCsv))
	require.NoError(t, err)
	require.Len(t, out.Rows, 2)

	for _, res := range results {
		assert.True(t, errors.Is(res.Err, context.Canceled))
	}
	ex.AssertAreEqual(t, "provider calls", 0, provider.calls)
}
