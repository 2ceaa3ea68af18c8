package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/guregu/null/v6"
	"github.com/phuslu/log"

	ex "dealmetrics/data/extensions"
	m "dealmetrics/data/models"
)

const (
	// a statement this many days or more from the announcement is too stale to use
	statementMaxDistanceDays = 120

	sharesScale = 1e9
)

// basic average shares is published with and without spacing depending on the source
var basicAverageSharesFields = []string{"Basic Average Shares", "BasicAverageShares"}

// SharesResolver is one strategy for the acquirer's share count. A resolver with nothing usable
// returns an invalid value, an error only means the lookup itself failed.
type SharesResolver struct {
	Name    string
	Resolve func(ctx context.Context, provider MarketDataProvider, ticker string, announced time.Time) (null.Float, error)
}

// DefaultSharesResolvers are tried in order until one yields a usable figure
var DefaultSharesResolvers = []SharesResolver{
	{Name: "quarterly_statement", Resolve: resolveFromStatements},
	{Name: "shares_history", Resolve: resolveFromSharesHistory},
}

type MarketCapEstimate struct {
	PriceAtDeal      float64
	Shares           float64
	SharesSource     string
	MarketCapB       float64
	RelativeDealSize float64
}

// EstimateMarketCap resolves shares and the deal price, then sizes the deal against the acquirer's market cap
func (sc *ServiceContext) EstimateMarketCap(ctx context.Context, deal m.DealRecord) (*MarketCapEstimate, error) {
	shares, source, err := ResolveShares(ctx, sc.Provider, sc.resolvers(), deal.AcquirerTicker, deal.AnnouncementDate)
	if err != nil {
		return nil, err
	}

	price, err := sc.PriceAtDeal(ctx, deal.AcquirerTicker, deal.AnnouncementDate)
	if err != nil {
		return nil, err
	}

	marketCap, relativeSize, err := SizeDeal(price, shares, deal.DealSizeB)
	if err != nil {
		return nil, err
	}

	return &MarketCapEstimate{
		PriceAtDeal:      price,
		Shares:           shares,
		SharesSource:     source,
		MarketCapB:       marketCap,
		RelativeDealSize: relativeSize,
	}, nil
}

// ResolveShares walks the resolvers in order and returns the first usable figure with the resolver's name
func ResolveShares(ctx context.Context, provider MarketDataProvider, resolvers []SharesResolver, ticker string, announced time.Time) (float64, string, error) {
	var errs []error
	for _, resolver := range resolvers {
		shares, err := resolver.Resolve(ctx, provider, ticker, announced)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return 0, "", ctxErr
			}
			log.Debug().Str("ticker", ticker).Str("resolver", resolver.Name).Err(err).Msg("shares resolver failed")
			errs = append(errs, fmt.Errorf("%s: %w", resolver.Name, err))
			continue
		}
		if ex.IsUsable(shares) {
			return shares.Float64, resolver.Name, nil
		}
	}

	if len(errs) == 0 {
		return 0, "", fmt.Errorf("%w for %s on %s", ErrSharesUnresolved, ticker, ex.FmtShort(announced))
	}
	return 0, "", fmt.Errorf("%w for %s on %s: %w", ErrSharesUnresolved, ticker, ex.FmtShort(announced), errors.Join(errs...))
}

// SizeDeal converts price times shares into billions and divides the deal size by it
func SizeDeal(price, shares, dealSizeB float64) (float64, float64, error) {
	marketCap := price * shares / sharesScale
	if marketCap == 0 {
		return 0, 0, fmt.Errorf("%w: market cap is zero", ErrDivisionByZero)
	}
	return marketCap, dealSizeB / marketCap, nil
}

// PriceAtDeal is the first close on or after the announcement within a few calendar days
func (sc *ServiceContext) PriceAtDeal(ctx context.Context, ticker string, announced time.Time) (float64, error) {
	window := priceAtDealWindow(announced)
	bars, err := sc.fetchCloses(ctx, ticker, window)
	if err != nil {
		return 0, err
	}

	days := tradingDays(bars)
	if len(days) == 0 {
		return 0, fmt.Errorf("%w: no %s close between %s and %s", ErrDataUnavailable, ticker, ex.FmtShort(window.Start), ex.FmtShort(window.End))
	}
	return days[0].Close.Float64, nil
}

// resolveFromStatements reads basic average shares off the quarterly statement closest to the announcement
func resolveFromStatements(ctx context.Context, provider MarketDataProvider, ticker string, announced time.Time) (null.Float, error) {
	statements, err := provider.GetQuarterlyStatements(ctx, ticker)
	if err != nil {
		return null.Float{}, err
	}

	statement := closestStatement(statements, announced)
	if statement == nil {
		return null.Float{}, nil
	}

	for _, field := range basicAverageSharesFields {
		if v, ok := statement.Field(field); ok {
			return v, nil
		}
	}
	return null.Float{}, nil
}

// closestStatement picks the statement with the fewest days to announced, the later date wins a tie.
// Nil when there are none or the closest is statementMaxDistanceDays or more away.
func closestStatement(statements []*m.FinancialStatement, announced time.Time) *m.FinancialStatement {
	candidates := ex.FilterMultiplePtr(statements, func(s *m.FinancialStatement) bool { return s != nil })
	if len(candidates) == 0 {
		return nil
	}

	best := slices.MinFunc(candidates, func(a, b *m.FinancialStatement) int {
		da, db := ex.AbsDaysBetween(a.Date, announced), ex.AbsDaysBetween(b.Date, announced)
		if da != db {
			return da - db
		}
		return b.Date.Compare(a.Date)
	})

	if ex.AbsDaysBetween(best.Date, announced) >= statementMaxDistanceDays {
		return nil
	}
	return best
}

// resolveFromSharesHistory takes the first usable figure on or after the announcement
func resolveFromSharesHistory(ctx context.Context, provider MarketDataProvider, ticker string, announced time.Time) (null.Float, error) {
	history, err := provider.GetSharesOutstanding(ctx, ticker, ex.DateOnly(announced))
	if err != nil {
		return null.Float{}, err
	}

	first := ex.FilterFirstPtr(history, func(s *m.SharesOutstanding) bool { return s != nil && ex.IsUsable(s.Shares) })
	if first == nil {
		return null.Float{}, nil
	}
	return first.Shares, nil
}
