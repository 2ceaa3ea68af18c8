package core

import (
	"time"

	ex "dealmetrics/data/extensions"
)

const (
	windowLookbackDays  = 20
	windowLookaheadDays = 10

	// covers an announcement on a weekend or holiday
	priceAtDealDays = 5
)

// Window is a calendar date range, Start inclusive and End exclusive
type Window struct {
	Start time.Time
	End   time.Time
}

// BuildWindow brackets an announcement with enough calendar days to hold a trading day either side of it
func BuildWindow(announced time.Time) Window {
	d := ex.DateOnly(announced)
	return Window{
		Start: d.AddDate(0, 0, -windowLookbackDays),
		End:   d.AddDate(0, 0, windowLookaheadDays),
	}
}

// priceAtDealWindow is the short range the deal price is read from
func priceAtDealWindow(announced time.Time) Window {
	d := ex.DateOnly(announced)
	return Window{
		Start: d,
		End:   d.AddDate(0, 0, priceAtDealDays),
	}
}
