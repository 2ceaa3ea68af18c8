package core

import (
	"testing"
	"time"

	ex "dealmetrics/data/extensions"
)

func Test_Window_BuildWindow(t *testing.T) {
	w := BuildWindow(date("2023-06-01"))

	ex.AssertAreEqual(t, "start", "2023-05-12", ex.FmtShort(w.Start))
	ex.AssertAreEqual(t, "end", "2023-06-11", ex.FmtShort(w.End))
}

func Test_Window_BuildWindowDropsTimeOfDay(t *testing.T) {
	location, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("error parsing time zone: %s", err)
	}

	w := BuildWindow(time.Date(2023, time.March, 1, 23, 0, 0, 0, location))

	ex.AssertAreEqual(t, "start", "2023-02-09", ex.FmtShort(w.Start))
	ex.AssertAreEqual(t, "end", "2023-03-11", ex.FmtShort(w.End))
	ex.AssertAreEqual(t, "location", time.UTC, w.Start.Location())
}

func Test_Window_PriceAtDealWindow(t *testing.T) {
	w := priceAtDealWindow(date("2023-06-03"))

	ex.AssertAreEqual(t, "start", "2023-06-03", ex.FmtShort(w.Start))
	ex.AssertAreEqual(t, "end", "2023-06-08", ex.FmtShort(w.End))
}
