package extensions

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/guregu/null/v6"
)

// Number is any value the numeric helpers can sum over
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// FilterMultiple return all elements that satisfy the predicate
func FilterMultiple[T any](elements []T, predicate func(T) bool) (results []T) {
	for _, element := range elements {
		if predicate(element) {
			results = append(results, element)
		}
	}
	return
}

// FilterMultiplePtr return all pointers that satisfy the predicate
func FilterMultiplePtr[T any](elements []*T, predicate func(*T) bool) (results []*T) {
	for _, element := range elements {
		if predicate(element) {
			results = append(results, element)
		}
	}
	return
}

// FilterFirstPtr return the first pointer that satisfies the predicate
func FilterFirstPtr[T any](elements []*T, predicate func(*T) bool) (result *T) {
	for _, element := range elements {
		if predicate(element) {
			return element
		}
	}
	return
}

// FilterSingle return the single element that satisfies the predicate.
// If zero or more than one, default T and an error is returned.
func FilterSingle[T any](elements []T, predicate func(T) bool) (T, error) {
	res := FilterMultiple(elements, predicate)

	if len(res) != 1 {
		var zero T
		return zero, fmt.Errorf("error getting single, found %d matches", len(res))
	}

	return res[0], nil
}

// FmtShort formats a time in a date only string
func FmtShort(t time.Time) string {
	return t.Format(time.DateOnly)
}

// DateOnly drops the time of day and the location, keeping the wall clock calendar date.
// 2023-06-01 09:30 America/New_York becomes 2023-06-01 00:00 UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDateOnly parses a YYYY-MM-DD string into a date only time
func ParseDateOnly(s string) (time.Time, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("error converting date %q to time.Time: %w", s, err)
	}
	return t, nil
}

// AbsDaysBetween is the absolute number of calendar days between the dates of a and b
func AbsDaysBetween(a, b time.Time) int {
	days := int(DateOnly(a).Sub(DateOnly(b)).Hours() / 24)
	if days < 0 {
		return -days
	}
	return days
}

// Round rounds half away from zero to the given number of decimal places
func Round(value float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(value*scale) / scale
}

// IsUsable is true when the value is set and is a finite number
func IsUsable(value null.Float) bool {
	return value.Valid && !math.IsNaN(value.Float64) && !math.IsInf(value.Float64, 0)
}

// Values returns the underlying numbers of every usable value
func Values(values []null.Float) []float64 {
	res := make([]float64, 0, len(values))
	for _, v := range values {
		if IsUsable(v) {
			res = append(res, v.Float64)
		}
	}
	return res
}

func Sum[T Number](inp []T) (res T) {
	for _, v := range inp {
		res += v
	}
	return
}
