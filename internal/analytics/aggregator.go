// Package analytics derives the dashboard view model from raw expense data.
//
// Both transformations in this package are pure: they read their inputs,
// allocate fresh outputs, and never log or touch shared state, so they are
// safe to call concurrently without coordination.
package analytics

import (
	"fmt"
	"sort"
	"time"

	"spendsight/internal/core"
)

// MonthBucket holds all category totals for one (year, month) pair.
// Buckets are mutable only while an aggregation pass is running; once
// Aggregate returns, callers must treat them as read-only.
type MonthBucket struct {
	Year   int
	Month  int // 1-12
	Label  string
	Totals map[core.Category]int64 // cents; absent category means zero
}

// Series is a chronologically ascending sequence of MonthBucket with no
// duplicate (year, month) pairs.
type Series []MonthBucket

// Aggregate groups raw per-category monthly totals into one bucket per
// (year, month), summing amounts that share a category within a month.
// Malformed records (month outside 1-12, negative amount, unknown category)
// are rejected outright rather than coerced; a silently zeroed record would
// corrupt every total downstream.
func Aggregate(records []core.MonthCategoryTotal) (Series, error) {
	type monthKey struct {
		year, month int
	}

	buckets := make(map[monthKey]*MonthBucket)
	for i, r := range records {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("record %d (%d-%02d %s): %w", i, r.Year, r.Month, r.Category, err)
		}
		k := monthKey{r.Year, r.Month}
		b, ok := buckets[k]
		if !ok {
			b = &MonthBucket{
				Year:   r.Year,
				Month:  r.Month,
				Label:  MonthLabel(r.Year, r.Month),
				Totals: make(map[core.Category]int64),
			}
			buckets[k] = b
		}
		b.Totals[r.Category] += r.Amount.Cents
	}

	series := make(Series, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool {
		if series[i].Year != series[j].Year {
			return series[i].Year < series[j].Year
		}
		return series[i].Month < series[j].Month
	})
	return series, nil
}

// MonthLabel derives the display label for a bucket, e.g. "Jan 2024".
// Go's time.Month constants are English regardless of runtime locale,
// which keeps labels deterministic across environments.
func MonthLabel(year, month int) string {
	return fmt.Sprintf("%s %d", time.Month(month).String()[:3], year)
}

// sorted reports whether the series honors the aggregator's ordering
// invariant: strictly ascending on (year, month).
func (s Series) sorted() bool {
	for i := 1; i < len(s); i++ {
		prev, cur := s[i-1], s[i]
		if cur.Year < prev.Year || (cur.Year == prev.Year && cur.Month <= prev.Month) {
			return false
		}
	}
	return true
}
