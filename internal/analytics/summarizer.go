package analytics

import (
	"errors"
	"fmt"
	"sort"

	"spendsight/internal/core"
)

const (
	// WindowAllTime keeps the whole series.
	WindowAllTime Window = "all"
	// WindowLast3Months keeps the trailing three populated buckets.
	WindowLast3Months Window = "3m"
	// WindowLast6Months keeps the trailing six populated buckets.
	WindowLast6Months Window = "6m"
)

// Window selects how much of the series a summary covers. Trailing windows
// count populated buckets, not calendar months: a sparse series with one
// bucket per quarter still yields its last N buckets.
type Window string

// windowSpans maps each window to its bucket count (0 = unbounded).
var windowSpans = map[Window]int{
	WindowAllTime:     0,
	WindowLast3Months: 3,
	WindowLast6Months: 6,
}

// Windows lists every supported window, widest first.
var Windows = []Window{WindowAllTime, WindowLast6Months, WindowLast3Months}

var (
	ErrUnknownWindow  = errors.New("unknown window")
	ErrUnsortedSeries = errors.New("series is not chronologically sorted")
)

// ParseWindow converts a request token into a Window.
func ParseWindow(s string) (Window, error) {
	w := Window(s)
	if _, ok := windowSpans[w]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownWindow, s)
	}
	return w, nil
}

// Buckets returns how many trailing buckets the window keeps; 0 means all.
func (w Window) Buckets() (int, error) {
	n, ok := windowSpans[w]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWindow, w)
	}
	return n, nil
}

// CategoryRanking is one category's standing within the active window.
// Share is the category's fraction of the grand total in [0, 1].
type CategoryRanking struct {
	Category   core.Category
	TotalCents int64
	Share      float64
}

// SummaryStats are the headline figures for the active window.
// TopCategory is empty when the window holds no spending at all.
type SummaryStats struct {
	GrandTotalCents     int64
	AverageMonthlyCents int64
	TopCategory         core.Category
}

// Summary is the derived view model consumed by the presentation layer.
type Summary struct {
	Window   Window
	Series   Series
	Rankings []CategoryRanking
	Stats    SummaryStats
}

// Summarize slices the series to the requested window, totals and ranks every
// known category, and computes summary statistics.
//
// known is the externally supplied closed category set: a category with no
// activity in the window still appears with a zero total, and the slice order
// is the tie-break for equal totals, which keeps rankings deterministic.
//
// A series that violates the aggregator's ordering invariant is a caller
// error; Summarize reports it rather than re-sorting someone else's data.
func Summarize(series Series, window Window, known []core.Category) (Summary, error) {
	span, err := window.Buckets()
	if err != nil {
		return Summary{}, err
	}
	if !series.sorted() {
		return Summary{}, ErrUnsortedSeries
	}

	windowed := series
	if span > 0 && len(series) > span {
		windowed = series[len(series)-span:]
	}

	var grand int64
	for _, b := range windowed {
		for _, cents := range b.Totals {
			grand += cents
		}
	}

	rankings := make([]CategoryRanking, len(known))
	for i, cat := range known {
		var total int64
		for _, b := range windowed {
			total += b.Totals[cat]
		}
		rankings[i] = CategoryRanking{Category: cat, TotalCents: total}
	}
	// Stable sort preserves the known-category order for equal totals.
	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].TotalCents > rankings[j].TotalCents
	})
	// Shares are defined as 0 when there is nothing to divide by; a NaN
	// here would leak all the way into the rendered percentages.
	if grand > 0 {
		for i := range rankings {
			rankings[i].Share = float64(rankings[i].TotalCents) / float64(grand)
		}
	}

	stats := SummaryStats{GrandTotalCents: grand}
	if n := int64(len(windowed)); n > 0 {
		stats.AverageMonthlyCents = (grand + n/2) / n // half-up
	}
	if len(rankings) > 0 && rankings[0].TotalCents > 0 {
		stats.TopCategory = rankings[0].Category
	}

	return Summary{
		Window:   window,
		Series:   windowed,
		Rankings: rankings,
		Stats:    stats,
	}, nil
}
