package analytics

import (
	"errors"
	"math"
	"testing"

	"spendsight/internal/core"
)

func buildSeries(t *testing.T, records []core.MonthCategoryTotal) Series {
	t.Helper()
	series, err := Aggregate(records)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	return series
}

func TestParseWindow(t *testing.T) {
	cases := []struct {
		in      string
		want    Window
		wantErr bool
	}{
		{"all", WindowAllTime, false},
		{"3m", WindowLast3Months, false},
		{"6m", WindowLast6Months, false},
		{"12m", "", true},
		{"", "", true},
		{"ALL", "", true},
	}
	for _, tc := range cases {
		got, err := ParseWindow(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrUnknownWindow) {
				t.Errorf("ParseWindow(%q) error = %v, want ErrUnknownWindow", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("ParseWindow(%q) = %v, %v; want %v", tc.in, got, err, tc.want)
		}
	}
}

func TestSummarizeAllTimeKeepsSeries(t *testing.T) {
	series := buildSeries(t, []core.MonthCategoryTotal{
		mct(2024, 1, core.CategoryGroceries, 100),
		mct(2024, 2, core.CategoryGroceries, 200),
		mct(2024, 3, core.CategoryGroceries, 300),
	})

	sum, err := Summarize(series, WindowAllTime, core.Categories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.Series) != len(series) {
		t.Fatalf("all-time window changed series length: %d != %d", len(sum.Series), len(series))
	}
	for i := range series {
		if sum.Series[i].Year != series[i].Year || sum.Series[i].Month != series[i].Month {
			t.Fatalf("bucket %d differs", i)
		}
	}
}

func TestSummarizeTrailingWindow(t *testing.T) {
	series := buildSeries(t, []core.MonthCategoryTotal{
		mct(2023, 10, core.CategoryFood, 100),
		// Sparse series: trailing windows count populated buckets,
		// not calendar distance.
		mct(2024, 1, core.CategoryFood, 200),
		mct(2024, 2, core.CategoryFood, 300),
		mct(2024, 5, core.CategoryFood, 400),
	})

	sum, err := Summarize(series, WindowLast3Months, core.Categories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sum.Series) != 3 {
		t.Fatalf("expected 3 trailing buckets, got %d", len(sum.Series))
	}
	if sum.Series[0].Year != 2024 || sum.Series[0].Month != 1 {
		t.Fatalf("wrong window start: %d-%02d", sum.Series[0].Year, sum.Series[0].Month)
	}
	if sum.Stats.GrandTotalCents != 900 {
		t.Fatalf("grand total = %d, want 900", sum.Stats.GrandTotalCents)
	}
}

func TestSummarizeWindowShorterThanRequested(t *testing.T) {
	series := buildSeries(t, []core.MonthCategoryTotal{
		mct(2024, 1, core.CategoryFood, 100),
		mct(2024, 2, core.CategoryFood, 200),
	})

	sum, err := Summarize(series, WindowLast3Months, core.Categories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two buckets, no padding.
	if len(sum.Series) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(sum.Series))
	}
}

func TestSummarizeScenario(t *testing.T) {
	series := buildSeries(t, []core.MonthCategoryTotal{
		mct(2024, 1, core.CategoryGroceries, 10000),
		mct(2024, 1, core.CategoryTravel, 5000),
		mct(2024, 2, core.CategoryGroceries, 20000),
	})

	sum, err := Summarize(series, WindowAllTime, []core.Category{core.CategoryGroceries, core.CategoryTravel})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if sum.Stats.GrandTotalCents != 35000 {
		t.Errorf("grand total = %d, want 35000", sum.Stats.GrandTotalCents)
	}
	if sum.Stats.AverageMonthlyCents != 17500 {
		t.Errorf("average monthly = %d, want 17500", sum.Stats.AverageMonthlyCents)
	}
	if sum.Stats.TopCategory != core.CategoryGroceries {
		t.Errorf("top category = %q, want Groceries", sum.Stats.TopCategory)
	}

	if len(sum.Rankings) != 2 {
		t.Fatalf("expected 2 rankings, got %d", len(sum.Rankings))
	}
	if sum.Rankings[0].Category != core.CategoryGroceries || sum.Rankings[0].TotalCents != 30000 {
		t.Errorf("first ranking = %+v", sum.Rankings[0])
	}
	if sum.Rankings[1].Category != core.CategoryTravel || sum.Rankings[1].TotalCents != 5000 {
		t.Errorf("second ranking = %+v", sum.Rankings[1])
	}
	if math.Abs(sum.Rankings[0].Share-30000.0/35000.0) > 1e-9 {
		t.Errorf("groceries share = %f", sum.Rankings[0].Share)
	}
	if math.Abs(sum.Rankings[1].Share-5000.0/35000.0) > 1e-9 {
		t.Errorf("travel share = %f", sum.Rankings[1].Share)
	}
}

func TestSummarizeSharesSumToOne(t *testing.T) {
	series := buildSeries(t, []core.MonthCategoryTotal{
		mct(2024, 1, core.CategoryGroceries, 3333),
		mct(2024, 1, core.CategoryTravel, 6667),
		mct(2024, 2, core.CategoryHealth, 123),
	})

	sum, err := Summarize(series, WindowAllTime, core.Categories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var total float64
	for _, r := range sum.Rankings {
		total += r.Share
	}
	if math.Abs(total-1.0) > 1e-9 {
		t.Fatalf("shares sum to %f, want 1", total)
	}
}

func TestSummarizeZeroSafety(t *testing.T) {
	sum, err := Summarize(nil, WindowAllTime, core.Categories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Stats.GrandTotalCents != 0 {
		t.Errorf("grand total = %d, want 0", sum.Stats.GrandTotalCents)
	}
	if sum.Stats.AverageMonthlyCents != 0 {
		t.Errorf("average monthly = %d, want 0", sum.Stats.AverageMonthlyCents)
	}
	if sum.Stats.TopCategory != "" {
		t.Errorf("top category = %q, want none", sum.Stats.TopCategory)
	}
	// Every known category still appears, all with zero share.
	if len(sum.Rankings) != len(core.Categories) {
		t.Fatalf("expected %d rankings, got %d", len(core.Categories), len(sum.Rankings))
	}
	for _, r := range sum.Rankings {
		if r.TotalCents != 0 || r.Share != 0 {
			t.Errorf("ranking %s: total=%d share=%f, want zeros", r.Category, r.TotalCents, r.Share)
		}
	}
}

func TestSummarizeTieBreakFollowsKnownOrder(t *testing.T) {
	series := buildSeries(t, []core.MonthCategoryTotal{
		mct(2024, 1, core.CategoryTravel, 500),
		mct(2024, 1, core.CategoryGroceries, 500),
		mct(2024, 1, core.CategoryHealth, 500),
	})

	// Groceries precedes Travel precedes Health in the known order, so
	// equal totals must come back in exactly that order.
	known := []core.Category{core.CategoryGroceries, core.CategoryTravel, core.CategoryHealth}
	sum, err := Summarize(series, WindowAllTime, known)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []core.Category{core.CategoryGroceries, core.CategoryTravel, core.CategoryHealth}
	for i, r := range sum.Rankings {
		if r.Category != want[i] {
			t.Fatalf("rank %d = %s, want %s", i, r.Category, want[i])
		}
	}
}

func TestSummarizeUnknownWindow(t *testing.T) {
	if _, err := Summarize(nil, Window("forever"), core.Categories); !errors.Is(err, ErrUnknownWindow) {
		t.Fatalf("expected ErrUnknownWindow, got %v", err)
	}
}

func TestSummarizeRejectsUnsortedSeries(t *testing.T) {
	series := Series{
		{Year: 2024, Month: 5, Totals: map[core.Category]int64{core.CategoryFood: 100}},
		{Year: 2024, Month: 3, Totals: map[core.Category]int64{core.CategoryFood: 100}},
	}
	if _, err := Summarize(series, WindowAllTime, core.Categories); !errors.Is(err, ErrUnsortedSeries) {
		t.Fatalf("expected ErrUnsortedSeries, got %v", err)
	}

	dup := Series{
		{Year: 2024, Month: 3, Totals: map[core.Category]int64{}},
		{Year: 2024, Month: 3, Totals: map[core.Category]int64{}},
	}
	if _, err := Summarize(dup, WindowAllTime, core.Categories); !errors.Is(err, ErrUnsortedSeries) {
		t.Fatalf("expected ErrUnsortedSeries for duplicate months, got %v", err)
	}
}

func TestSummarizeZeroTotalRankingsHaveNoTopCategory(t *testing.T) {
	// A populated series whose window lands on months with zero totals.
	series := Series{
		{Year: 2024, Month: 1, Label: MonthLabel(2024, 1), Totals: map[core.Category]int64{}},
	}
	sum, err := Summarize(series, WindowAllTime, core.Categories)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Stats.TopCategory != "" {
		t.Fatalf("top category = %q, want none for all-zero rankings", sum.Stats.TopCategory)
	}
}
