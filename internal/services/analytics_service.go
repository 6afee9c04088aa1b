package services

import (
	"context"
	"fmt"

	"spendsight/internal/analytics"
	"spendsight/internal/core"
	"spendsight/internal/ports"
)

// AnalyticsService turns stored monthly totals into windowed summaries.
type AnalyticsService struct {
	reader ports.AggregateReader
}

func NewAnalyticsService(reader ports.AggregateReader) *AnalyticsService {
	return &AnalyticsService{reader: reader}
}

// Summary aggregates all stored expenses and summarizes them over window.
func (s *AnalyticsService) Summary(ctx context.Context, window analytics.Window) (analytics.Summary, error) {
	records, err := s.reader.MonthlyCategoryTotals(ctx, ports.ExpenseFilter{})
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("load monthly totals: %w", err)
	}

	series, err := analytics.Aggregate(records)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("aggregate monthly totals: %w", err)
	}

	summary, err := analytics.Summarize(series, window, core.Categories)
	if err != nil {
		return analytics.Summary{}, fmt.Errorf("summarize series: %w", err)
	}

	return summary, nil
}
