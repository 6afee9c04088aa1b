package export

import (
	"bytes"
	"fmt"
	"time"

	"spendsight/internal/analytics"
	"spendsight/internal/core"

	"github.com/xuri/excelize/v2"
)

const (
	overviewSheet = "Overview"
	monthlySheet  = "Monthly"
	rankingsSheet = "Rankings"
)

// BuildSummaryWorkbook renders a summary into an XLSX workbook with three
// sheets: overview stats, the monthly series, and category rankings.
// Returns the file bytes and a suggested filename.
func BuildSummaryWorkbook(summary analytics.Summary, categories []core.Category) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", overviewSheet)
	if err := writeOverview(f, summary); err != nil {
		return nil, "", err
	}

	if _, err := f.NewSheet(monthlySheet); err != nil {
		return nil, "", fmt.Errorf("create sheet %s: %w", monthlySheet, err)
	}
	if err := writeMonthly(f, summary, categories); err != nil {
		return nil, "", err
	}

	if _, err := f.NewSheet(rankingsSheet); err != nil {
		return nil, "", fmt.Errorf("create sheet %s: %w", rankingsSheet, err)
	}
	if err := writeRankings(f, summary); err != nil {
		return nil, "", err
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, "", fmt.Errorf("write workbook: %w", err)
	}

	filename := fmt.Sprintf("spendsight-%s-%s.xlsx", summary.Window, time.Now().Format("2006-01-02"))
	return buf.Bytes(), filename, nil
}

func writeOverview(f *excelize.File, summary analytics.Summary) error {
	topCategory := "none"
	if summary.Stats.TopCategory != "" {
		topCategory = string(summary.Stats.TopCategory)
	}

	rows := [][]any{
		{"Window", string(summary.Window)},
		{"Months", len(summary.Series)},
		{"Grand Total", centsToUnits(summary.Stats.GrandTotalCents)},
		{"Average Monthly", centsToUnits(summary.Stats.AverageMonthlyCents)},
		{"Top Category", topCategory},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("overview cell: %w", err)
		}
		if err := f.SetSheetRow(overviewSheet, cell, &row); err != nil {
			return fmt.Errorf("write overview row %d: %w", i+1, err)
		}
	}
	return nil
}

func writeMonthly(f *excelize.File, summary analytics.Summary, categories []core.Category) error {
	header := []any{"Month"}
	for _, cat := range categories {
		header = append(header, string(cat))
	}
	header = append(header, "Total")
	if err := f.SetSheetRow(monthlySheet, "A1", &header); err != nil {
		return fmt.Errorf("write monthly header: %w", err)
	}

	for i, bucket := range summary.Series {
		row := []any{bucket.Label}
		var monthTotal int64
		for _, cat := range categories {
			cents := bucket.Totals[cat]
			monthTotal += cents
			row = append(row, centsToUnits(cents))
		}
		row = append(row, centsToUnits(monthTotal))

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("monthly cell: %w", err)
		}
		if err := f.SetSheetRow(monthlySheet, cell, &row); err != nil {
			return fmt.Errorf("write monthly row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeRankings(f *excelize.File, summary analytics.Summary) error {
	header := []any{"Rank", "Category", "Total", "Share"}
	if err := f.SetSheetRow(rankingsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write rankings header: %w", err)
	}

	for i, ranking := range summary.Rankings {
		row := []any{
			i + 1,
			string(ranking.Category),
			centsToUnits(ranking.TotalCents),
			ranking.Share,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("rankings cell: %w", err)
		}
		if err := f.SetSheetRow(rankingsSheet, cell, &row); err != nil {
			return fmt.Errorf("write rankings row %d: %w", i+2, err)
		}
	}
	return nil
}

func centsToUnits(cents int64) float64 {
	return float64(cents) / 100.0
}
