package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"spendsight/internal/analytics"
	"spendsight/internal/core"
	"spendsight/internal/export"
	applog "spendsight/internal/log"
)

type monthPayload struct {
	Year       int              `json:"year"`
	Month      int              `json:"month"`
	Label      string           `json:"label"`
	Totals     map[string]int64 `json:"totals"`
	TotalCents int64            `json:"total_cents"`
}

type rankingPayload struct {
	Category   string  `json:"category"`
	TotalCents int64   `json:"total_cents"`
	Share      float64 `json:"share"`
}

type summaryPayload struct {
	Window   string           `json:"window"`
	Months   []monthPayload   `json:"months"`
	Rankings []rankingPayload `json:"rankings"`
	Stats    struct {
		GrandTotalCents     int64  `json:"grand_total_cents"`
		AverageMonthlyCents int64  `json:"average_monthly_cents"`
		TopCategory         string `json:"top_category"`
	} `json:"stats"`
}

func toSummaryPayload(summary analytics.Summary) summaryPayload {
	out := summaryPayload{
		Window:   string(summary.Window),
		Months:   make([]monthPayload, 0, len(summary.Series)),
		Rankings: make([]rankingPayload, 0, len(summary.Rankings)),
	}
	for _, bucket := range summary.Series {
		month := monthPayload{
			Year:   bucket.Year,
			Month:  bucket.Month,
			Label:  bucket.Label,
			Totals: make(map[string]int64, len(bucket.Totals)),
		}
		for cat, cents := range bucket.Totals {
			month.Totals[string(cat)] = cents
			month.TotalCents += cents
		}
		out.Months = append(out.Months, month)
	}
	for _, ranking := range summary.Rankings {
		out.Rankings = append(out.Rankings, rankingPayload{
			Category:   string(ranking.Category),
			TotalCents: ranking.TotalCents,
			Share:      ranking.Share,
		})
	}
	out.Stats.GrandTotalCents = summary.Stats.GrandTotalCents
	out.Stats.AverageMonthlyCents = summary.Stats.AverageMonthlyCents
	out.Stats.TopCategory = string(summary.Stats.TopCategory)
	return out
}

// windowParam resolves the window query parameter, defaulting to all-time.
func windowParam(r *http.Request) (analytics.Window, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("window"))
	if raw == "" {
		return analytics.WindowAllTime, nil
	}
	return analytics.ParseWindow(raw)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	window, err := windowParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, cached, err := s.summaryFor(r, window)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary error", applog.FieldWindow, window, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	if cached {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	writeJSON(w, http.StatusOK, toSummaryPayload(summary))
}

func (s *Server) summaryFor(r *http.Request, window analytics.Window) (analytics.Summary, bool, error) {
	if summary, ok := s.summaryCache.Get(string(window)); ok {
		return summary, true, nil
	}
	summary, err := s.analyticsSvc.Summary(r.Context(), window)
	if err != nil {
		return analytics.Summary{}, false, err
	}
	s.summaryCache.Set(string(window), summary)
	return summary, false, nil
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	window, err := windowParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	summary, _, err := s.summaryFor(r, window)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export summary error", applog.FieldWindow, window, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}

	data, filename, err := export.BuildSummaryWorkbook(summary, core.Categories)
	if err != nil {
		slog.ErrorContext(r.Context(), "Export build error", applog.FieldWindow, window, applog.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to build workbook")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.ErrorContext(r.Context(), "Export write error", applog.FieldError, err)
	}
}
