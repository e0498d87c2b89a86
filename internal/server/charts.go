package server

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"

	"github.com/claude/fitcount/internal/sessionlog"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleSetsChart renders daily reps per exercise as a stacked bar chart (HTML).
func (s *Server) handleSetsChart(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "set history store not configured"})
		return
	}

	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	rows, err := s.history.QuerySets(r.Context(), start, end, r.URL.Query().Get("exercise"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	days, series := dailyReps(rows)

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "fitcount", Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Reps per day", Subtitle: fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02"))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(days)
	for _, name := range sortedKeys(series) {
		bar.AddSeries(name, series[name], charts.WithBarChartOpts(opts.BarChart{Stack: "reps"}))
	}

	page := components.NewPage()
	page.AddCharts(bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": fmt.Sprintf("render error: %v", err)})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// dailyReps buckets set rows by local calendar day. Every series has one
// value per day so stacked bars line up.
func dailyReps(rows []sessionlog.SetRow) ([]string, map[string][]opts.BarData) {
	totals := map[string]map[string]int{}
	daySet := map[string]bool{}
	for _, r := range rows {
		day := r.Timestamp.Local().Format("2006-01-02")
		daySet[day] = true
		if totals[r.Exercise] == nil {
			totals[r.Exercise] = map[string]int{}
		}
		totals[r.Exercise][day] += r.Reps
	}

	days := sortedKeys(daySet)
	series := make(map[string][]opts.BarData, len(totals))
	for name, byDay := range totals {
		data := make([]opts.BarData, len(days))
		for i, d := range days {
			data[i] = opts.BarData{Value: byDay[d]}
		}
		series[name] = data
	}
	return days, series
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
