package server

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/claude/fitcount/internal/sessionlog"
	"github.com/claude/fitcount/internal/workout"
	"github.com/google/go-cmp/cmp"
)

func TestDailyReps(t *testing.T) {
	day1 := time.Date(2026, 4, 1, 9, 0, 0, 0, time.Local)
	day2 := day1.AddDate(0, 0, 2)
	rows := []sessionlog.SetRow{
		{SetRecord: workout.SetRecord{Timestamp: day1, Exercise: "Squats", Set: 1, Reps: 10}},
		{SetRecord: workout.SetRecord{Timestamp: day1.Add(time.Minute), Exercise: "Squats", Set: 2, Reps: 8}},
		{SetRecord: workout.SetRecord{Timestamp: day2, Exercise: "Pushups", Set: 1, Reps: 12}},
	}

	days, series := dailyReps(rows)
	if diff := cmp.Diff([]string{"2026-04-01", "2026-04-03"}, days); diff != "" {
		t.Errorf("days mismatch (-want +got):\n%s", diff)
	}

	values := func(name string) []any {
		var out []any
		for _, d := range series[name] {
			out = append(out, d.Value)
		}
		return out
	}
	if diff := cmp.Diff([]any{18, 0}, values("Squats")); diff != "" {
		t.Errorf("squats mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]any{0, 12}, values("Pushups")); diff != "" {
		t.Errorf("pushups mismatch (-want +got):\n%s", diff)
	}
}

func TestSetsChartHTML(t *testing.T) {
	s := newTestServer(t, &fakeHistory{}, nil)
	rec := do(t, s, http.MethodGet, "/api/v1/sets/chart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "Reps per day") {
		t.Error("chart title missing from page")
	}
}
