package replay

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/claude/fitcount/internal/capture"
	"github.com/claude/fitcount/internal/exercise"
	"github.com/claude/fitcount/internal/pose"
	"github.com/claude/fitcount/internal/tracker"
	"github.com/claude/fitcount/internal/workout"
)

func newTracker(t *testing.T, plan []workout.PlanItem) *tracker.Tracker {
	t.Helper()
	catalog, err := exercise.NewCatalog(exercise.Builtin()...)
	if err != nil {
		t.Fatal(err)
	}
	tr := tracker.New(catalog, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if _, err := tr.Start(context.Background(), plan); err != nil {
		t.Fatal(err)
	}
	return tr
}

// frames renders one NDJSON line per knee angle; a negative angle is a null line.
func frames(t *testing.T, degs ...float64) string {
	t.Helper()
	return timedFrames(t, time.Time{}, 0, degs...)
}

// timedFrames is frames with a timestamp on every line, step apart from start.
func timedFrames(t *testing.T, start time.Time, step time.Duration, degs ...float64) string {
	t.Helper()
	var b strings.Builder
	for i, deg := range degs {
		if deg < 0 {
			b.WriteString("null\n")
			continue
		}
		rad := deg * math.Pi / 180
		s := capture.Sample{Landmarks: []pose.Landmark{
			{ID: pose.RightHip, X: 100, Y: 0},
			{ID: pose.RightKnee, X: 0, Y: 0},
			{ID: pose.RightAnkle, X: 100 * math.Cos(rad), Y: 100 * math.Sin(rad)},
		}}
		if !start.IsZero() {
			s.Time = start.Add(time.Duration(i) * step)
		}
		line, err := json.Marshal(s)
		if err != nil {
			t.Fatal(err)
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func repeat(deg float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = deg
	}
	return out
}

// TestReplaySequential verifies every frame ticks and the replay stops once
// the plan completes.
func TestReplaySequential(t *testing.T) {
	tr := newTracker(t, []workout.PlanItem{{Exercise: "squats", Sets: 2, Reps: 1}})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	input := frames(t, 40, -1, 170, 40, 170, 40, 170, 40)
	stats, err := New(tr, log, 0).Replay(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	// The gap resets to the resting stage, so the first 170 counts nothing.
	if stats.FramesRead != 7 {
		t.Errorf("frames read = %d, want 7", stats.FramesRead)
	}
	if stats.NoSubjectTicks != 1 {
		t.Errorf("no-subject ticks = %d, want 1", stats.NoSubjectTicks)
	}
	if stats.RepsCounted != 2 || stats.SetsCompleted != 2 {
		t.Errorf("reps=%d sets=%d, want 2 2", stats.RepsCounted, stats.SetsCompleted)
	}
	if !stats.Complete {
		t.Error("plan should be complete")
	}
	sum, ok := tr.Summary()
	if !ok || sum.TotalReps != 2 || sum.Forced {
		t.Errorf("summary = %+v ok=%v, want 2 reps, not forced", sum, ok)
	}
}

// TestReplayDecodeError verifies a malformed line stops the replay.
func TestReplayDecodeError(t *testing.T) {
	tr := newTracker(t, []workout.PlanItem{{Exercise: "squats", Sets: 1, Reps: 5}})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	input := frames(t, 40) + "{not json\n"
	stats, err := New(tr, log, 0).Replay(context.Background(), strings.NewReader(input))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want line 2 decode error", err)
	}
	if stats.Ticks != 1 {
		t.Errorf("ticks = %d, want 1", stats.Ticks)
	}
}

// TestReplayPaced verifies the paced loop reads the whole input and stops
// on its own once the input is exhausted.
func TestReplayPaced(t *testing.T) {
	tr := newTracker(t, []workout.PlanItem{{Exercise: "squats", Sets: 1, Reps: 50}})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	stats, err := New(tr, log, 5*time.Millisecond).Replay(ctx, strings.NewReader(frames(t, 40, 170, 40, 170)))
	if err != nil {
		t.Fatal(err)
	}
	if stats.FramesRead != 4 {
		t.Errorf("frames read = %d, want 4", stats.FramesRead)
	}
	if stats.Ticks == 0 {
		t.Error("expected at least one tick")
	}
	if stats.Complete {
		t.Error("plan should not be complete")
	}
}

// TestReplayPacedReturnsOnCompleteWithOpenInput verifies a paced replay
// returns as soon as the plan completes, even though the input stays open
// and the frame reader is still blocked.
func TestReplayPacedReturnsOnCompleteWithOpenInput(t *testing.T) {
	tr := newTracker(t, []workout.PlanItem{{Exercise: "squats", Sets: 1, Reps: 1}})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	pr, pw := io.Pipe()
	t.Cleanup(func() { pr.Close() })

	// Frames arrive faster than ticks so no tick sees an empty slot. The
	// single lockout frame is the last one, so the reader is already blocked
	// on the open pipe when it is counted.
	degs := append(repeat(40, 30), 170)
	input := timedFrames(t, time.Date(2026, 5, 2, 18, 0, 0, 0, time.UTC), 2*time.Millisecond, degs...)
	go func() { _, _ = io.WriteString(pw, input) }()

	type result struct {
		stats *Stats
		err   error
	}
	done := make(chan result, 1)
	go func() {
		stats, err := New(tr, log, 10*time.Millisecond).Replay(context.Background(), pr)
		done <- result{stats, err}
	}()

	var res result
	select {
	case res = <-done:
	case <-time.After(5 * time.Second):
		pr.Close()
		t.Fatal("replay still blocked after the plan completed")
	}
	if res.err != nil {
		t.Fatal(res.err)
	}
	if !res.stats.Complete {
		t.Error("plan should be complete")
	}
	if res.stats.RepsCounted != 1 {
		t.Errorf("reps = %d, want 1", res.stats.RepsCounted)
	}
	if res.stats.FramesRead == 0 {
		t.Error("expected frames to be read")
	}
}
