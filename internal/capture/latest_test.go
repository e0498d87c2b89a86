package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/claude/fitcount/internal/pose"
)

// TestLatestSupersedes verifies only the newest sample survives.
func TestLatestSupersedes(t *testing.T) {
	var l Latest
	if _, ok := l.Take(); ok {
		t.Fatal("Take on empty slot ok = true")
	}

	l.Put(pose.Frame{1: {X: 1}})
	l.Put(pose.Frame{2: {X: 2}})
	l.Put(pose.Frame{3: {X: 3}})

	f, ok := l.Take()
	if !ok {
		t.Fatal("Take ok = false")
	}
	if _, has := f[3]; !has || len(f) != 1 {
		t.Errorf("frame = %v, want newest", f)
	}
	if l.Dropped() != 2 {
		t.Errorf("dropped = %d, want 2", l.Dropped())
	}
	if _, ok := l.Take(); ok {
		t.Error("second Take ok = true, want empty slot")
	}
}

// TestLatestNilSample verifies a stored "no sample" is distinguishable from
// an empty slot.
func TestLatestNilSample(t *testing.T) {
	var l Latest
	l.Put(nil)
	f, ok := l.Take()
	if !ok || f != nil {
		t.Errorf("Take = %v, %v; want nil, true", f, ok)
	}
}

// TestRunTicksWithoutSamples verifies the loop keeps ticking with nil frames
// when the producer is idle and stops on cancellation.
func TestRunTicksWithoutSamples(t *testing.T) {
	var l Latest
	l.Put(pose.Frame{7: {X: 7}})

	var mu sync.Mutex
	var frames []pose.Frame
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, time.Millisecond, &l, func(f pose.Frame) {
			mu.Lock()
			frames = append(frames, f)
			n := len(frames)
			mu.Unlock()
			if n == 3 {
				cancel()
			}
		})
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(frames) < 3 {
		t.Fatalf("ticks = %d, want >= 3", len(frames))
	}
	if _, ok := frames[0][7]; !ok {
		t.Errorf("first tick = %v, want stored sample", frames[0])
	}
	if frames[1] != nil || frames[2] != nil {
		t.Errorf("idle ticks = %v, %v; want nil", frames[1], frames[2])
	}
}

// TestRunRejectsNonPositiveInterval verifies Run fails without ticking.
func TestRunRejectsNonPositiveInterval(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Millisecond} {
		ticked := false
		err := Run(context.Background(), interval, &Latest{}, func(pose.Frame) { ticked = true })
		if !errors.Is(err, ErrInterval) {
			t.Errorf("Run(%v) err = %v, want ErrInterval", interval, err)
		}
		if ticked {
			t.Errorf("Run(%v) ticked", interval)
		}
	}
}
