package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/claude/fitcount/internal/pose"
)

// Latest is a single-slot handoff between a producer and the tick loop.
// Put overwrites any sample that has not been taken yet; nothing queues.
type Latest struct {
	mu      sync.Mutex
	frame   pose.Frame
	pending bool
	dropped uint64
}

// Put stores frame as the newest sample, superseding an unconsumed one.
func (l *Latest) Put(frame pose.Frame) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending {
		l.dropped++
	}
	l.frame = frame
	l.pending = true
}

// Take removes and returns the newest sample without blocking.
func (l *Latest) Take() (pose.Frame, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.pending {
		return nil, false
	}
	f := l.frame
	l.frame = nil
	l.pending = false
	return f, true
}

// Dropped returns how many samples were superseded before being taken.
func (l *Latest) Dropped() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dropped
}

// ErrInterval is returned by Run for a non-positive tick interval.
var ErrInterval = errors.New("tick interval must be positive")

// Run calls tick once per interval with the newest sample until ctx is done.
// When no sample arrived since the previous tick, tick receives nil. tick
// runs on the calling goroutine, so ticks never overlap.
func Run(ctx context.Context, interval time.Duration, slot *Latest, tick func(pose.Frame)) error {
	if interval <= 0 {
		return ErrInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			frame, _ := slot.Take()
			tick(frame)
		}
	}
}
