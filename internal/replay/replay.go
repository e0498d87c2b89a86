// Package replay feeds recorded landmark frames through the tracker.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/claude/fitcount/internal/capture"
	"github.com/claude/fitcount/internal/exercise"
	"github.com/claude/fitcount/internal/pose"
	"github.com/claude/fitcount/internal/tracker"
)

// Stats tracks replay progress.
type Stats struct {
	FramesRead     int
	FramesDropped  uint64
	Ticks          int
	NoSubjectTicks int
	RepsCounted    int
	SetsCompleted  int
	Complete       bool
}

// Replayer drives a started tracker session from an NDJSON frame stream.
type Replayer struct {
	tracker  *tracker.Tracker
	log      *slog.Logger
	interval time.Duration
	stats    Stats

	// framesRead is shared with the paced producer, which may outlive Replay
	// while blocked on an input that never ends.
	framesRead atomic.Int64
}

// New creates a Replayer. With a zero interval every frame is one tick.
// Otherwise frames are released at their recorded pace (or one per interval
// when untimed) and the tracker ticks on its own cadence, so frames that
// arrive between ticks are superseded.
func New(tr *tracker.Tracker, log *slog.Logger, interval time.Duration) *Replayer {
	return &Replayer{tracker: tr, log: log, interval: interval}
}

// Replay reads frames from r until the input ends or the plan completes.
func (rp *Replayer) Replay(ctx context.Context, r io.Reader) (*Stats, error) {
	dec := capture.NewDecoder(r)
	var err error
	if rp.interval > 0 {
		err = rp.replayPaced(ctx, dec)
	} else {
		err = rp.replaySequential(ctx, dec)
	}
	rp.stats.FramesRead = int(rp.framesRead.Load())
	return &rp.stats, err
}

func (rp *Replayer) replaySequential(ctx context.Context, dec *capture.Decoder) error {
	for {
		s, err := dec.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		n := rp.framesRead.Add(1)

		done, err := rp.tick(ctx, s.Frame())
		if err != nil {
			return err
		}
		if done {
			rp.log.Info("plan complete, remaining frames ignored", "frames_read", n)
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (rp *Replayer) replayPaced(parent context.Context, dec *capture.Decoder) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	slot := &capture.Latest{}
	produced := make(chan error, 1)
	go func() {
		produced <- rp.produce(ctx, dec, slot)
		// Give the loop time to take the final sample.
		select {
		case <-time.After(2 * rp.interval):
		case <-ctx.Done():
		}
		cancel()
	}()

	var tickErr error
	runErr := capture.Run(ctx, rp.interval, slot, func(frame pose.Frame) {
		done, err := rp.tick(ctx, frame)
		if err != nil {
			tickErr = err
		}
		if done || err != nil {
			cancel()
		}
	})
	rp.stats.FramesDropped = slot.Dropped()

	// A producer blocked in a read cannot be interrupted, so it is only
	// collected when it already finished.
	var prodErr error
	select {
	case prodErr = <-produced:
	default:
	}

	switch {
	case tickErr != nil:
		return tickErr
	case prodErr != nil:
		return prodErr
	case parent.Err() != nil:
		return parent.Err()
	case runErr != nil && !errors.Is(runErr, context.Canceled):
		return runErr
	}
	return nil
}

// produce releases samples into slot at their recorded pace.
func (rp *Replayer) produce(ctx context.Context, dec *capture.Decoder, slot *capture.Latest) error {
	var prev time.Time
	for {
		s, err := dec.Next()
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		n := rp.framesRead.Add(1)

		wait := rp.interval
		if s != nil && !s.Time.IsZero() {
			if !prev.IsZero() {
				wait = s.Time.Sub(prev)
			}
			prev = s.Time
		}
		if n > 1 && wait > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(wait):
			}
		}
		if s != nil {
			slot.Put(s.Frame())
		}
	}
}

func (rp *Replayer) tick(ctx context.Context, frame pose.Frame) (bool, error) {
	out, err := rp.tracker.Tick(ctx, frame)
	if err != nil {
		return false, fmt.Errorf("tick %d: %w", rp.stats.Ticks+1, err)
	}
	rp.stats.Ticks++
	if out.Stage == exercise.LabelNoSubject {
		rp.stats.NoSubjectTicks++
	}
	if out.RepCounted {
		rp.stats.RepsCounted++
	}
	if out.SetCompleted {
		rp.stats.SetsCompleted++
		rp.log.Info("set complete", "sets_completed", rp.stats.SetsCompleted, "next_exercise", out.Exercise, "next_set", out.Set)
	}
	rp.stats.Complete = out.Complete
	return out.Complete, nil
}
