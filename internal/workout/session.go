package workout

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/claude/fitcount/internal/exercise"
	"github.com/claude/fitcount/internal/pose"
	"github.com/google/uuid"
)

// Options configures a Session.
type Options struct {
	Catalog *exercise.Catalog
	Sink    Sink         // optional
	Log     *slog.Logger // optional
	Now     func() time.Time
}

// Session is the workout sequencer. It owns the plan, the active counter
// and the set log. A Session is not safe for concurrent use; callers must
// serialize operations.
type Session struct {
	id      string
	plan    []step
	sink    Sink
	log     *slog.Logger
	now     func() time.Time
	started time.Time

	state   State
	index   int // position in plan; len(plan) once complete
	set     int // 1-based
	counter *exercise.Counter
	records []SetRecord
	summary Summary
}

// Start validates the plan and begins at its first exercise. Items with
// non-positive sets or reps are dropped; if nothing remains ErrEmptyPlan is
// returned.
func Start(ctx context.Context, plan []PlanItem, opts Options) (*Session, error) {
	if opts.Catalog == nil {
		return nil, fmt.Errorf("workout: catalog is required")
	}
	log := opts.Log
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var steps []step
	for _, item := range plan {
		if item.Sets <= 0 || item.Reps <= 0 {
			log.Debug("dropping plan item", "exercise", item.Exercise, "sets", item.Sets, "reps", item.Reps)
			continue
		}
		kind, ok := opts.Catalog.Lookup(item.Exercise)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownExercise, item.Exercise)
		}
		steps = append(steps, step{kind: kind, sets: item.Sets, reps: item.Reps})
	}
	if len(steps) == 0 {
		return nil, ErrEmptyPlan
	}

	s := &Session{
		id:      uuid.NewString(),
		plan:    steps,
		sink:    opts.Sink,
		log:     log,
		now:     now,
		started: now(),
		state:   Active,
		index:   -1,
	}
	s.log = log.With("session", s.id)
	s.log.Info("session started", "exercises", len(steps))
	s.nextExercise(ctx)
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the lifecycle state.
func (s *Session) State() State { return s.state }

// Records returns a copy of the sets logged so far.
func (s *Session) Records() []SetRecord {
	return append([]SetRecord(nil), s.records...)
}

// Summary returns the end-of-session summary. ok is false until the session
// is complete.
func (s *Session) Summary() (Summary, bool) {
	return s.summary, s.state == Complete
}

// Tick feeds one frame to the active counter. Reaching the target rep count
// completes the set immediately. A nil frame is a tick without a sample.
func (s *Session) Tick(ctx context.Context, frame pose.Frame) TickOutcome {
	if s.state != Active {
		return TickOutcome{Snapshot: s.Snapshot()}
	}
	var out TickOutcome
	out.RepCounted = s.counter.Process(frame)
	if out.RepCounted && s.counter.Count() >= s.plan[s.index].reps {
		s.AdvanceSet(ctx)
		out.SetCompleted = true
	}
	out.Snapshot = s.Snapshot()
	return out
}

// AdvanceSet closes the current set, logging it if any reps were made, and
// moves to the next set or the next exercise.
func (s *Session) AdvanceSet(ctx context.Context) {
	if s.state != Active {
		return
	}
	s.recordSet()
	if s.set < s.plan[s.index].sets {
		s.set++
		s.counter.Reset()
		s.log.Info("next set", "exercise", s.counter.Kind().Name, "set", s.set)
		return
	}
	s.nextExercise(ctx)
}

// AdvanceExercise skips the remaining sets of the current exercise. The
// in-progress set is logged first if it has reps.
func (s *Session) AdvanceExercise(ctx context.Context) {
	if s.state != Active {
		return
	}
	s.recordSet()
	s.nextExercise(ctx)
}

// End terminates the session early, logging the in-progress set if it has
// reps. It returns the summary and is a no-op on a completed session.
func (s *Session) End(ctx context.Context) Summary {
	if s.state == Active {
		s.recordSet()
		s.complete(ctx, true)
	}
	return s.summary
}

// Snapshot returns the current presentation state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionID: s.id,
		State:     s.state,
		Step:      s.index + 1,
		Steps:     len(s.plan),
		Complete:  s.state == Complete,
	}
	if s.state != Active {
		snap.Step = len(s.plan)
		return snap
	}
	cur := s.plan[s.index]
	snap.Exercise = cur.kind.Name
	snap.Stage = s.counter.Label()
	snap.Reps = s.counter.Count()
	snap.TargetReps = cur.reps
	snap.Set = s.set
	snap.TargetSets = cur.sets
	return snap
}

func (s *Session) recordSet() {
	reps := s.counter.Count()
	if reps <= 0 {
		return
	}
	rec := SetRecord{
		Timestamp: s.now().Local().Truncate(time.Second),
		Exercise:  s.counter.Kind().Name,
		Set:       s.set,
		Reps:      reps,
	}
	s.records = append(s.records, rec)
	s.log.Info("set logged", "exercise", rec.Exercise, "set", rec.Set, "reps", rec.Reps)
}

func (s *Session) nextExercise(ctx context.Context) {
	s.index++
	if s.index == len(s.plan) {
		s.complete(ctx, false)
		return
	}
	cur := s.plan[s.index]
	s.counter = exercise.NewCounter(cur.kind)
	s.set = 1
	s.log.Info("next exercise", "exercise", cur.kind.Name, "sets", cur.sets, "reps", cur.reps)
}

func (s *Session) complete(ctx context.Context, forced bool) {
	s.state = Complete
	s.index = len(s.plan)
	meta := SessionMeta{ID: s.id, StartedAt: s.started, EndedAt: s.now(), Forced: forced}
	s.summary = summarize(meta, s.records)

	if s.sink != nil && len(s.records) > 0 {
		if err := s.sink.WriteSets(ctx, meta, s.Records()); err != nil {
			s.log.Error("flushing session log", "error", err)
			s.summary.FlushError = err.Error()
		}
	}
	s.log.Info("session complete",
		"forced", forced,
		"sets", len(s.records),
		"total_reps", s.summary.TotalReps,
	)
}
