// Package tracker owns the workout session of a running process. Every
// operation takes the tracker lock, so a tick always runs to completion
// before the next operation starts.
package tracker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/fitcount/internal/exercise"
	"github.com/claude/fitcount/internal/metrics"
	"github.com/claude/fitcount/internal/pose"
	"github.com/claude/fitcount/internal/workout"
)

var (
	// ErrSessionActive is returned by Start while another session is running.
	ErrSessionActive = errors.New("a session is already active")

	// ErrNoSession is returned by controls when no session was ever started.
	ErrNoSession = errors.New("no session")
)

// Tracker serializes access to the current workout.Session.
type Tracker struct {
	catalog *exercise.Catalog
	sink    workout.Sink
	log     *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	session *workout.Session
	events  broadcaster
	metrics *metrics.Metrics
}

// New creates a Tracker. sink may be nil.
func New(catalog *exercise.Catalog, sink workout.Sink, log *slog.Logger) *Tracker {
	return &Tracker{catalog: catalog, sink: sink, log: log, now: time.Now}
}

// SetMetrics enables Prometheus instrumentation. Call before serving.
func (t *Tracker) SetMetrics(m *metrics.Metrics) {
	t.metrics = m
}

// Exercises returns the catalog rows.
func (t *Tracker) Exercises() []exercise.Kind {
	return t.catalog.Kinds()
}

// Start begins a new session. A completed previous session is replaced.
func (t *Tracker) Start(ctx context.Context, plan []workout.PlanItem) (workout.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil && t.session.State() == workout.Active {
		return workout.Snapshot{}, ErrSessionActive
	}
	s, err := workout.Start(ctx, plan, workout.Options{
		Catalog: t.catalog,
		Sink:    t.sink,
		Log:     t.log,
		Now:     t.now,
	})
	if err != nil {
		return workout.Snapshot{}, err
	}
	t.session = s
	if t.metrics != nil {
		t.metrics.ActiveSession.Set(1)
	}
	t.publish(EventStarted)
	return s.Snapshot(), nil
}

// Tick feeds one frame to the current session.
func (t *Tracker) Tick(ctx context.Context, frame pose.Frame) (workout.TickOutcome, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return workout.TickOutcome{}, ErrNoSession
	}
	wasComplete := t.session.State() == workout.Complete
	name := t.session.Snapshot().Exercise
	out := t.session.Tick(ctx, frame)
	if !wasComplete {
		t.observeTick(name, out)
	}
	switch {
	case wasComplete:
	case out.SetCompleted:
		t.publish(EventSet)
	default:
		t.publish(EventTick)
	}
	return out, nil
}

// NextSet closes the current set.
func (t *Tracker) NextSet(ctx context.Context) (workout.Snapshot, error) {
	return t.control(func(s *workout.Session) { s.AdvanceSet(ctx) })
}

// NextExercise skips to the next exercise.
func (t *Tracker) NextExercise(ctx context.Context) (workout.Snapshot, error) {
	return t.control(func(s *workout.Session) { s.AdvanceExercise(ctx) })
}

// End terminates the current session and returns its summary.
func (t *Tracker) End(ctx context.Context) (workout.Summary, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return workout.Summary{}, ErrNoSession
	}
	if t.session.State() == workout.Complete {
		sum, _ := t.session.Summary()
		return sum, nil
	}
	sum := t.session.End(ctx)
	t.observeComplete()
	t.publish(EventComplete)
	return sum, nil
}

// Snapshot returns the current session state.
func (t *Tracker) Snapshot() (workout.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return workout.Snapshot{}, ErrNoSession
	}
	return t.session.Snapshot(), nil
}

// Summary returns the summary of the current session once it is complete.
func (t *Tracker) Summary() (workout.Summary, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return workout.Summary{}, false
	}
	return t.session.Summary()
}

func (t *Tracker) control(fn func(*workout.Session)) (workout.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.session == nil {
		return workout.Snapshot{}, ErrNoSession
	}
	if t.session.State() == workout.Active {
		fn(t.session)
		if t.session.State() == workout.Complete {
			t.observeComplete()
		}
		t.publish(EventControl)
	}
	return t.session.Snapshot(), nil
}

func (t *Tracker) observeTick(name string, out workout.TickOutcome) {
	if t.metrics == nil {
		return
	}
	t.metrics.Ticks.Inc()
	if out.Stage == exercise.LabelNoSubject {
		t.metrics.NoSubjectTicks.Inc()
	}
	if out.RepCounted {
		t.metrics.Reps.WithLabelValues(name).Inc()
	}
	if out.SetCompleted {
		t.metrics.Sets.WithLabelValues(name).Inc()
	}
	if out.Complete {
		t.observeComplete()
	}
}

// observeComplete must be called with t.mu held, once per session.
func (t *Tracker) observeComplete() {
	if t.metrics == nil {
		return
	}
	sum, _ := t.session.Summary()
	outcome := "completed"
	if sum.Forced {
		outcome = "ended"
	}
	t.metrics.Sessions.WithLabelValues(outcome).Inc()
	t.metrics.ActiveSession.Set(0)
	if sum.FlushError != "" {
		t.metrics.SinkFailures.Inc()
	}
}
