package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/fitcount/internal/exercise"
	"github.com/claude/fitcount/internal/sessionlog"
	"github.com/claude/fitcount/internal/tracker"
	"github.com/claude/fitcount/internal/workout"
)

// ErrNoHistory is returned by history queries when no queryable store is configured.
var ErrNoHistory = errors.New("set history store not configured")

// DataSource abstracts the data layer for MCP tools. Both Local (in-process)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	Session(ctx context.Context) (workout.Snapshot, error)
	Exercises(ctx context.Context) ([]exercise.Kind, error)
	QuerySets(ctx context.Context, start, end time.Time, exerciseFilter string) ([]sessionlog.SetRow, error)
	RecentSessions(ctx context.Context, limit int) ([]sessionlog.SessionRow, error)
}

// Local serves MCP requests from the running tracker and history store.
// History may be nil.
type Local struct {
	Tracker *tracker.Tracker
	History sessionlog.History
}

// Compile-time check: Local satisfies DataSource.
var _ DataSource = Local{}

func (l Local) Session(_ context.Context) (workout.Snapshot, error) {
	return l.Tracker.Snapshot()
}

func (l Local) Exercises(_ context.Context) ([]exercise.Kind, error) {
	return l.Tracker.Exercises(), nil
}

func (l Local) QuerySets(ctx context.Context, start, end time.Time, exerciseFilter string) ([]sessionlog.SetRow, error) {
	if l.History == nil {
		return nil, ErrNoHistory
	}
	return l.History.QuerySets(ctx, start, end, exerciseFilter)
}

func (l Local) RecentSessions(ctx context.Context, limit int) ([]sessionlog.SessionRow, error) {
	if l.History == nil {
		return nil, ErrNoHistory
	}
	return l.History.RecentSessions(ctx, limit)
}
