// Package sessionlog persists completed workout sets. Every store is
// append-only: records are inserted, never rewritten.
package sessionlog

import (
	"context"
	"errors"
	"time"

	"github.com/claude/fitcount/internal/workout"
)

// SetRow is a persisted set record with the session it belongs to.
type SetRow struct {
	SessionID string `json:"session_id"`
	workout.SetRecord
}

// SessionRow is a persisted session summary.
type SessionRow struct {
	workout.SessionMeta
	Sets      int `json:"sets"`
	TotalReps int `json:"total_reps"`
}

// History is a queryable store of past sessions.
type History interface {
	QuerySets(ctx context.Context, start, end time.Time, exerciseFilter string) ([]SetRow, error)
	RecentSessions(ctx context.Context, limit int) ([]SessionRow, error)
}

// Multi fans a write out to every sink. A failing sink does not stop the
// others; all errors are joined.
type Multi []workout.Sink

// WriteSets implements workout.Sink.
func (m Multi) WriteSets(ctx context.Context, meta workout.SessionMeta, records []workout.SetRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.WriteSets(ctx, meta, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func totals(records []workout.SetRecord) (sets, reps int) {
	for _, r := range records {
		reps += r.Reps
	}
	return len(records), reps
}

const defaultSessionLimit = 20
