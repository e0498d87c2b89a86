// Package workout sequences a multi-exercise, multi-set plan over a stream of
// landmark frames and builds the session log.
package workout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/claude/fitcount/internal/exercise"
)

var (
	// ErrEmptyPlan is returned by Start when no plan item has positive sets and reps.
	ErrEmptyPlan = errors.New("set reps and sets for at least one exercise")

	// ErrUnknownExercise is returned by Start when a plan item names an exercise
	// missing from the catalog.
	ErrUnknownExercise = errors.New("unknown exercise")
)

// PlanItem is one exercise of a plan.
type PlanItem struct {
	Exercise string `json:"exercise" yaml:"exercise"`
	Sets     int    `json:"sets" yaml:"sets"`
	Reps     int    `json:"reps" yaml:"reps"`
}

// SetRecord is one completed (or partially completed) set.
type SetRecord struct {
	Timestamp time.Time `json:"timestamp"`
	Exercise  string    `json:"exercise"`
	Set       int       `json:"set"`
	Reps      int       `json:"reps"`
}

// SessionMeta identifies the session a batch of records belongs to.
type SessionMeta struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Forced    bool      `json:"forced"`
}

// Sink persists completed set records. Writes are append-only.
type Sink interface {
	WriteSets(ctx context.Context, meta SessionMeta, records []SetRecord) error
}

// State is the session lifecycle.
type State int

const (
	NotStarted State = iota
	Active
	Complete
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Active:
		return "active"
	case Complete:
		return "complete"
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	for _, v := range []State{NotStarted, Active, Complete} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("invalid session state %q", b)
}

// step is a validated plan item bound to its exercise kind.
type step struct {
	kind exercise.Kind
	sets int
	reps int
}

// Snapshot is the read-only view published after every operation.
type Snapshot struct {
	SessionID  string `json:"session_id"`
	State      State  `json:"state"`
	Exercise   string `json:"exercise,omitempty"`
	Stage      string `json:"stage,omitempty"`
	Reps       int    `json:"reps"`
	TargetReps int    `json:"target_reps"`
	Set        int    `json:"set"`
	TargetSets int    `json:"target_sets"`
	Step       int    `json:"step"`
	Steps      int    `json:"steps"`
	Complete   bool   `json:"complete"`
}

// TickOutcome is the result of one Tick.
type TickOutcome struct {
	Snapshot
	RepCounted   bool `json:"rep_counted"`
	SetCompleted bool `json:"set_completed"`
}

// Summary is emitted once when the session completes.
type Summary struct {
	SessionMeta
	Records    []SetRecord    `json:"records"`
	TotalReps  int            `json:"total_reps"`
	RepsByName map[string]int `json:"reps_by_exercise"`
	FlushError string         `json:"flush_error,omitempty"`
}

func summarize(meta SessionMeta, records []SetRecord) Summary {
	s := Summary{
		SessionMeta: meta,
		Records:     append([]SetRecord(nil), records...),
		RepsByName:  make(map[string]int),
	}
	for _, r := range records {
		s.TotalReps += r.Reps
		s.RepsByName[r.Exercise] += r.Reps
	}
	return s
}

// ParsePlan reads a compact plan such as "squats:3x10,pushups:2x8": each
// item is exercise:SETSxREPS.
func ParsePlan(s string) ([]PlanItem, error) {
	var plan []PlanItem
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		name, counts, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("plan item %q: want exercise:SETSxREPS", item)
		}
		setsStr, repsStr, ok := strings.Cut(strings.ToLower(counts), "x")
		if !ok {
			return nil, fmt.Errorf("plan item %q: want exercise:SETSxREPS", item)
		}
		sets, err := strconv.Atoi(strings.TrimSpace(setsStr))
		if err != nil {
			return nil, fmt.Errorf("plan item %q: sets: %w", item, err)
		}
		reps, err := strconv.Atoi(strings.TrimSpace(repsStr))
		if err != nil {
			return nil, fmt.Errorf("plan item %q: reps: %w", item, err)
		}
		plan = append(plan, PlanItem{Exercise: strings.TrimSpace(name), Sets: sets, Reps: reps})
	}
	return plan, nil
}
