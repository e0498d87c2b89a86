package exercise

import "github.com/claude/fitcount/internal/pose"

// Counter is the repetition state machine for one exercise kind.
// It is not safe for concurrent use.
type Counter struct {
	kind    Kind
	stage   Stage
	reps    int
	started bool
}

// NewCounter returns a Counter at the kind's resting stage with zero reps.
func NewCounter(kind Kind) *Counter {
	return &Counter{kind: kind, stage: kind.Initial}
}

// Kind returns the exercise this counter measures.
func (c *Counter) Kind() Kind { return c.kind }

// Count returns the repetitions completed since the last reset.
func (c *Counter) Count() int { return c.reps }

// Stage returns the current stage.
func (c *Counter) Stage() Stage { return c.stage }

// Label returns the presentation label for the current stage, or START
// before the first frame after construction or reset.
func (c *Counter) Label() string {
	if !c.started {
		return LabelStart
	}
	return c.kind.label(c.stage)
}

// Process consumes one frame and reports whether it completed a repetition.
// A frame missing any of the kind's joints moves the counter to
// StageNoSubject without touching the count.
func (c *Counter) Process(frame pose.Frame) bool {
	c.started = true

	j := c.kind.Joints
	pts, ok := frame.Lookup(j.A, j.Vertex, j.C)
	if !ok {
		c.stage = StageNoSubject
		return false
	}
	angle := pose.Angle(pts[0], pts[1], pts[2])

	// Re-entering after a gap compares from the resting stage.
	from := c.stage
	if from == StageNoSubject {
		from = c.kind.Initial
	}

	t := c.kind.Thresholds
	switch {
	case from == StageExtended && angle < t.ContractBelow:
		c.stage = StageContracted
	case from == StageContracted && angle > t.ExtendAbove:
		c.stage = StageExtended
		c.reps++
		return true
	default:
		c.stage = from
	}
	return false
}

// Reset zeroes the count and returns to the resting stage.
func (c *Counter) Reset() {
	c.reps = 0
	c.stage = c.kind.Initial
	c.started = false
}
