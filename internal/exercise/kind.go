// Package exercise turns a stream of landmark frames into repetition counts.
// Every exercise shares one threshold state machine; kinds differ only in
// the joints they measure, their resting stage, and their thresholds.
package exercise

import (
	"fmt"
	"strings"

	"github.com/claude/fitcount/internal/pose"
)

// Stage is the phase of a repetition cycle.
type Stage int

const (
	StageExtended Stage = iota + 1
	StageContracted
	StageNoSubject
)

func (s Stage) String() string {
	switch s {
	case StageExtended:
		return "extended"
	case StageContracted:
		return "contracted"
	case StageNoSubject:
		return "no_subject"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Stage) UnmarshalText(b []byte) error {
	if string(b) == StageNoSubject.String() {
		*s = StageNoSubject
		return nil
	}
	v, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStage accepts "extended" or "contracted" (the only valid resting stages).
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "extended":
		return StageExtended, nil
	case "contracted":
		return StageContracted, nil
	default:
		return 0, fmt.Errorf("invalid stage %q (want extended or contracted)", s)
	}
}

// Labels shown for presentation.
const (
	LabelStart     = "START"
	LabelNoSubject = "NO PERSON"
)

// Triple names the landmarks forming the measured joint; Vertex is the joint itself.
type Triple struct {
	A      int `json:"a" yaml:"a"`
	Vertex int `json:"vertex" yaml:"vertex"`
	C      int `json:"c" yaml:"c"`
}

// Thresholds are the strict crossing points of the state machine in degrees.
type Thresholds struct {
	ContractBelow float64 `json:"contract_below" yaml:"contract_below"`
	ExtendAbove   float64 `json:"extend_above" yaml:"extend_above"`
}

// Kind is one row of the exercise table.
type Kind struct {
	Key             string     `json:"key"`
	Name            string     `json:"name"`
	Joints          Triple     `json:"joints"`
	Initial         Stage      `json:"initial"`
	Thresholds      Thresholds `json:"thresholds"`
	ExtendedLabel   string     `json:"extended_label"`
	ContractedLabel string     `json:"contracted_label"`
}

// Validate checks the row is usable by a Counter.
func (k Kind) Validate() error {
	if k.Key == "" {
		return fmt.Errorf("exercise key is required")
	}
	if k.Name == "" {
		return fmt.Errorf("exercise %s: name is required", k.Key)
	}
	if k.Initial != StageExtended && k.Initial != StageContracted {
		return fmt.Errorf("exercise %s: initial stage must be extended or contracted", k.Key)
	}
	t := k.Thresholds
	if t.ContractBelow <= 0 || t.ExtendAbove > 180 || t.ContractBelow >= t.ExtendAbove {
		return fmt.Errorf("exercise %s: thresholds must satisfy 0 < contract_below (%v) < extend_above (%v) <= 180",
			k.Key, t.ContractBelow, t.ExtendAbove)
	}
	for _, id := range []int{k.Joints.A, k.Joints.Vertex, k.Joints.C} {
		if id < 0 {
			return fmt.Errorf("exercise %s: negative landmark id %d", k.Key, id)
		}
	}
	return nil
}

func (k Kind) label(s Stage) string {
	switch s {
	case StageExtended:
		return k.ExtendedLabel
	case StageContracted:
		return k.ContractedLabel
	case StageNoSubject:
		return LabelNoSubject
	}
	return LabelStart
}

// Squats measures the right knee.
var Squats = Kind{
	Key:             "squats",
	Name:            "Squats",
	Joints:          Triple{A: pose.RightHip, Vertex: pose.RightKnee, C: pose.RightAnkle},
	Initial:         StageExtended,
	Thresholds:      Thresholds{ContractBelow: 90, ExtendAbove: 160},
	ExtendedLabel:   "up",
	ContractedLabel: "down",
}

// Pushups measures the right elbow.
var Pushups = Kind{
	Key:             "pushups",
	Name:            "Pushups",
	Joints:          Triple{A: pose.RightShoulder, Vertex: pose.RightElbow, C: pose.RightWrist},
	Initial:         StageExtended,
	Thresholds:      Thresholds{ContractBelow: 90, ExtendAbove: 160},
	ExtendedLabel:   "up",
	ContractedLabel: "down",
}

// BicepCurls measures the right elbow. The arm hangs straight ("down") at rest.
var BicepCurls = Kind{
	Key:             "bicep_curls",
	Name:            "Bicep Curls",
	Joints:          Triple{A: pose.RightShoulder, Vertex: pose.RightElbow, C: pose.RightWrist},
	Initial:         StageExtended,
	Thresholds:      Thresholds{ContractBelow: 40, ExtendAbove: 160},
	ExtendedLabel:   "down",
	ContractedLabel: "up",
}

// Builtin returns the default exercise table.
func Builtin() []Kind {
	return []Kind{Squats, Pushups, BicepCurls}
}
