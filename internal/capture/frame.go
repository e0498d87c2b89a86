// Package capture is the boundary between a pose source and the tracker:
// it decodes landmark frames and hands the newest one to a cadence loop.
package capture

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/claude/fitcount/internal/pose"
)

// Sample is one landmark frame on the wire. A nil Landmarks slice means the
// source produced no sample for this tick.
type Sample struct {
	Time      time.Time       `json:"ts,omitzero"`
	Landmarks []pose.Landmark `json:"landmarks"`
}

// Frame converts the sample to a pose.Frame, nil when there was no sample.
func (s *Sample) Frame() pose.Frame {
	if s == nil || s.Landmarks == nil {
		return nil
	}
	return pose.NewFrame(s.Landmarks)
}

// Decoder reads newline-delimited JSON samples. Blank lines are skipped and
// a "null" line decodes to a nil sample.
type Decoder struct {
	scanner *bufio.Scanner
	line    int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Decoder{scanner: sc}
}

// Next returns the next sample. It returns io.EOF when the input is exhausted.
func (d *Decoder) Next() (*Sample, error) {
	for d.scanner.Scan() {
		d.line++
		line := bytes.TrimSpace(d.scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var s *Sample
		if err := json.Unmarshal(line, &s); err != nil {
			return nil, fmt.Errorf("line %d: decoding sample: %w", d.line, err)
		}
		return s, nil
	}
	if err := d.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	return nil, io.EOF
}
