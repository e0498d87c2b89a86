package capture

import (
	"errors"
	"io"
	"strings"
	"testing"
)

const sampleNDJSON = `{"ts":"2026-05-02T18:04:09Z","landmarks":[{"id":24,"x":320,"y":200},{"id":26,"x":330,"y":300},{"id":28,"x":325,"y":400}]}

null
{"landmarks":[]}
{"ts":"2026-05-02T18:04:10Z"}
`

// TestDecoderSequence verifies frames, gaps and blank lines decode in order.
func TestDecoderSequence(t *testing.T) {
	d := NewDecoder(strings.NewReader(sampleNDJSON))

	s, err := d.Next()
	if err != nil {
		t.Fatalf("first sample: %v", err)
	}
	f := s.Frame()
	if len(f) != 3 {
		t.Fatalf("frame size = %d, want 3", len(f))
	}
	if p := f[26]; p.X != 330 || p.Y != 300 {
		t.Errorf("knee = %+v, want {330 300}", p)
	}
	if s.Time.IsZero() {
		t.Error("timestamp not decoded")
	}

	s, err = d.Next()
	if err != nil {
		t.Fatalf("null sample: %v", err)
	}
	if s != nil || s.Frame() != nil {
		t.Errorf("null line = %+v, want nil sample", s)
	}

	s, _ = d.Next()
	if f := s.Frame(); f == nil || len(f) != 0 {
		t.Errorf("empty landmarks frame = %v, want empty non-nil", f)
	}

	s, _ = d.Next()
	if s.Frame() != nil {
		t.Error("sample without landmarks should have a nil frame")
	}

	if _, err := d.Next(); !errors.Is(err, io.EOF) {
		t.Errorf("err = %v, want io.EOF", err)
	}
}

// TestDecoderBadLine verifies decode errors carry the line number.
func TestDecoderBadLine(t *testing.T) {
	d := NewDecoder(strings.NewReader("null\n{bad json}\n"))
	if _, err := d.Next(); err != nil {
		t.Fatal(err)
	}
	_, err := d.Next()
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want line 2 error", err)
	}
}
