package sessionlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/claude/fitcount/internal/workout"
)

var loggedAt = time.Date(2026, 5, 2, 18, 4, 9, 0, time.Local)

func sampleRecords() []workout.SetRecord {
	return []workout.SetRecord{
		{Timestamp: loggedAt, Exercise: "Squats", Set: 1, Reps: 10},
		{Timestamp: loggedAt.Add(time.Minute), Exercise: "Squats", Set: 2, Reps: 8},
	}
}

// TestCSVHeaderWrittenOnce verifies that two sessions appended to the same
// file share a single header row.
func TestCSVHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "session_log.csv")
	sink := NewCSV(path)
	ctx := context.Background()

	if err := sink.WriteSets(ctx, workout.SessionMeta{ID: "a"}, sampleRecords()); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := sink.WriteSets(ctx, workout.SessionMeta{ID: "b"}, sampleRecords()[:1]); err != nil {
		t.Fatalf("second write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	want := []string{
		"Timestamp,Exercise,Set,Reps",
		"2026-05-02 18:04:09,Squats,1,10",
		"2026-05-02 18:05:09,Squats,2,8",
		"2026-05-02 18:04:09,Squats,1,10",
	}
	if len(lines) != len(want) {
		t.Fatalf("lines = %d, want %d:\n%s", len(lines), len(want), data)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

// TestCSVEmptyBatch verifies an empty batch does not create the file.
func TestCSVEmptyBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session_log.csv")
	if err := NewCSV(path).WriteSets(context.Background(), workout.SessionMeta{}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file exists after empty write (stat err = %v)", err)
	}
}

// TestCSVUnwritableDir verifies a persistence failure surfaces as an error.
func TestCSVUnwritableDir(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	sink := NewCSV(filepath.Join(blocker, "session_log.csv"))
	if err := sink.WriteSets(context.Background(), workout.SessionMeta{}, sampleRecords()); err == nil {
		t.Fatal("expected error writing under a regular file")
	}
}
