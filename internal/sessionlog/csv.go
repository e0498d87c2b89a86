package sessionlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/claude/fitcount/internal/workout"
)

// TimestampLayout is the CSV timestamp format (local time, second precision).
const TimestampLayout = "2006-01-02 15:04:05"

var csvHeader = []string{"Timestamp", "Exercise", "Set", "Reps"}

// CSV appends set records to a CSV file. The header row is written once,
// when the file is first created.
type CSV struct {
	path string
	mu   sync.Mutex
}

// NewCSV returns a CSV sink writing to path.
func NewCSV(path string) *CSV {
	return &CSV{path: path}
}

// Path returns the file the sink appends to.
func (c *CSV) Path() string { return c.path }

// WriteSets implements workout.Sink.
func (c *CSV) WriteSets(_ context.Context, _ workout.SessionMeta, records []workout.SetRecord) error {
	if len(records) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if dir := filepath.Dir(c.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating log dir %s: %w", dir, err)
		}
	}

	_, err := os.Stat(c.path)
	isNew := errors.Is(err, fs.ErrNotExist)

	f, err := os.OpenFile(c.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening session log: %w", err)
	}

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for _, r := range records {
		row := []string{
			r.Timestamp.Local().Format(TimestampLayout),
			r.Exercise,
			strconv.Itoa(r.Set),
			strconv.Itoa(r.Reps),
		}
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("writing set record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flushing session log: %w", err)
	}
	return f.Close()
}
