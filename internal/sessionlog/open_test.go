package sessionlog

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/claude/fitcount/internal/workout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenCSVAndSQLite(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "logs", "session_log.csv")
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := Open(context.Background(), Options{CSVPath: csvPath, SQLiteDir: filepath.Join(dir, "db")}, log)
	require.NoError(t, err)
	defer st.Close()
	require.NotNil(t, st.Sink)
	require.NotNil(t, st.History)

	meta := workout.SessionMeta{ID: "s1", StartedAt: loggedAt.Add(-time.Minute), EndedAt: loggedAt}
	require.NoError(t, st.Sink.WriteSets(context.Background(), meta, sampleRecords()))

	_, err = os.Stat(csvPath)
	assert.NoError(t, err)

	sessions, err := st.History.RecentSessions(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
}

func TestOpenNothingConfigured(t *testing.T) {
	st, err := Open(context.Background(), Options{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Nil(t, st.Sink)
	assert.Nil(t, st.History)
	st.Close()
}
