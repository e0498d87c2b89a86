package sessionlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/claude/fitcount/internal/workout"
	_ "modernc.org/sqlite"
)

// SQLite stores sessions and sets in a local SQLite database.
type SQLite struct {
	db *sql.DB
}

// Compile-time checks.
var (
	_ workout.Sink = (*SQLite)(nil)
	_ History      = (*SQLite)(nil)
)

// OpenSQLite opens (or creates) the database at dir/fitcount.db.
func OpenSQLite(dir string) (*SQLite, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating sqlite dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "fitcount.db"))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One connection keeps writes serialized.
	db.SetMaxOpenConns(1)

	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id         TEXT PRIMARY KEY,
			started_at INTEGER NOT NULL,
			ended_at   INTEGER NOT NULL,
			forced     INTEGER NOT NULL,
			sets       INTEGER NOT NULL,
			total_reps INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS set_records (
			session_id TEXT NOT NULL,
			seq        INTEGER NOT NULL,
			logged_at  INTEGER NOT NULL,
			exercise   TEXT NOT NULL,
			set_number INTEGER NOT NULL,
			reps       INTEGER NOT NULL,
			PRIMARY KEY (session_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS set_records_logged_at ON set_records (logged_at)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating sqlite schema: %w", err)
		}
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// WriteSets implements workout.Sink.
func (s *SQLite) WriteSets(ctx context.Context, meta workout.SessionMeta, records []workout.SetRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning sqlite tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	sets, reps := totals(records)
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, started_at, ended_at, forced, sets, total_reps)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.StartedAt.Unix(), meta.EndedAt.Unix(), meta.Forced, sets, reps,
	); err != nil {
		return fmt.Errorf("inserting session %s: %w", meta.ID, err)
	}

	// seq is the record's position in the session, so a plan that repeats an
	// exercise keeps every set while a rewrite of the same session is a no-op.
	for i, r := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO set_records (session_id, seq, logged_at, exercise, set_number, reps)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			meta.ID, i, r.Timestamp.Unix(), r.Exercise, r.Set, r.Reps,
		); err != nil {
			return fmt.Errorf("inserting set record: %w", err)
		}
	}
	return tx.Commit()
}

// QuerySets returns sets logged in [start, end), oldest first. A non-empty
// filter matches exercise names case-insensitively as a substring.
func (s *SQLite) QuerySets(ctx context.Context, start, end time.Time, exerciseFilter string) ([]SetRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT session_id, logged_at, exercise, set_number, reps
		 FROM set_records
		 WHERE logged_at >= ? AND logged_at < ?
		   AND (? = '' OR exercise LIKE '%' || ? || '%')
		 ORDER BY logged_at ASC, session_id, seq ASC`,
		start.Unix(), end.Unix(), exerciseFilter, exerciseFilter)
	if err != nil {
		return nil, fmt.Errorf("querying set records: %w", err)
	}
	defer rows.Close()

	var result []SetRow
	for rows.Next() {
		var r SetRow
		var ts int64
		if err := rows.Scan(&r.SessionID, &ts, &r.Exercise, &r.Set, &r.Reps); err != nil {
			return nil, fmt.Errorf("scanning set record: %w", err)
		}
		r.Timestamp = time.Unix(ts, 0).Local()
		result = append(result, r)
	}
	return result, rows.Err()
}

// RecentSessions returns the most recent sessions, newest first.
func (s *SQLite) RecentSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, ended_at, forced, sets, total_reps
		 FROM sessions ORDER BY ended_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []SessionRow
	for rows.Next() {
		var r SessionRow
		var started, ended int64
		if err := rows.Scan(&r.ID, &started, &ended, &r.Forced, &r.Sets, &r.TotalReps); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		r.StartedAt = time.Unix(started, 0).Local()
		r.EndedAt = time.Unix(ended, 0).Local()
		result = append(result, r)
	}
	return result, rows.Err()
}
