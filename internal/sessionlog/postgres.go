package sessionlog

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/fitcount/internal/workout"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres wraps a pgxpool.Pool holding the session history.
type Postgres struct {
	Pool *pgxpool.Pool
}

// Compile-time checks.
var (
	_ workout.Sink = (*Postgres)(nil)
	_ History      = (*Postgres)(nil)
)

// NewPostgres connects a pool and verifies it with a ping.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Postgres{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.Pool.Close()
}

// RunMigrations applies all pending embedded migrations.
func RunMigrations(dsn string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migrations: %w", err)
	}
	return nil
}

// WriteSets implements workout.Sink. The session row and all of its sets are
// inserted in one transaction.
func (p *Postgres) WriteSets(ctx context.Context, meta workout.SessionMeta, records []workout.SetRecord) error {
	sessionID, err := uuid.Parse(meta.ID)
	if err != nil {
		return fmt.Errorf("invalid session id %q: %w", meta.ID, err)
	}

	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	sets, reps := totals(records)
	if _, err := tx.Exec(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, forced, sets, total_reps)
		 VALUES ($1, $2, $3, $4, $5, $6) ON CONFLICT DO NOTHING`,
		sessionID, meta.StartedAt, meta.EndedAt, meta.Forced, sets, reps,
	); err != nil {
		return fmt.Errorf("inserting session %s: %w", meta.ID, err)
	}

	if len(records) > 0 {
		query := `INSERT INTO set_records (session_id, seq, logged_at, exercise, set_number, reps) VALUES `
		args := make([]any, 0, len(records)*6)
		valueStrings := make([]string, 0, len(records))
		for i, r := range records {
			base := i * 6
			valueStrings = append(valueStrings, fmt.Sprintf("($%d,$%d,$%d,$%d,$%d,$%d)",
				base+1, base+2, base+3, base+4, base+5, base+6))
			args = append(args, sessionID, i, r.Timestamp, r.Exercise, r.Set, r.Reps)
		}
		query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("inserting set records: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing session %s: %w", meta.ID, err)
	}
	return nil
}

// QuerySets returns sets logged in [start, end), oldest first.
func (p *Postgres) QuerySets(ctx context.Context, start, end time.Time, exerciseFilter string) ([]SetRow, error) {
	rows, err := p.Pool.Query(ctx,
		`SELECT session_id, logged_at, exercise, set_number, reps
		 FROM set_records
		 WHERE logged_at >= $1 AND logged_at < $2
		   AND ($3::text = '' OR exercise ILIKE '%' || $3::text || '%')
		 ORDER BY logged_at ASC, session_id, seq ASC`,
		start, end, exerciseFilter)
	if err != nil {
		return nil, fmt.Errorf("querying set records: %w", err)
	}
	defer rows.Close()

	var result []SetRow
	for rows.Next() {
		var r SetRow
		var id uuid.UUID
		if err := rows.Scan(&id, &r.Timestamp, &r.Exercise, &r.Set, &r.Reps); err != nil {
			return nil, fmt.Errorf("scanning set record: %w", err)
		}
		r.SessionID = id.String()
		r.Timestamp = r.Timestamp.Local()
		result = append(result, r)
	}
	return result, rows.Err()
}

// RecentSessions returns the most recent sessions, newest first.
func (p *Postgres) RecentSessions(ctx context.Context, limit int) ([]SessionRow, error) {
	if limit <= 0 {
		limit = defaultSessionLimit
	}
	rows, err := p.Pool.Query(ctx,
		`SELECT id, started_at, ended_at, forced, sets, total_reps
		 FROM sessions ORDER BY ended_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []SessionRow
	for rows.Next() {
		var r SessionRow
		var id uuid.UUID
		if err := rows.Scan(&id, &r.StartedAt, &r.EndedAt, &r.Forced, &r.Sets, &r.TotalReps); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		r.ID = id.String()
		result = append(result, r)
	}
	return result, rows.Err()
}
