package sessionlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/fitcount/internal/workout"
)

// Options selects the stores opened by Open. Empty fields disable a store.
type Options struct {
	CSVPath     string
	SQLiteDir   string
	PostgresDSN string
}

// Stores is the set of opened session stores.
type Stores struct {
	Sink    workout.Sink
	History History // nil when neither database is configured

	closers []func()
}

// Open opens every configured store. Postgres migrations are applied before
// connecting. When both databases are configured Postgres serves history.
func Open(ctx context.Context, opts Options, log *slog.Logger) (*Stores, error) {
	st := &Stores{}
	var sinks Multi

	if opts.CSVPath != "" {
		sinks = append(sinks, NewCSV(opts.CSVPath))
		log.Info("session log", "store", "csv", "path", opts.CSVPath)
	}

	if opts.SQLiteDir != "" {
		db, err := OpenSQLite(opts.SQLiteDir)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, func() { _ = db.Close() })
		sinks = append(sinks, db)
		st.History = db
		log.Info("session log", "store", "sqlite", "dir", opts.SQLiteDir)
	}

	if opts.PostgresDSN != "" {
		if err := RunMigrations(opts.PostgresDSN); err != nil {
			st.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		pg, err := NewPostgres(ctx, opts.PostgresDSN)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("postgres: %w", err)
		}
		st.closers = append(st.closers, pg.Close)
		sinks = append(sinks, pg)
		st.History = pg
		log.Info("session log", "store", "postgres")
	}

	if len(sinks) > 0 {
		st.Sink = sinks
	}
	return st, nil
}

// Close releases every opened database.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}
