package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/claude/fitcount/internal/config"
	"github.com/claude/fitcount/internal/logging"
	"github.com/claude/fitcount/internal/replay"
	"github.com/claude/fitcount/internal/sessionlog"
	"github.com/claude/fitcount/internal/tracker"
	"github.com/claude/fitcount/internal/workout"
	"gopkg.in/yaml.v3"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	framesPath := flag.String("frames", "", "NDJSON landmark frames (- for stdin) (required)")
	planFlag := flag.String("plan", "", "plan override, e.g. squats:3x10,pushups:2x8")
	planFile := flag.String("plan-file", "", "YAML plan file (list of exercise/sets/reps)")
	interval := flag.Duration("interval", 0, "tick interval; 0 ticks once per frame")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *framesPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: fitcount-replay -config config.yaml -frames frames.ndjson [-plan squats:3x10] [-interval 33ms]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log, logFile := logging.New(cfg.Log)
	defer logFile.Close()

	plan, err := choosePlan(cfg.Plan, *planFlag, *planFile)
	if err != nil {
		log.Error("invalid plan", "error", err)
		os.Exit(1)
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		log.Error("invalid exercise table", "error", err)
		os.Exit(1)
	}

	var in io.Reader = os.Stdin
	if *framesPath != "-" {
		f, err := os.Open(*framesPath)
		if err != nil {
			log.Error("failed to open frames", "error", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	ctx := context.Background()
	opts := sessionlog.Options{CSVPath: cfg.SessionLog.CSVPath, SQLiteDir: cfg.SessionLog.SQLiteDir}
	if cfg.Database.Enabled {
		opts.PostgresDSN = cfg.Database.DSN()
	}
	stores, err := sessionlog.Open(ctx, opts, log)
	if err != nil {
		log.Error("failed to open session log", "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	tr := tracker.New(catalog, stores.Sink, log)
	if _, err := tr.Start(ctx, plan); err != nil {
		log.Error("failed to start session", "error", err)
		os.Exit(1)
	}

	// Run replay
	start := time.Now()
	stats, replayErr := replay.New(tr, log, *interval).Replay(ctx, in)

	// Input ended before the plan: end the session so its sets are logged.
	sum, ok := tr.Summary()
	if !ok {
		sum, _ = tr.End(ctx)
	}

	printStats(log, stats, sum, time.Since(start))
	if replayErr != nil {
		log.Error("replay failed", "error", replayErr)
		os.Exit(1)
	}
	if sum.FlushError != "" {
		log.Error("session log write failed", "error", sum.FlushError)
		os.Exit(1)
	}
	log.Info("replay complete")
}

// choosePlan picks the -plan flag, then -plan-file, then the configured plan.
func choosePlan(configured []workout.PlanItem, planFlag, planFile string) ([]workout.PlanItem, error) {
	switch {
	case planFlag != "":
		return workout.ParsePlan(planFlag)
	case planFile != "":
		data, err := os.ReadFile(planFile)
		if err != nil {
			return nil, fmt.Errorf("reading plan file: %w", err)
		}
		var plan []workout.PlanItem
		if err := yaml.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("parsing plan file: %w", err)
		}
		return plan, nil
	default:
		return configured, nil
	}
}

func printStats(log *slog.Logger, stats *replay.Stats, sum workout.Summary, elapsed time.Duration) {
	log.Info("replay stats",
		"frames_read", stats.FramesRead,
		"frames_dropped", stats.FramesDropped,
		"ticks", stats.Ticks,
		"no_subject_ticks", stats.NoSubjectTicks,
		"reps_counted", stats.RepsCounted,
		"sets_completed", stats.SetsCompleted,
		"plan_complete", stats.Complete,
		"duration", elapsed.String(),
	)
	for name, reps := range sum.RepsByName {
		log.Info("exercise total", "exercise", name, "reps", reps)
	}
	log.Info("session", "id", sum.ID, "sets_logged", len(sum.Records), "total_reps", sum.TotalReps, "forced", sum.Forced)
}
