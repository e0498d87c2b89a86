package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/fitcount/internal/config"
	"github.com/claude/fitcount/internal/logging"
	fcmcp "github.com/claude/fitcount/internal/mcp"
	"github.com/claude/fitcount/internal/metrics"
	"github.com/claude/fitcount/internal/server"
	"github.com/claude/fitcount/internal/sessionlog"
	"github.com/claude/fitcount/internal/tracker"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("fitcount starting", "version", Version)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log, logFile := logging.New(cfg.Log)
	defer logFile.Close()

	if *migrateOnly {
		if !cfg.Database.Enabled {
			log.Error("migrate-only: database is not enabled")
			os.Exit(1)
		}
		if err := sessionlog.RunMigrations(cfg.Database.DSN()); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied, exiting")
		return
	}

	catalog, err := cfg.Catalog()
	if err != nil {
		log.Error("invalid exercise table", "error", err)
		os.Exit(1)
	}

	// Open session stores
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

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	tr := tracker.New(catalog, stores.Sink, log)
	tr.SetMetrics(m)

	// Create server
	srv := server.New(tr, stores.History, cfg.Plan, cfg.Auth.APIKey, log)
	srv.SetMetrics(reg, m)
	mcpSrv := fcmcp.New(fcmcp.Local{Tracker: tr, History: stores.History}, Version, log)
	srv.SetMCP(mcpserver.NewStreamableHTTPServer(mcpSrv))

	// Start server on tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	// A session still running at shutdown is ended so its sets reach the log.
	if snap, err := tr.Snapshot(); err == nil && !snap.Complete {
		sum, _ := tr.End(shutdownCtx)
		log.Info("ended active session", "session", sum.ID, "total_reps", sum.TotalReps)
	}
	log.Info("server stopped")
}
