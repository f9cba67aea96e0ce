package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/cadencejames/Get-PingTimes/internal/config"
	"github.com/cadencejames/Get-PingTimes/internal/export"
	"github.com/cadencejames/Get-PingTimes/internal/metrics"
	"github.com/cadencejames/Get-PingTimes/internal/pipeline"
	"github.com/cadencejames/Get-PingTimes/internal/probe"
	"github.com/cadencejames/Get-PingTimes/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn or error")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	slog.Info("pingtimes starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	slog.Info("config loaded",
		"points", len(cfg.Monitor.Points),
		"sites_file", cfg.Monitor.Files.Sites,
		"window_days", cfg.Monitor.WindowDays,
		"daemon", cfg.Daemon.Enabled,
	)

	username, password, err := credentials(cfg)
	if err != nil {
		slog.Error("failed to resolve SSH credentials", "err", err)
		os.Exit(1)
	}

	prober, err := probe.NewSSHProber(cfg.Monitor.Probe, username, password)
	if err != nil {
		slog.Error("failed to build SSH prober", "err", err)
		os.Exit(1)
	}
	m := metrics.New()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.Daemon.Enabled {
		runDaemon(ctx, *configPath, cfg, prober, m)
		return
	}

	report, _ := pipeline.New(cfg, prober, m).Run(ctx)
	writeMetricsTextfile(cfg, m)
	if len(report.FailedPhases) > 0 {
		slog.Warn("run degraded", "failed_phases", report.FailedPhases)
	}
}

// runDaemon keeps the pipeline on an interval and serves the HTTP surface:
// REST API, script export, WebSocket hub and Prometheus metrics on one port.
func runDaemon(ctx context.Context, configPath string, cfg *config.Config, prober probe.Prober, m *metrics.Set) {
	st := server.NewStore()
	hub := server.NewHub(st)
	go hub.Run(ctx)

	h := server.NewHandler(st)
	mux := http.NewServeMux()
	mux.Handle("/api/", h)
	mux.Handle("/export/", h)
	mux.Handle("/ws/stream", hub)
	mux.Handle("/metrics", m.Handler())

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Daemon.HTTPPort),
		Handler: mux,
	}
	go func() {
		slog.Info("HTTP server listening", "port", cfg.Daemon.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server stopped", "err", err)
		}
	}()

	// Hot-reload swaps the monitor settings used by subsequent runs. The run
	// interval and HTTP port stay fixed until restart.
	var mu sync.Mutex
	current := cfg
	go func() {
		if err := config.Watch(ctx, configPath, func(updated *config.Config) {
			mu.Lock()
			current = updated
			mu.Unlock()
			slog.Info("config hot-reloaded, next run uses the new settings")
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	run := func() {
		mu.Lock()
		rc := current
		mu.Unlock()

		report, proj := pipeline.New(rc, prober, m).Run(ctx)
		writeMetricsTextfile(rc, m)
		if proj == nil {
			slog.Warn("window export failed, keeping previous publication",
				"failed_phases", report.FailedPhases)
			return
		}
		st.Set(&server.Publication{
			Report:     *report,
			Projection: proj,
			Script:     export.Script(proj),
		})
		hub.Publish()
	}

	// First run immediately, so a daemon restarted mid-day appends a new
	// column set just like re-running the old scheduled job did.
	run()

	ticker := time.NewTicker(cfg.Daemon.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("pingtimes shutting down")
			httpSrv.Shutdown(context.Background()) //nolint:errcheck
			return
		case <-ticker.C:
			run()
		}
	}
}

// credentials resolves the SSH login from config and environment, falling
// back to an interactive prompt when stdin is a terminal.
func credentials(cfg *config.Config) (username, password string, err error) {
	username = cfg.Monitor.Auth.Username
	password = cfg.Monitor.Auth.Password()

	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	if username == "" {
		if !interactive {
			return "", "", fmt.Errorf("auth.username is not set and stdin is not a terminal")
		}
		fmt.Fprint(os.Stderr, "Enter your username: ")
		if _, err := fmt.Fscanln(os.Stdin, &username); err != nil {
			return "", "", fmt.Errorf("read username: %w", err)
		}
	}
	if password == "" {
		if !interactive {
			return "", "", fmt.Errorf("password is not set via auth.password_env and stdin is not a terminal")
		}
		fmt.Fprint(os.Stderr, "Enter your password: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		password = string(raw)
	}
	return username, password, nil
}

// writeMetricsTextfile dumps the run's metrics for a node_exporter textfile
// collector. No-op unless a path is configured.
func writeMetricsTextfile(cfg *config.Config, m *metrics.Set) {
	path := cfg.Monitor.Files.MetricsTextfile
	if path == "" {
		return
	}
	if err := m.WriteTextfile(path); err != nil {
		slog.Error("failed to write metrics textfile", "path", path, "err", err)
		return
	}
	slog.Info("metrics textfile written", "path", path)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
