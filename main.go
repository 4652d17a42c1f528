package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/sadopc/devtrack/internal/api"
	"github.com/sadopc/devtrack/internal/backup"
	"github.com/sadopc/devtrack/internal/command"
	"github.com/sadopc/devtrack/internal/config"
	"github.com/sadopc/devtrack/internal/logging"
	"github.com/sadopc/devtrack/internal/prefs"
	"github.com/sadopc/devtrack/internal/store"
	"github.com/sadopc/devtrack/internal/tracker"
	"github.com/sadopc/devtrack/internal/tui"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("devtrack: .env file not loaded", "error", err)
	}

	app := command.BuildApp(command.Deps{
		RunTUI:    runTUI,
		RunServe:  runServe,
		ListFiles: listFiles,
		Cleanup:   cleanup,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// env holds everything a running tracker needs.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	prefs   *prefs.Prefs
	tracker *tracker.Tracker
}

func openEnv(cfg *config.Config, logger *slog.Logger, opts ...tracker.Option) (*env, error) {
	p, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		return nil, fmt.Errorf("open preferences: %w", err)
	}

	backups := backup.New(cfg.DataDir, logger)
	tr := tracker.New(store.New(), backups, logger, opts...)
	if cfg.RestoreOnStart {
		if !tr.RestoreLatest() {
			logger.Info("starting with empty data", "dir", backups.Dir())
		}
	}
	return &env{cfg: cfg, logger: logger, prefs: p, tracker: tr}, nil
}

// maintain runs the snapshot loop until ctx ends. The returned wait blocks
// until the final snapshot is written.
func (rt *env) maintain(ctx context.Context) (wait func()) {
	var wg sync.WaitGroup
	if rt.cfg.SnapshotInterval > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rt.tracker.RunMaintenance(ctx, rt.cfg.SnapshotInterval, func() int {
				return rt.prefs.Int(prefs.KeyRetentionDays, 30)
			})
		}()
	}
	return wg.Wait
}

func runTUI(ctx context.Context, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	logFile, err := logging.OpenFile(cfg.LogPath())
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Writer: logFile, Component: "tui"})

	rt, err := openEnv(cfg, logger)
	if err != nil {
		return err
	}
	defer rt.prefs.Close()

	ctx, cancel := context.WithCancel(ctx)
	wait := rt.maintain(ctx)
	defer wait()
	defer cancel()

	p := tea.NewProgram(tui.NewApp(rt.tracker, rt.prefs, tui.WithLogger(logger)), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if cfg.SnapshotInterval <= 0 {
		if _, err := rt.tracker.DailySnapshot(); err != nil {
			logger.Error("final snapshot", "error", err)
		}
	}
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Component: "devtrack"})

	hub := api.NewHub(logger)
	rt, err := openEnv(cfg, logger, tracker.WithPublisher(hub))
	if err != nil {
		return err
	}
	defer rt.prefs.Close()

	ctx, cancel := context.WithCancel(ctx)
	wait := rt.maintain(ctx)
	defer wait()
	defer cancel()

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.NewServer(rt.tracker, hub, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Listen, "data_dir", cfg.DataDir)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return srv.Shutdown(shutdownCtx)
}

func listFiles(_ context.Context, cfg *config.Config) ([]backup.File, error) {
	logger := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Component: "backup"})
	return backup.New(cfg.DataDir, logger).Files(), nil
}

func cleanup(_ context.Context, cfg *config.Config, days int) (int, error) {
	logger := logging.NewLogger(logging.Options{Level: cfg.LogLevel, Component: "backup"})
	if days < 0 {
		p, err := prefs.Open(cfg.PrefsPath)
		if err != nil {
			return 0, fmt.Errorf("open preferences: %w", err)
		}
		defer p.Close()
		days = p.Int(prefs.KeyRetentionDays, 30)
	}
	logger.Info("cleaning up backups", "dir", filepath.Clean(cfg.DataDir), "days_to_keep", days)
	return backup.New(cfg.DataDir, logger).DeleteOldBackups(days), nil
}
