// Command codelited serves the CodeLite HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/felixgeelhaar/codelite/internal/config"
	"github.com/felixgeelhaar/codelite/internal/daemon"
	"github.com/felixgeelhaar/codelite/internal/learner"
	"github.com/felixgeelhaar/codelite/internal/problem"
	"github.com/felixgeelhaar/codelite/internal/streak"
)

const (
	pidFileName = "codelited.pid"
)

func main() {
	if err := run(); err != nil {
		slog.Error("daemon error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Ensure the data directory exists
	dataDir, err := config.EnsureCodeliteDir()
	if err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logFile, err := setupLogging(dataDir, parseLogLevel(cfg.Daemon.LogLevel))
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logFile.Close()

	pidPath := filepath.Join(dataDir, pidFileName)
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	ctx := context.Background()

	problems, err := loadProblems(cfg.Problems)
	if err != nil {
		return err
	}

	st, err := buildStack(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build stack: %w", err)
	}
	defer st.Close()

	clock := streak.SystemClock{}
	learners, err := learner.NewService(learner.Config{
		Store:    st.store,
		Problems: problems,
		Notifier: st.notifier,
		Board:    st.board,
		Clock:    clock,
		Logger:   slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("create learner service: %w", err)
	}

	if st.rebuildsBoard() {
		if _, err := learners.RebuildLeaderboard(ctx); err != nil {
			return fmt.Errorf("rebuild leaderboard: %w", err)
		}
	}

	server, err := daemon.NewServer(daemon.ServerConfig{
		Config:   cfg,
		Learners: learners,
		Problems: problems,
		Clock:    clock,
		Checks:   st.healthChecks(),
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh

		slog.Info("received signal, shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
		close(done)
	}()

	if err := server.Start(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	slog.Info("daemon stopped")
	return nil
}

// loadProblems returns the built-in catalog, or the YAML catalog at cfg.Path
func loadProblems(cfg config.ProblemsConfig) (*problem.Registry, error) {
	if cfg.Path == "" {
		return problem.NewBuiltinRegistry()
	}

	problems, err := problem.LoadFile(os.DirFS(filepath.Dir(cfg.Path)), filepath.Base(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("load problems from %s: %w", cfg.Path, err)
	}
	slog.Info("loaded problem catalog", "path", cfg.Path, "problems", len(problems))
	return problem.NewRegistry(problems)
}

func writePIDFile(path string) error {
	pid := os.Getpid()
	return os.WriteFile(path, []byte(fmt.Sprintf("%d\n", pid)), 0644)
}
