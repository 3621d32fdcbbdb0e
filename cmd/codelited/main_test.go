package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/felixgeelhaar/codelite/internal/config"
	"github.com/felixgeelhaar/codelite/internal/learner"
	"github.com/felixgeelhaar/codelite/internal/notify"
	"github.com/felixgeelhaar/codelite/internal/storage/sqlite"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"info":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestMultiHandler_FansOutByLevel(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	h := &multiHandler{handlers: []slog.Handler{
		slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewJSONHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	}}
	logger := slog.New(h).With("component", "test")

	logger.Debug("quiet")
	logger.Warn("loud")

	if !strings.Contains(debugBuf.String(), "quiet") || !strings.Contains(debugBuf.String(), "loud") {
		t.Errorf("debug handler output = %q", debugBuf.String())
	}
	if strings.Contains(warnBuf.String(), "quiet") || !strings.Contains(warnBuf.String(), `"component":"test"`) {
		t.Errorf("warn handler output = %q", warnBuf.String())
	}
	if h.Enabled(context.Background(), slog.LevelDebug-4) {
		t.Error("Enabled() should be false below every handler's level")
	}
}

func TestBuildStack_SQLite(t *testing.T) {
	cfg := config.DefaultLocalConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "data", "codelite.db")

	st, err := buildStack(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildStack() error = %v", err)
	}
	defer st.Close()

	if _, ok := st.store.(*sqlite.LearnerStore); !ok {
		t.Errorf("store = %T, want *sqlite.LearnerStore", st.store)
	}
	if _, ok := st.notifier.(*notify.ResilientNotifier); !ok {
		t.Errorf("notifier = %T, want *notify.ResilientNotifier", st.notifier)
	}
	if !st.rebuildsBoard() {
		t.Error("memory board should be rebuilt at startup")
	}
	if checks := st.healthChecks(); len(checks) != 0 {
		t.Errorf("healthChecks() = %d probes, want none for sqlite and memory", len(checks))
	}
	if _, err := os.Stat(cfg.Storage.Path); err != nil {
		t.Errorf("sqlite file not created: %v", err)
	}
}

func TestBuildStack_LocalWithoutNotifications(t *testing.T) {
	cfg := config.DefaultLocalConfig()
	cfg.Storage.Driver = config.StorageLocal
	cfg.Storage.Path = t.TempDir()
	cfg.Notify.Enabled = false

	st, err := buildStack(context.Background(), cfg)
	if err != nil {
		t.Fatalf("buildStack() error = %v", err)
	}
	defer st.Close()

	if _, ok := st.store.(*learner.FileStore); !ok {
		t.Errorf("store = %T, want *learner.FileStore", st.store)
	}
	if _, ok := st.notifier.(notify.Nop); !ok {
		t.Errorf("notifier = %T, want notify.Nop", st.notifier)
	}
}

func TestBuildStack_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.LocalConfig)
	}{
		{"unknown storage", func(c *config.LocalConfig) { c.Storage.Driver = "mongo" }},
		{"postgres board without pool", func(c *config.LocalConfig) { c.Leaderboard.Driver = config.BoardPostgres }},
		{"unknown notifier", func(c *config.LocalConfig) { c.Notify.Driver = "smtp" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultLocalConfig()
			cfg.Storage.Path = filepath.Join(t.TempDir(), "codelite.db")
			tt.mutate(cfg)
			st, err := buildStack(context.Background(), cfg)
			if err == nil {
				t.Fatal("expected error")
			}
			if st != nil {
				t.Errorf("buildStack() stack = %+v, want nil on error", st)
			}
		})
	}
}

func TestStack_OpenFailureClosesStore(t *testing.T) {
	cfg := config.DefaultLocalConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "codelite.db")
	cfg.Notify.Driver = "smtp"

	st := &stack{}
	if err := st.open(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown notify driver")
	}
	if len(st.closers) != 1 {
		t.Fatalf("closers = %d, want the sqlite handle", len(st.closers))
	}

	st.Close()
	if _, err := st.store.List(context.Background()); err == nil {
		t.Error("store still usable after Close")
	}
}

func TestStack_CloseNil(t *testing.T) {
	var st *stack
	st.Close()
}

func TestLoadProblems(t *testing.T) {
	reg, err := loadProblems(config.ProblemsConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if len(reg.List()) != 4 {
		t.Errorf("builtin problems = %d, want 4", len(reg.List()))
	}

	path := filepath.Join(t.TempDir(), "problems.yaml")
	catalog := `problems:
  - id: fizzbuzz
    type: fizzbuzz
    title: FizzBuzz
    difficulty: Medium
    starter:
      Python: "for i in range(1, 101):\n    pass\n"
`
	if err := os.WriteFile(path, []byte(catalog), 0644); err != nil {
		t.Fatal(err)
	}
	reg, err = loadProblems(config.ProblemsConfig{Path: path})
	if err != nil {
		t.Fatalf("loadProblems(file) error = %v", err)
	}
	if len(reg.List()) != 1 || reg.List()[0].Title != "FizzBuzz" {
		t.Errorf("custom problems = %+v", reg.List())
	}

	if _, err := loadProblems(config.ProblemsConfig{Path: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Error("expected error for missing catalog")
	}
}

func TestWritePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), pidFileName)
	if err := writePIDFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(string(data)) == "" {
		t.Error("pid file is empty")
	}
}
