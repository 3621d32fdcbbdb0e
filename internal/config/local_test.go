package config

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestCodeliteDir(t *testing.T) {
	t.Setenv("CODELITE_HOME", "")
	dir, err := CodeliteDir()
	if err != nil {
		t.Fatalf("CodeliteDir() error = %v", err)
	}

	if filepath.Base(dir) != ".codelite" {
		t.Errorf("CodeliteDir() = %q, want ending with .codelite", dir)
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("CodeliteDir() = %q, want absolute path", dir)
	}

	t.Setenv("CODELITE_HOME", "/srv/codelite")
	if dir, _ := CodeliteDir(); dir != "/srv/codelite" {
		t.Errorf("CodeliteDir() with CODELITE_HOME = %q", dir)
	}
}

func TestEnsureCodeliteDir(t *testing.T) {
	home := filepath.Join(t.TempDir(), "data")
	t.Setenv("CODELITE_HOME", home)

	dir, err := EnsureCodeliteDir()
	if err != nil {
		t.Fatalf("EnsureCodeliteDir() error = %v", err)
	}
	if dir != home {
		t.Errorf("EnsureCodeliteDir() = %q, want %q", dir, home)
	}

	for _, subdir := range []string{"logs", "learners"} {
		if _, err := os.Stat(filepath.Join(dir, subdir)); os.IsNotExist(err) {
			t.Errorf("EnsureCodeliteDir() should create %s", subdir)
		}
	}
}

func TestDefaultLocalConfig(t *testing.T) {
	cfg := DefaultLocalConfig()

	if cfg.Daemon.Port != 7433 {
		t.Errorf("Daemon.Port = %d, want 7433", cfg.Daemon.Port)
	}
	if cfg.Daemon.Bind != "127.0.0.1" {
		t.Errorf("Daemon.Bind = %q, want 127.0.0.1", cfg.Daemon.Bind)
	}
	if cfg.Storage.Driver != StorageSQLite {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Notify.Driver != NotifyLog || cfg.Notify.Queue != "codelite.notifications" {
		t.Errorf("Notify = %+v", cfg.Notify)
	}
	if cfg.Leaderboard.Driver != BoardMemory {
		t.Errorf("Leaderboard.Driver = %q, want memory", cfg.Leaderboard.Driver)
	}
}

func TestLoadLocalConfigFrom_Missing(t *testing.T) {
	cfg, err := LoadLocalConfigFrom(t.TempDir())
	if err != nil {
		t.Fatalf("LoadLocalConfigFrom() error = %v", err)
	}
	if cfg.Daemon.Port != DefaultLocalConfig().Daemon.Port {
		t.Errorf("missing config should yield defaults, got port %d", cfg.Daemon.Port)
	}
}

func TestLoadLocalConfigFrom_FileAndSecrets(t *testing.T) {
	dir := t.TempDir()

	config := `daemon:
  port: 8123
  log_level: warn
storage:
  driver: postgres
leaderboard:
  driver: redis
  redis_addr: cache:6379
`
	secrets := `postgres_dsn: postgres://u:p@db/codelite
amqp_url: amqp://guest:guest@mq:5672/
redis_password: hunter2
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), []byte(secrets), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadLocalConfigFrom(dir)
	if err != nil {
		t.Fatalf("LoadLocalConfigFrom() error = %v", err)
	}

	if cfg.Daemon.Port != 8123 || cfg.Daemon.LogLevel != "warn" {
		t.Errorf("Daemon = %+v", cfg.Daemon)
	}
	// Unset fields keep their defaults
	if cfg.Daemon.Bind != "127.0.0.1" {
		t.Errorf("Daemon.Bind = %q, want default", cfg.Daemon.Bind)
	}
	if cfg.Storage.DSN != "postgres://u:p@db/codelite" {
		t.Errorf("Storage.DSN = %q", cfg.Storage.DSN)
	}
	if cfg.Notify.AMQPURL != "amqp://guest:guest@mq:5672/" {
		t.Errorf("Notify.AMQPURL = %q", cfg.Notify.AMQPURL)
	}
	if cfg.Leaderboard.RedisPassword != "hunter2" || cfg.Leaderboard.RedisAddr != "cache:6379" {
		t.Errorf("Leaderboard = %+v", cfg.Leaderboard)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadLocalConfigFrom_Invalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("daemon: [not, a, map"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLocalConfigFrom(dir); err == nil {
		t.Error("LoadLocalConfigFrom() should fail on invalid yaml")
	}
}

func TestSaveLocalConfig_RoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CODELITE_HOME", home)

	cfg := DefaultLocalConfig()
	cfg.Daemon.Port = 9999
	cfg.Storage.DSN = "must-not-be-written"

	if err := SaveLocalConfig(cfg); err != nil {
		t.Fatalf("SaveLocalConfig() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(home, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("saved config is not yaml: %v", err)
	}

	loaded, err := LoadLocalConfig()
	if err != nil {
		t.Fatalf("LoadLocalConfig() error = %v", err)
	}
	if loaded.Daemon.Port != 9999 {
		t.Errorf("Daemon.Port = %d, want 9999", loaded.Daemon.Port)
	}
	if loaded.Storage.DSN != "" {
		t.Errorf("DSN leaked into config.yaml: %q", loaded.Storage.DSN)
	}
}

func TestSaveSecrets(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CODELITE_HOME", home)

	if err := SaveSecrets(SecretsConfig{PostgresDSN: "postgres://x"}); err != nil {
		t.Fatalf("SaveSecrets() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(home, "secrets.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("secrets.yaml mode = %v, want 0600", info.Mode().Perm())
	}

	cfg, err := LoadLocalConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Storage.DSN != "postgres://x" {
		t.Errorf("Storage.DSN = %q", cfg.Storage.DSN)
	}
}
