package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageLocal    = "local"
)

// Notification drivers
const (
	NotifyLog  = "log"
	NotifyAMQP = "amqp"
)

// Leaderboard drivers
const (
	BoardMemory   = "memory"
	BoardRedis    = "redis"
	BoardPostgres = "postgres" // ranks straight from the learners table
)

// LocalConfig holds configuration for the codelite daemon and CLI
type LocalConfig struct {
	Daemon      DaemonConfig      `yaml:"daemon"`
	Storage     StorageConfig     `yaml:"storage"`
	Notify      NotifyConfig      `yaml:"notify"`
	Leaderboard LeaderboardConfig `yaml:"leaderboard"`
	Problems    ProblemsConfig    `yaml:"problems"`
}

// DaemonConfig holds daemon server settings
type DaemonConfig struct {
	Port     int    `yaml:"port"`
	Bind     string `yaml:"bind"`
	LogLevel string `yaml:"log_level"`
}

// StorageConfig selects and configures the learner store
type StorageConfig struct {
	Driver string `yaml:"driver"`
	Path   string `yaml:"path,omitempty"` // sqlite file or local store directory
	DSN    string `yaml:"-"`              // postgres, loaded from secrets.yaml or env
}

// NotifyConfig holds notification delivery settings
type NotifyConfig struct {
	Enabled        bool    `yaml:"enabled"`
	Driver         string  `yaml:"driver"`
	Queue          string  `yaml:"queue"`
	Workers        int     `yaml:"workers"`
	MaxAttempts    int     `yaml:"max_attempts"`
	InitialDelayMS int     `yaml:"initial_delay_ms"`
	Multiplier     float64 `yaml:"multiplier"`
	AMQPURL        string  `yaml:"-"` // loaded from secrets.yaml or env
}

// LeaderboardConfig holds leaderboard cache settings
type LeaderboardConfig struct {
	Driver        string `yaml:"driver"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
	RedisPassword string `yaml:"-"`
}

// ProblemsConfig points at an optional problem catalog overriding the built-in one
type ProblemsConfig struct {
	Path string `yaml:"path,omitempty"`
}

// SecretsConfig holds credentials loaded from secrets.yaml
type SecretsConfig struct {
	PostgresDSN   string `yaml:"postgres_dsn,omitempty"`
	AMQPURL       string `yaml:"amqp_url,omitempty"`
	RedisPassword string `yaml:"redis_password,omitempty"`
}

// CodeliteDir returns the data directory: $CODELITE_HOME or ~/.codelite
func CodeliteDir() (string, error) {
	if dir := os.Getenv("CODELITE_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".codelite"), nil
}

// EnsureCodeliteDir creates the data directory and subdirectories if they don't exist
func EnsureCodeliteDir() (string, error) {
	dir, err := CodeliteDir()
	if err != nil {
		return "", err
	}

	subdirs := []string{
		"",
		"logs",
		"learners",
	}

	for _, subdir := range subdirs {
		path := filepath.Join(dir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", fmt.Errorf("create dir %s: %w", path, err)
		}
	}

	return dir, nil
}

// DefaultLocalConfig returns sensible defaults for local mode
func DefaultLocalConfig() *LocalConfig {
	return &LocalConfig{
		Daemon: DaemonConfig{
			Port:     7433,
			Bind:     "127.0.0.1",
			LogLevel: "info",
		},
		Storage: StorageConfig{
			Driver: StorageSQLite,
		},
		Notify: NotifyConfig{
			Enabled:        true,
			Driver:         NotifyLog,
			Queue:          "codelite.notifications",
			Workers:        2,
			MaxAttempts:    3,
			InitialDelayMS: 200,
			Multiplier:     2.0,
		},
		Leaderboard: LeaderboardConfig{
			Driver:    BoardMemory,
			RedisAddr: "localhost:6379",
			KeyPrefix: "codelite:leaderboard",
		},
	}
}

// LoadLocalConfig loads configuration from <data dir>/config.yaml
func LoadLocalConfig() (*LocalConfig, error) {
	dir, err := CodeliteDir()
	if err != nil {
		return nil, err
	}
	return LoadLocalConfigFrom(dir)
}

// LoadLocalConfigFrom loads config.yaml and secrets.yaml from dir.
// A missing config file yields defaults.
func LoadLocalConfigFrom(dir string) (*LocalConfig, error) {
	cfg := DefaultLocalConfig()
	configPath := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	if err := loadSecrets(dir, cfg); err != nil {
		return nil, fmt.Errorf("load secrets: %w", err)
	}

	return cfg, nil
}

// ResolvePaths fills in unset storage paths relative to the data directory
func (c *LocalConfig) ResolvePaths(dir string) {
	if c.Storage.Path != "" {
		return
	}
	switch c.Storage.Driver {
	case StorageSQLite:
		c.Storage.Path = filepath.Join(dir, "codelite.db")
	case StorageLocal:
		c.Storage.Path = filepath.Join(dir, "learners")
	}
}

// loadSecrets loads credentials from secrets.yaml
func loadSecrets(dir string, cfg *LocalConfig) error {
	secretsPath := filepath.Join(dir, "secrets.yaml")

	// If secrets file doesn't exist, skip
	if _, err := os.Stat(secretsPath); os.IsNotExist(err) {
		return nil
	}

	data, err := os.ReadFile(secretsPath)
	if err != nil {
		return fmt.Errorf("read secrets: %w", err)
	}

	var secrets SecretsConfig
	if err := yaml.Unmarshal(data, &secrets); err != nil {
		return fmt.Errorf("parse secrets: %w", err)
	}

	cfg.Storage.DSN = secrets.PostgresDSN
	cfg.Notify.AMQPURL = secrets.AMQPURL
	cfg.Leaderboard.RedisPassword = secrets.RedisPassword
	return nil
}

// SaveLocalConfig saves configuration to <data dir>/config.yaml
func SaveLocalConfig(cfg *LocalConfig) error {
	dir, err := EnsureCodeliteDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// SaveSecrets saves credentials to <data dir>/secrets.yaml
func SaveSecrets(secrets SecretsConfig) error {
	dir, err := EnsureCodeliteDir()
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}

	// Write with restricted permissions (owner read/write only)
	if err := os.WriteFile(filepath.Join(dir, "secrets.yaml"), data, 0600); err != nil {
		return fmt.Errorf("write secrets: %w", err)
	}

	return nil
}
