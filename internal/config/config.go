package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/joho/godotenv"
)

// Load reads an optional .env file, the data directory config, and
// environment overrides, then validates the result.
func Load() (*LocalConfig, error) {
	if err := LoadDotEnv(); err != nil {
		return nil, err
	}

	dir, err := CodeliteDir()
	if err != nil {
		return nil, err
	}

	cfg, err := LoadLocalConfigFrom(dir)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	cfg.ResolvePaths(dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into
// the process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values with CODELITE_* environment variables
func (c *LocalConfig) ApplyEnv() {
	c.Daemon.Port = getEnvInt("CODELITE_PORT", c.Daemon.Port)
	c.Daemon.Bind = getEnv("CODELITE_BIND", c.Daemon.Bind)
	c.Daemon.LogLevel = getEnv("CODELITE_LOG_LEVEL", c.Daemon.LogLevel)

	c.Storage.Driver = getEnv("CODELITE_STORAGE_DRIVER", c.Storage.Driver)
	c.Storage.Path = getEnv("CODELITE_STORAGE_PATH", c.Storage.Path)
	c.Storage.DSN = getEnv("CODELITE_DSN", c.Storage.DSN)

	c.Notify.Enabled = getEnvBool("CODELITE_NOTIFY_ENABLED", c.Notify.Enabled)
	c.Notify.Driver = getEnv("CODELITE_NOTIFY_DRIVER", c.Notify.Driver)
	c.Notify.AMQPURL = getEnv("CODELITE_AMQP_URL", c.Notify.AMQPURL)
	c.Notify.MaxAttempts = getEnvInt("CODELITE_NOTIFY_MAX_ATTEMPTS", c.Notify.MaxAttempts)
	c.Notify.Multiplier = getEnvFloat("CODELITE_NOTIFY_MULTIPLIER", c.Notify.Multiplier)

	c.Leaderboard.Driver = getEnv("CODELITE_LEADERBOARD_DRIVER", c.Leaderboard.Driver)
	c.Leaderboard.RedisAddr = getEnv("CODELITE_REDIS_ADDR", c.Leaderboard.RedisAddr)
	c.Leaderboard.RedisPassword = getEnv("CODELITE_REDIS_PASSWORD", c.Leaderboard.RedisPassword)

	c.Problems.Path = getEnv("CODELITE_PROBLEMS_PATH", c.Problems.Path)
}

// Validate checks drivers, ports and required connection settings
func (c *LocalConfig) Validate() error {
	if c.Daemon.Port < 1 || c.Daemon.Port > 65535 {
		return fmt.Errorf("%w: daemon port %d out of range", domain.ErrConfiguration, c.Daemon.Port)
	}

	switch c.Daemon.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", domain.ErrConfiguration, c.Daemon.LogLevel)
	}

	switch c.Storage.Driver {
	case StorageSQLite, StorageLocal:
	case StoragePostgres:
		if c.Storage.DSN == "" {
			return fmt.Errorf("%w: postgres storage requires a DSN", domain.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown storage driver %q", domain.ErrConfiguration, c.Storage.Driver)
	}

	switch c.Notify.Driver {
	case NotifyLog:
	case NotifyAMQP:
		if c.Notify.AMQPURL == "" {
			return fmt.Errorf("%w: amqp notifications require a broker URL", domain.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown notify driver %q", domain.ErrConfiguration, c.Notify.Driver)
	}
	if c.Notify.MaxAttempts < 1 {
		return fmt.Errorf("%w: notify max_attempts must be at least 1", domain.ErrConfiguration)
	}

	switch c.Leaderboard.Driver {
	case BoardMemory:
	case BoardRedis:
		if c.Leaderboard.RedisAddr == "" {
			return fmt.Errorf("%w: redis leaderboard requires an address", domain.ErrConfiguration)
		}
	case BoardPostgres:
		if c.Storage.Driver != StoragePostgres {
			return fmt.Errorf("%w: postgres leaderboard requires postgres storage", domain.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown leaderboard driver %q", domain.ErrConfiguration, c.Leaderboard.Driver)
	}

	return nil
}

// Addr returns the daemon listen address
func (d DaemonConfig) Addr() string {
	return fmt.Sprintf("%s:%d", d.Bind, d.Port)
}

// InitialDelay returns the first notification retry delay
func (n NotifyConfig) InitialDelay() time.Duration {
	return time.Duration(n.InitialDelayMS) * time.Millisecond
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
