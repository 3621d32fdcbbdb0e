package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/codelite/internal/config"
	"github.com/felixgeelhaar/codelite/internal/daemon"
	"github.com/felixgeelhaar/codelite/internal/leaderboard"
	"github.com/felixgeelhaar/codelite/internal/learner"
	"github.com/felixgeelhaar/codelite/internal/notify"
	"github.com/felixgeelhaar/codelite/internal/queue"
	"github.com/felixgeelhaar/codelite/internal/storage/postgres"
	"github.com/felixgeelhaar/codelite/internal/storage/sqlite"
	"github.com/jackc/pgx/v5/pgxpool"
)

// stack holds the configured adapters behind the learner service
type stack struct {
	store    learner.Store
	board    leaderboard.Board
	notifier notify.Notifier
	pool     *pgxpool.Pool
	closers  []func() error
}

// buildStack opens storage, the leaderboard and the notifier selected by cfg.
// On error everything opened so far is closed.
func buildStack(ctx context.Context, cfg *config.LocalConfig) (*stack, error) {
	st := &stack{}
	if err := st.open(ctx, cfg); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

func (st *stack) open(ctx context.Context, cfg *config.LocalConfig) error {
	if err := st.openStore(ctx, cfg.Storage); err != nil {
		return err
	}
	if err := st.openBoard(ctx, cfg.Leaderboard); err != nil {
		return err
	}
	return st.openNotifier(cfg.Notify)
}

func (st *stack) openStore(ctx context.Context, cfg config.StorageConfig) error {
	switch cfg.Driver {
	case config.StorageSQLite:
		db, err := sqlite.Ensure(cfg.Path)
		if err != nil {
			return err
		}
		st.closers = append(st.closers, db.Close)
		st.store = sqlite.NewLearnerStore(db)

	case config.StoragePostgres:
		pool, err := postgres.Open(ctx, postgres.Config{DSN: cfg.DSN})
		if err != nil {
			return err
		}
		st.closers = append(st.closers, func() error { pool.Close(); return nil })
		if err := postgres.Migrate(ctx, pool); err != nil {
			return fmt.Errorf("migrate postgres: %w", err)
		}
		st.pool = pool
		st.store = postgres.NewLearnerStore(pool)

	case config.StorageLocal:
		store, err := learner.NewFileStore(cfg.Path)
		if err != nil {
			return err
		}
		st.store = store

	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}

	slog.Info("learner store ready", "driver", cfg.Driver)
	return nil
}

func (st *stack) openBoard(ctx context.Context, cfg config.LeaderboardConfig) error {
	switch cfg.Driver {
	case config.BoardMemory:
		st.board = leaderboard.NewMemoryBoard()

	case config.BoardRedis:
		board, err := leaderboard.NewRedisBoard(ctx, leaderboard.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.KeyPrefix,
		})
		if err != nil {
			return err
		}
		st.closers = append(st.closers, board.Close)
		st.board = board

	case config.BoardPostgres:
		if st.pool == nil {
			return fmt.Errorf("postgres leaderboard requires postgres storage")
		}
		st.board = postgres.NewBoard(st.pool)

	default:
		return fmt.Errorf("unknown leaderboard driver %q", cfg.Driver)
	}

	slog.Info("leaderboard ready", "driver", cfg.Driver)
	return nil
}

func (st *stack) openNotifier(cfg config.NotifyConfig) error {
	if !cfg.Enabled {
		st.notifier = notify.Nop{}
		slog.Info("notifications disabled")
		return nil
	}

	var inner notify.Notifier
	switch cfg.Driver {
	case config.NotifyLog:
		inner = notify.NewLogNotifier(slog.Default())

	case config.NotifyAMQP:
		conn, err := queue.NewConnection(cfg.AMQPURL, cfg.Queue)
		if err != nil {
			return err
		}
		st.closers = append(st.closers, conn.Close)
		inner = notify.NewAMQPNotifier(queue.NewProducer(conn))

	default:
		return fmt.Errorf("unknown notify driver %q", cfg.Driver)
	}

	st.notifier = notify.NewResilientNotifier(inner, notify.ResilientConfig{
		MaxAttempts:  cfg.MaxAttempts,
		InitialDelay: cfg.InitialDelay(),
		Multiplier:   cfg.Multiplier,
		Logger:       slog.Default(),
	})
	slog.Info("notifier ready", "driver", cfg.Driver, "max_attempts", cfg.MaxAttempts)
	return nil
}

// rebuildsBoard reports whether the board starts empty and must be
// repopulated from the store
func (st *stack) rebuildsBoard() bool {
	_, ok := st.board.(*leaderboard.MemoryBoard)
	return ok
}

// healthChecks returns probes for the network-backed adapters
func (st *stack) healthChecks() map[string]daemon.HealthCheck {
	checks := make(map[string]daemon.HealthCheck)
	if st.pool != nil {
		checks["storage"] = st.pool.Ping
	}
	if board, ok := st.board.(*leaderboard.RedisBoard); ok {
		checks["leaderboard"] = board.HealthCheck
	}
	return checks
}

// Close releases resources in reverse order of opening
func (st *stack) Close() {
	if st == nil {
		return
	}
	for i := len(st.closers) - 1; i >= 0; i-- {
		if err := st.closers[i](); err != nil {
			slog.Warn("failed to close resource", "error", err)
		}
	}
	st.closers = nil
}
