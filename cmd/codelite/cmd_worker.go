package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/codelite/internal/config"
	"github.com/felixgeelhaar/codelite/internal/notify"
	"github.com/felixgeelhaar/codelite/internal/queue"
)

// cmdWorker consumes notification messages and hands them to the mailer
func cmdWorker(args []string) error {
	fs := flag.NewFlagSet("worker", flag.ContinueOnError)
	workers := fs.Int("workers", 0, "concurrent workers (default from config)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Notify.AMQPURL == "" {
		return fmt.Errorf("no broker configured (set CODELITE_AMQP_URL or amqp_url in secrets.yaml)")
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	conn, err := queue.NewConnection(cfg.Notify.AMQPURL, cfg.Notify.Queue)
	if err != nil {
		return err
	}
	defer conn.Close()

	consumerCfg := queue.DefaultConsumerConfig()
	consumerCfg.Workers = cfg.Notify.Workers
	if *workers > 0 {
		consumerCfg.Workers = *workers
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	worker := notify.NewWorker(notify.NewLogMailer(slog.Default()), slog.Default())
	consumer, err := worker.Consume(ctx, conn, consumerCfg)
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}

	<-ctx.Done()
	consumer.Stop()
	return nil
}
