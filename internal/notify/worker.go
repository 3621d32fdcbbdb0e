package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/codelite/internal/queue"
)

// Worker turns queued notifications into emails
type Worker struct {
	mailer Mailer
	logger *slog.Logger
}

// NewWorker creates a worker that renders messages and hands them to mailer
func NewWorker(mailer Mailer, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{mailer: mailer, logger: logger}
}

// Handle renders and sends one message. It satisfies queue.Handler.
func (w *Worker) Handle(ctx context.Context, msg *queue.Message) error {
	var email Email

	switch msg.Kind {
	case KindWelcome:
		var welcome Welcome
		if err := msg.Decode(&welcome); err != nil {
			return err
		}
		email = RenderWelcome(welcome)
	case KindSubmission:
		var summary Summary
		if err := msg.Decode(&summary); err != nil {
			return err
		}
		email = RenderSubmission(summary)
	default:
		// Unknown kinds are acknowledged and dropped so they do not loop
		w.logger.Warn("ignoring notification of unknown kind", "kind", msg.Kind, "message_id", msg.ID)
		return nil
	}

	if email.To == "" {
		w.logger.Warn("dropping notification without recipient", "kind", msg.Kind, "message_id", msg.ID)
		return nil
	}

	if err := w.mailer.Send(ctx, email); err != nil {
		return fmt.Errorf("send %s email: %w", msg.Kind, err)
	}
	return nil
}

// Consume starts a queue consumer that feeds this worker. Stop the
// returned consumer to drain in-flight messages.
func (w *Worker) Consume(ctx context.Context, conn *queue.Connection, cfg queue.ConsumerConfig) (*queue.Consumer, error) {
	consumer := queue.NewConsumer(conn, w.Handle, cfg)
	if err := consumer.Start(ctx); err != nil {
		return nil, err
	}
	return consumer, nil
}
