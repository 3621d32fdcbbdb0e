package queue

import (
	"context"
	"fmt"
	"log/slog"
)

// Producer publishes notification messages to the queue
type Producer struct {
	conn *Connection
}

// NewProducer creates a new queue producer
func NewProducer(conn *Connection) *Producer {
	return &Producer{conn: conn}
}

// Publish wraps payload in a Message envelope and publishes it
func (p *Producer) Publish(ctx context.Context, kind string, payload any) error {
	msg, err := NewMessage(kind, payload)
	if err != nil {
		return err
	}

	if err := p.conn.PublishJSON(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s message: %w", kind, err)
	}

	slog.Debug("published message",
		"message_id", msg.ID,
		"kind", kind,
		"queue", p.conn.Queue(),
	)

	return nil
}
