package notify

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/codelite/internal/queue"
)

// Publisher sends a typed payload to the notification queue
type Publisher interface {
	Publish(ctx context.Context, kind string, payload any) error
}

var _ Publisher = (*queue.Producer)(nil)

// AMQPNotifier publishes notifications for asynchronous delivery by a Worker
type AMQPNotifier struct {
	publisher Publisher
}

// NewAMQPNotifier creates a queue-backed notifier
func NewAMQPNotifier(p Publisher) *AMQPNotifier {
	return &AMQPNotifier{publisher: p}
}

func (n *AMQPNotifier) Welcome(ctx context.Context, w Welcome) error {
	if w.Email == "" {
		return fmt.Errorf("welcome notification: recipient email is required")
	}
	return n.publisher.Publish(ctx, KindWelcome, w)
}

func (n *AMQPNotifier) SubmissionAnalyzed(ctx context.Context, s Summary) error {
	if s.Email == "" {
		return fmt.Errorf("submission notification: recipient email is required")
	}
	return n.publisher.Publish(ctx, KindSubmission, s)
}
