package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes notifications to the structured log instead of a queue
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier. A nil logger uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Welcome(ctx context.Context, w Welcome) error {
	n.logger.InfoContext(ctx, "welcome notification",
		"name", w.Name,
		"email", w.Email,
	)
	return nil
}

func (n *LogNotifier) SubmissionAnalyzed(ctx context.Context, s Summary) error {
	n.logger.InfoContext(ctx, "submission notification",
		"email", s.Email,
		"problem", s.Problem,
		"language", s.Language,
		"status", s.Status,
		"accuracy", s.Accuracy,
		"current_streak", s.CurrentStreak,
	)
	return nil
}
