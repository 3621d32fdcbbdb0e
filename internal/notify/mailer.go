package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Email is a rendered message ready for delivery
type Email struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers rendered emails
type Mailer interface {
	Send(ctx context.Context, e Email) error
}

// LogMailer logs emails instead of sending them
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer creates a mailer that writes to the structured log
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, e Email) error {
	m.logger.InfoContext(ctx, "email",
		"to", e.To,
		"subject", e.Subject,
		"body_bytes", len(e.Body),
	)
	return nil
}

const welcomeTemplate = `Hi %s,

Welcome to CodeLite! Pick a problem, write your solution and get instant
feedback on the concepts you used. Practice every day to grow your streak.

Happy coding!`

// RenderWelcome renders the registration email
func RenderWelcome(w Welcome) Email {
	return Email{
		To:      w.Email,
		Subject: "Welcome to CodeLite",
		Body:    fmt.Sprintf(welcomeTemplate, w.Name),
	}
}

// RenderSubmission renders the submission summary email
func RenderSubmission(s Summary) Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", s.Name)
	fmt.Fprintf(&b, "Here is the analysis of your %s solution to %s.\n\n", s.Language, s.Problem)
	fmt.Fprintf(&b, "Status:   %s\n", s.Status)
	fmt.Fprintf(&b, "Accuracy: %s\n", s.Accuracy)
	fmt.Fprintf(&b, "Topics:   %s\n", s.Topics)
	fmt.Fprintf(&b, "Streak:   %s (best %s)\n\n", s.CurrentStreak, s.BestStreak)
	fmt.Fprintf(&b, "%s\n\n", s.Feedback)
	fmt.Fprintf(&b, "Next step: %s\n", s.Recommendation)

	return Email{
		To:      s.Email,
		Subject: fmt.Sprintf("%s: %s (%s)", s.Problem, s.Status, s.Accuracy),
		Body:    b.String(),
	}
}
