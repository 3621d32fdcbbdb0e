// Package notify delivers learner notifications: a welcome message on
// registration and a summary after every analyzed submission.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/codelite/internal/domain"
)

// Message kinds carried on the queue
const (
	KindWelcome    = "welcome"
	KindSubmission = "submission"
)

// Notifier is the outbound notification port used by the learner service
type Notifier interface {
	Welcome(ctx context.Context, w Welcome) error
	SubmissionAnalyzed(ctx context.Context, s Summary) error
}

// Welcome is sent once when a learner registers
type Welcome struct {
	Name  string `json:"name"`
	Email string `json:"to_email"`
}

// Summary is the submission report sent after analysis. Values are
// preformatted strings so templates render them verbatim.
type Summary struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Problem        string `json:"problem"`
	Language       string `json:"language"`
	Status         string `json:"status"`
	Topics         string `json:"topics"`
	Accuracy       string `json:"accuracy"`
	CurrentStreak  string `json:"current_streak"`
	BestStreak     string `json:"best_streak"`
	Feedback       string `json:"feedback"`
	Recommendation string `json:"recommendation"`
}

// WelcomeFor builds the welcome message for a learner
func WelcomeFor(l *domain.Learner) Welcome {
	return Welcome{Name: l.Name, Email: l.Email}
}

// SummaryFor builds a submission summary from the learner's updated state
func SummaryFor(l *domain.Learner, problemTitle string, res *domain.AnalysisResult) Summary {
	return Summary{
		Name:           l.Name,
		Email:          l.Email,
		Problem:        problemTitle,
		Language:       string(l.SelectedLanguage),
		Status:         string(res.Status),
		Topics:         strings.Join(res.Topics, ", "),
		Accuracy:       fmt.Sprintf("%d%%", res.Accuracy),
		CurrentStreak:  strconv.Itoa(l.CurrentStreak),
		BestStreak:     strconv.Itoa(l.BestStreak),
		Feedback:       res.Feedback,
		Recommendation: res.Recommendation,
	}
}

// Nop discards all notifications
type Nop struct{}

func (Nop) Welcome(context.Context, Welcome) error            { return nil }
func (Nop) SubmissionAnalyzed(context.Context, Summary) error { return nil }

var (
	_ Notifier = Nop{}
	_ Notifier = (*LogNotifier)(nil)
	_ Notifier = (*AMQPNotifier)(nil)
	_ Notifier = (*ResilientNotifier)(nil)
)
