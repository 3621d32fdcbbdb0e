package domain

import (
	"fmt"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Learner is a student's practice profile
type Learner struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Email            string    `json:"email"`
	SelectedLanguage Language  `json:"selected_language"`
	ProblemsSolved   int       `json:"problems_solved"`
	AvgAccuracy      int       `json:"avg_accuracy"`
	StreakState
	LastSubmission *SubmissionRecord `json:"last_submission,omitempty"`
	TopicCounts    map[string]int    `json:"topic_counts"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// SubmissionRecord summarizes one analyzed submission
type SubmissionRecord struct {
	ID        uuid.UUID        `json:"id"`
	ProblemID string           `json:"problem_id"`
	Language  Language         `json:"language"`
	Accuracy  int              `json:"accuracy"`
	Status    SubmissionStatus `json:"status"`
	Topics    []string         `json:"topics,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// NewLearner creates a learner who starts on a one-day streak today
func NewLearner(name, email, today string, now time.Time) (*Learner, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}

	return &Learner{
		ID:               uuid.New(),
		Name:             name,
		Email:            strings.ToLower(addr.Address),
		SelectedLanguage: DefaultLanguage,
		StreakState: StreakState{
			CurrentStreak:  1,
			BestStreak:     1,
			LastActiveDate: today,
		},
		TopicCounts: make(map[string]int),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// SetLanguage switches the learner's practice language
func (l *Learner) SetLanguage(lang Language, now time.Time) error {
	if !lang.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, lang)
	}
	l.SelectedLanguage = lang
	l.UpdatedAt = now
	return nil
}

// RecordSubmission folds a new submission into the running statistics.
// The average accuracy is the rounded running mean over all submissions.
func (l *Learner) RecordSubmission(rec SubmissionRecord, streak StreakState) {
	solved := l.ProblemsSolved + 1
	total := float64(l.AvgAccuracy*l.ProblemsSolved + rec.Accuracy)
	l.AvgAccuracy = int(math.Round(total / float64(solved)))
	l.ProblemsSolved = solved

	l.StreakState = streak
	l.LastSubmission = &rec

	if l.TopicCounts == nil {
		l.TopicCounts = make(map[string]int)
	}
	for _, topic := range rec.Topics {
		l.TopicCounts[topic]++
	}

	l.UpdatedAt = rec.Timestamp
}
