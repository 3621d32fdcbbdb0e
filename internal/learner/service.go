// Package learner manages learner profiles and runs the submission flow:
// analyze the code, advance the streak, fold the result into the running
// statistics, persist, notify and refresh the leaderboard.
package learner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/felixgeelhaar/codelite/internal/analyzer"
	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/felixgeelhaar/codelite/internal/leaderboard"
	"github.com/felixgeelhaar/codelite/internal/notify"
	"github.com/felixgeelhaar/codelite/internal/problem"
	"github.com/felixgeelhaar/codelite/internal/streak"
	"github.com/google/uuid"
)

// Config wires the service's collaborators. Store is required; every other
// field has a working default.
type Config struct {
	Store       Store
	Submissions SubmissionLog
	Analyzer    *analyzer.Analyzer
	Problems    *problem.Registry
	Notifier    notify.Notifier
	Board       leaderboard.Board
	Clock       streak.Clock
	Now         func() time.Time
	Logger      *slog.Logger
}

// Service handles learner business logic
type Service struct {
	store       Store
	submissions SubmissionLog
	analyzer    *analyzer.Analyzer
	problems    *problem.Registry
	notifier    notify.Notifier
	board       leaderboard.Board
	clock       streak.Clock
	now         func() time.Time
	logger      *slog.Logger
	locks       *keyedMutex
}

// NewService creates a new learner service
func NewService(cfg Config) (*Service, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("%w: learner store is required", domain.ErrConfiguration)
	}

	s := &Service{
		store:       cfg.Store,
		submissions: cfg.Submissions,
		analyzer:    cfg.Analyzer,
		problems:    cfg.Problems,
		notifier:    cfg.Notifier,
		board:       cfg.Board,
		clock:       cfg.Clock,
		now:         cfg.Now,
		logger:      cfg.Logger,
		locks:       newKeyedMutex(),
	}

	if s.submissions == nil {
		if log, ok := cfg.Store.(SubmissionLog); ok {
			s.submissions = log
		}
	}
	if s.analyzer == nil {
		s.analyzer = analyzer.New()
	}
	if s.problems == nil {
		reg, err := problem.NewBuiltinRegistry()
		if err != nil {
			return nil, err
		}
		s.problems = reg
	}
	if s.notifier == nil {
		s.notifier = notify.Nop{}
	}
	if s.board == nil {
		s.board = leaderboard.NewMemoryBoard()
	}
	if s.clock == nil {
		s.clock = streak.SystemClock{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// Register creates a learner on a one-day streak with the default language
func (s *Service) Register(ctx context.Context, name, email string) (*domain.Learner, error) {
	l, err := domain.NewLearner(name, email, s.clock.Today(), s.now().UTC())
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetByEmail(ctx, l.Email); err == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrLearnerAlreadyExists, l.Email)
	} else if !errors.Is(err, domain.ErrLearnerNotFound) {
		return nil, err
	}

	if err := s.store.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("learner registered", "learner_id", l.ID, "language", l.SelectedLanguage)

	if err := s.notifier.Welcome(ctx, notify.WelcomeFor(l)); err != nil {
		s.logger.Warn("welcome notification failed", "learner_id", l.ID, "error", err)
	}
	s.refreshBoard(ctx, l)

	return l, nil
}

// Get returns a learner by ID
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Learner, error) {
	return s.store.Get(ctx, id)
}

// List returns all learners
func (s *Service) List(ctx context.Context) ([]*domain.Learner, error) {
	return s.store.List(ctx)
}

// SetLanguage switches the learner's practice language
func (s *Service) SetLanguage(ctx context.Context, id uuid.UUID, lang domain.Language) (*domain.Learner, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.setLanguage(ctx, l, lang); err != nil {
		return nil, err
	}
	s.refreshBoard(ctx, l)
	return l, nil
}

func (s *Service) setLanguage(ctx context.Context, l *domain.Learner, lang domain.Language) error {
	if l.SelectedLanguage == lang {
		return nil
	}
	if err := l.SetLanguage(lang, s.now().UTC()); err != nil {
		return err
	}
	if err := s.store.Update(ctx, l); err != nil {
		return err
	}
	s.logger.Info("learner language changed", "learner_id", l.ID, "language", lang)
	return nil
}

// SubmitRequest is one code submission
type SubmitRequest struct {
	ProblemID string `json:"problem_id"`
	Code      string `json:"code"`
	// Language optionally switches the learner's language before analysis
	Language domain.Language `json:"language,omitempty"`
}

// SubmitResult is the outcome of a submission
type SubmitResult struct {
	Learner    *domain.Learner          `json:"learner"`
	Problem    *domain.Problem          `json:"problem"`
	Analysis   *domain.AnalysisResult   `json:"analysis"`
	Submission *domain.SubmissionRecord `json:"submission"`
}

// Submit analyzes code for a problem in the learner's selected language and
// folds the result into the learner's profile. Submissions for the same
// learner are serialized.
func (s *Service) Submit(ctx context.Context, id uuid.UUID, req SubmitRequest) (*SubmitResult, error) {
	if strings.TrimSpace(req.Code) == "" {
		return nil, fmt.Errorf("%w: code is empty", domain.ErrInvalidInput)
	}

	p, err := s.problems.Get(req.ProblemID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Language != "" {
		if err := s.setLanguage(ctx, l, req.Language); err != nil {
			return nil, err
		}
	}

	analysis, err := s.analyzer.Analyze(req.Code, l.SelectedLanguage, p.Type)
	if err != nil {
		return nil, err
	}

	nextStreak, err := streak.Update(l.StreakState, s.clock.Today())
	if err != nil {
		return nil, err
	}

	rec := domain.SubmissionRecord{
		ID:        uuid.New(),
		ProblemID: p.ID,
		Language:  l.SelectedLanguage,
		Accuracy:  analysis.Accuracy,
		Status:    analysis.Status,
		Topics:    analysis.Topics,
		Timestamp: s.now().UTC(),
	}
	l.RecordSubmission(rec, nextStreak)

	if err := s.store.Update(ctx, l); err != nil {
		return nil, fmt.Errorf("save learner: %w", err)
	}

	if s.submissions != nil {
		if err := s.submissions.AppendSubmission(ctx, l.ID, rec); err != nil {
			s.logger.Warn("failed to append submission history", "learner_id", l.ID, "submission_id", rec.ID, "error", err)
		}
	}

	s.logger.Info("submission analyzed",
		"learner_id", l.ID,
		"problem", p.ID,
		"language", rec.Language,
		"accuracy", rec.Accuracy,
		"status", rec.Status,
		"current_streak", l.CurrentStreak,
	)

	if err := s.notifier.SubmissionAnalyzed(ctx, notify.SummaryFor(l, p.Title, analysis)); err != nil {
		s.logger.Warn("submission notification failed", "learner_id", l.ID, "error", err)
	}
	s.refreshBoard(ctx, l)

	return &SubmitResult{
		Learner:    l,
		Problem:    p,
		Analysis:   analysis,
		Submission: &rec,
	}, nil
}

// StreakView is a learner's streak as of today
type StreakView struct {
	CurrentStreak  int                 `json:"current_streak"`
	BestStreak     int                 `json:"best_streak"`
	LastActiveDate string              `json:"last_active_date"`
	Today          string              `json:"today"`
	Status         domain.StreakStatus `json:"status"`
	Display        string              `json:"display"`
}

// Streak reports whether the learner's streak is active, at risk or broken
func (s *Service) Streak(ctx context.Context, id uuid.UUID) (*StreakView, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	today := s.clock.Today()
	status, err := streak.Status(l.LastActiveDate, today)
	if err != nil {
		return nil, err
	}

	return &StreakView{
		CurrentStreak:  l.CurrentStreak,
		BestStreak:     l.BestStreak,
		LastActiveDate: l.LastActiveDate,
		Today:          today,
		Status:         status,
		Display:        streak.FormatDisplay(l.CurrentStreak),
	}, nil
}

// Submissions returns the learner's history, newest first. Without a
// submission log only the last submission is available.
func (s *Service) Submissions(ctx context.Context, id uuid.UUID, limit int) ([]domain.SubmissionRecord, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.submissions == nil {
		if l.LastSubmission == nil {
			return []domain.SubmissionRecord{}, nil
		}
		return []domain.SubmissionRecord{*l.LastSubmission}, nil
	}
	return s.submissions.ListSubmissions(ctx, id, limit)
}

// Leaderboard returns the top n learners for key. When the board cannot
// answer, learners are ranked straight from the store.
func (s *Service) Leaderboard(ctx context.Context, key leaderboard.SortKey, n int) ([]leaderboard.Entry, error) {
	entries, err := s.board.Top(ctx, key, n)
	if err == nil {
		return entries, nil
	}
	s.logger.Warn("leaderboard unavailable, ranking from store", "sort", key, "error", err)

	learners, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	all := make([]leaderboard.Entry, 0, len(learners))
	for _, l := range learners {
		all = append(all, leaderboard.EntryFor(l))
	}
	ranked := leaderboard.Rank(all, key)
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

// RebuildLeaderboard pushes every stored learner to the board. Used at
// startup when the board is an empty in-memory ranking.
func (s *Service) RebuildLeaderboard(ctx context.Context) (int, error) {
	learners, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	for _, l := range learners {
		if err := s.board.Update(ctx, leaderboard.EntryFor(l)); err != nil {
			return 0, fmt.Errorf("update leaderboard: %w", err)
		}
	}
	s.logger.Info("leaderboard rebuilt", "learners", len(learners))
	return len(learners), nil
}

func (s *Service) refreshBoard(ctx context.Context, l *domain.Learner) {
	if err := s.board.Update(ctx, leaderboard.EntryFor(l)); err != nil {
		s.logger.Warn("leaderboard update failed", "learner_id", l.ID, "error", err)
	}
}
