package learner

import (
	"context"
	"sort"

	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/google/uuid"
)

// overviewWindow bounds how much history feeds an overview
const overviewWindow = 50

// Overview provides aggregate statistics for one learner
type Overview struct {
	LearnerID      uuid.UUID                 `json:"learner_id"`
	ProblemsSolved int                       `json:"problems_solved"`
	AvgAccuracy    int                       `json:"avg_accuracy"`
	Streak         *StreakView               `json:"streak"`
	TopTopics      []TopicStat               `json:"top_topics"`
	StatusCounts   map[string]int            `json:"status_counts"`
	BestByProblem  map[string]int            `json:"best_by_problem"`
	NextProblem    string                    `json:"next_problem,omitempty"`
	Recent         []domain.SubmissionRecord `json:"recent"`
}

// TopicStat is how often a topic was detected across submissions
type TopicStat struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// Overview returns aggregate analytics for a learner
func (s *Service) Overview(ctx context.Context, id uuid.UUID) (*Overview, error) {
	l, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	view, err := s.Streak(ctx, id)
	if err != nil {
		return nil, err
	}

	recent, err := s.Submissions(ctx, id, overviewWindow)
	if err != nil {
		return nil, err
	}

	o := &Overview{
		LearnerID:      l.ID,
		ProblemsSolved: l.ProblemsSolved,
		AvgAccuracy:    l.AvgAccuracy,
		Streak:         view,
		TopTopics:      topTopics(l.TopicCounts, 5),
		StatusCounts:   make(map[string]int),
		BestByProblem:  make(map[string]int),
		Recent:         recent,
	}

	for _, rec := range recent {
		o.StatusCounts[string(rec.Status)]++
		if best, seen := o.BestByProblem[rec.ProblemID]; !seen || rec.Accuracy > best {
			o.BestByProblem[rec.ProblemID] = rec.Accuracy
		}
	}

	o.NextProblem = s.nextProblem(l)
	return o, nil
}

// nextProblem repeats the last attempted problem until it is solved Correct,
// then moves on to its successor in catalog order.
func (s *Service) nextProblem(l *domain.Learner) string {
	if l.LastSubmission == nil {
		if problems := s.problems.List(); len(problems) > 0 {
			return problems[0].ID
		}
		return ""
	}
	if l.LastSubmission.Status != domain.StatusCorrect {
		return l.LastSubmission.ProblemID
	}
	next, err := s.problems.Next(l.LastSubmission.ProblemID)
	if err != nil || next == nil {
		return ""
	}
	return next.ID
}

// topTopics returns the n most detected topics, ties broken by name
func topTopics(counts map[string]int, n int) []TopicStat {
	stats := make([]TopicStat, 0, len(counts))
	for topic, count := range counts {
		stats = append(stats, TopicStat{Topic: topic, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Count != stats[j].Count {
			return stats[i].Count > stats[j].Count
		}
		return stats[i].Topic < stats[j].Topic
	})
	if len(stats) > n {
		stats = stats[:n]
	}
	return stats
}
