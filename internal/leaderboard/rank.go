// Package leaderboard ranks learners by streak, problems solved or accuracy.
package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/google/uuid"
)

// SortKey selects the ranking criterion
type SortKey string

const (
	// SortStreak ranks by best streak, then current streak
	SortStreak SortKey = "streak"
	// SortProblems ranks by problems solved
	SortProblems SortKey = "problems"
	// SortAccuracy ranks by average accuracy
	SortAccuracy SortKey = "accuracy"
)

// SortKeys returns every supported sort key
func SortKeys() []SortKey {
	return []SortKey{SortStreak, SortProblems, SortAccuracy}
}

// ParseSortKey resolves a sort key name. Empty input means SortStreak.
func ParseSortKey(s string) (SortKey, error) {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortStreak:
		return SortStreak, nil
	case SortProblems:
		return SortProblems, nil
	case SortAccuracy:
		return SortAccuracy, nil
	default:
		return "", fmt.Errorf("%w: unknown sort key %q", domain.ErrInvalidInput, s)
	}
}

// Entry is one learner's leaderboard row
type Entry struct {
	Rank           int             `json:"rank"`
	LearnerID      uuid.UUID       `json:"learner_id"`
	Name           string          `json:"name"`
	Language       domain.Language `json:"language"`
	ProblemsSolved int             `json:"problems_solved"`
	AvgAccuracy    int             `json:"avg_accuracy"`
	CurrentStreak  int             `json:"current_streak"`
	BestStreak     int             `json:"best_streak"`
}

// EntryFor builds an unranked entry from a learner
func EntryFor(l *domain.Learner) Entry {
	return Entry{
		LearnerID:      l.ID,
		Name:           l.Name,
		Language:       l.SelectedLanguage,
		ProblemsSolved: l.ProblemsSolved,
		AvgAccuracy:    l.AvgAccuracy,
		CurrentStreak:  l.CurrentStreak,
		BestStreak:     l.BestStreak,
	}
}

// Board keeps ranked entries available for reads
type Board interface {
	Update(ctx context.Context, e Entry) error
	Top(ctx context.Context, key SortKey, n int) ([]Entry, error)
}

// Rank sorts entries by key and assigns 1-based ranks. Ties fall back to
// name then learner ID so output order is deterministic. The input slice is
// not modified.
func Rank(entries []Entry, key SortKey) []Entry {
	ranked := make([]Entry, len(entries))
	copy(ranked, entries)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if c := compare(a, b, key); c != 0 {
			return c > 0
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.LearnerID.String() < b.LearnerID.String()
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// compare returns >0 when a ranks above b for key
func compare(a, b Entry, key SortKey) int {
	switch key {
	case SortProblems:
		return a.ProblemsSolved - b.ProblemsSolved
	case SortAccuracy:
		return a.AvgAccuracy - b.AvgAccuracy
	default:
		if d := a.BestStreak - b.BestStreak; d != 0 {
			return d
		}
		return a.CurrentStreak - b.CurrentStreak
	}
}

// Score flattens an entry into a single sortable number for key.
// Streak scores pack best and current streak so that one ordered set
// reproduces the two-level ordering.
func Score(e Entry, key SortKey) float64 {
	switch key {
	case SortProblems:
		return float64(e.ProblemsSolved)
	case SortAccuracy:
		return float64(e.AvgAccuracy)
	default:
		return float64(e.BestStreak)*streakScale + float64(e.CurrentStreak)
	}
}

const streakScale = 1_000_000

func limit(entries []Entry, n int) []Entry {
	if n > 0 && len(entries) > n {
		return entries[:n]
	}
	return entries
}
