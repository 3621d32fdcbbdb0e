package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/google/uuid"
)

func sampleEntries() []Entry {
	return []Entry{
		{LearnerID: uuid.MustParse("00000000-0000-0000-0000-000000000001"), Name: "Ada", ProblemsSolved: 4, AvgAccuracy: 80, CurrentStreak: 2, BestStreak: 5},
		{LearnerID: uuid.MustParse("00000000-0000-0000-0000-000000000002"), Name: "Grace", ProblemsSolved: 9, AvgAccuracy: 65, CurrentStreak: 4, BestStreak: 5},
		{LearnerID: uuid.MustParse("00000000-0000-0000-0000-000000000003"), Name: "Linus", ProblemsSolved: 1, AvgAccuracy: 95, CurrentStreak: 1, BestStreak: 1},
	}
}

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestRank(t *testing.T) {
	tests := []struct {
		key  SortKey
		want []string
	}{
		// Ada and Grace share best streak 5; Grace has the longer current streak
		{SortStreak, []string{"Grace", "Ada", "Linus"}},
		{SortProblems, []string{"Grace", "Ada", "Linus"}},
		{SortAccuracy, []string{"Linus", "Ada", "Grace"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			ranked := Rank(sampleEntries(), tt.key)
			got := names(ranked)
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("Rank(%s) = %v; want %v", tt.key, got, tt.want)
				}
			}
			for i, e := range ranked {
				if e.Rank != i+1 {
					t.Errorf("entry %d Rank = %d; want %d", i, e.Rank, i+1)
				}
			}
		})
	}
}

func TestRank_TieBreakByName(t *testing.T) {
	entries := []Entry{
		{LearnerID: uuid.New(), Name: "Zed", ProblemsSolved: 3},
		{LearnerID: uuid.New(), Name: "Amy", ProblemsSolved: 3},
	}
	got := names(Rank(entries, SortProblems))
	if got[0] != "Amy" || got[1] != "Zed" {
		t.Errorf("Rank(tie) = %v; want [Amy Zed]", got)
	}
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	entries := sampleEntries()
	Rank(entries, SortAccuracy)
	if entries[0].Name != "Ada" || entries[0].Rank != 0 {
		t.Errorf("Rank mutated input: %+v", entries[0])
	}
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in   string
		want SortKey
	}{
		{"", SortStreak},
		{"streak", SortStreak},
		{"Problems", SortProblems},
		{" accuracy ", SortAccuracy},
	}
	for _, tt := range tests {
		got, err := ParseSortKey(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseSortKey(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}

	if _, err := ParseSortKey("speed"); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("ParseSortKey(speed) error = %v; want ErrInvalidInput", err)
	}
}

func TestScore_StreakOrdering(t *testing.T) {
	higherBest := Entry{BestStreak: 6, CurrentStreak: 0}
	higherCurrent := Entry{BestStreak: 5, CurrentStreak: 5}
	if Score(higherBest, SortStreak) <= Score(higherCurrent, SortStreak) {
		t.Error("best streak must dominate current streak in score")
	}
	if Score(Entry{AvgAccuracy: 77}, SortAccuracy) != 77 {
		t.Error("accuracy score should equal average accuracy")
	}
}

func TestEntryFor(t *testing.T) {
	l, err := domain.NewLearner("Ada", "ada@example.com", "2024-01-01", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	l.ProblemsSolved = 3
	l.AvgAccuracy = 72

	e := EntryFor(l)
	if e.LearnerID != l.ID || e.Name != "Ada" || e.ProblemsSolved != 3 || e.AvgAccuracy != 72 {
		t.Errorf("EntryFor() = %+v", e)
	}
	if e.BestStreak != 1 || e.Language != domain.LanguagePython {
		t.Errorf("EntryFor() streak/language = %+v", e)
	}
}

func TestMemoryBoard(t *testing.T) {
	ctx := context.Background()
	board := NewMemoryBoard()

	for _, e := range sampleEntries() {
		if err := board.Update(ctx, e); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}

	// Replacing an entry keeps one row per learner
	updated := sampleEntries()[2]
	updated.BestStreak = 10
	if err := board.Update(ctx, updated); err != nil {
		t.Fatal(err)
	}
	if board.Len() != 3 {
		t.Errorf("Len() = %d; want 3", board.Len())
	}

	top, err := board.Top(ctx, SortStreak, 2)
	if err != nil {
		t.Fatalf("Top() error = %v", err)
	}
	if len(top) != 2 || top[0].Name != "Linus" {
		t.Errorf("Top(streak, 2) = %v", names(top))
	}

	all, _ := board.Top(ctx, SortProblems, 0)
	if len(all) != 3 {
		t.Errorf("Top(problems, 0) = %d entries; want 3", len(all))
	}
}
