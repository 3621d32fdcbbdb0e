package leaderboard

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryBoard keeps entries in process memory
type MemoryBoard struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]Entry
}

// NewMemoryBoard creates an empty in-memory board
func NewMemoryBoard() *MemoryBoard {
	return &MemoryBoard{entries: make(map[uuid.UUID]Entry)}
}

// Update inserts or replaces a learner's entry
func (b *MemoryBoard) Update(_ context.Context, e Entry) error {
	b.mu.Lock()
	b.entries[e.LearnerID] = e
	b.mu.Unlock()
	return nil
}

// Top returns the first n ranked entries (all when n <= 0)
func (b *MemoryBoard) Top(_ context.Context, key SortKey, n int) ([]Entry, error) {
	b.mu.RLock()
	entries := make([]Entry, 0, len(b.entries))
	for _, e := range b.entries {
		entries = append(entries, e)
	}
	b.mu.RUnlock()

	return limit(Rank(entries, key), n), nil
}

// Len returns the number of tracked learners
func (b *MemoryBoard) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.entries)
}
