package learner

import (
	"context"

	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/google/uuid"
)

// Store defines the persistence interface for learners.
// The JSON file store, SQLite and Postgres stores implement it.
type Store interface {
	// Create inserts a new learner. A taken email is ErrLearnerAlreadyExists.
	Create(ctx context.Context, l *domain.Learner) error
	// Get returns a learner by ID or ErrLearnerNotFound
	Get(ctx context.Context, id uuid.UUID) (*domain.Learner, error)
	// GetByEmail returns a learner by normalized email or ErrLearnerNotFound
	GetByEmail(ctx context.Context, email string) (*domain.Learner, error)
	// Update replaces a stored learner
	Update(ctx context.Context, l *domain.Learner) error
	// List returns every learner
	List(ctx context.Context) ([]*domain.Learner, error)
}

// SubmissionLog keeps the full submission history. Stores that only track
// the last submission on the learner do not implement it.
type SubmissionLog interface {
	AppendSubmission(ctx context.Context, learnerID uuid.UUID, rec domain.SubmissionRecord) error
	// ListSubmissions returns up to limit records, newest first (all when limit <= 0)
	ListSubmissions(ctx context.Context, learnerID uuid.UUID, limit int) ([]domain.SubmissionRecord, error)
}

// Ensure FileStore implements both interfaces
var (
	_ Store         = (*FileStore)(nil)
	_ SubmissionLog = (*FileStore)(nil)
)
