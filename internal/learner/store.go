package learner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/felixgeelhaar/codelite/internal/storage/local"
	"github.com/google/uuid"
)

const (
	collectionLearners = "learners"
	subdirSubmissions  = "submissions"
)

// FileStore persists learners as JSON files through the local store
type FileStore struct {
	store *local.Store
	// mu serializes Create so the email uniqueness check is atomic
	mu sync.Mutex
}

// NewFileStore creates a JSON file learner store rooted at basePath
func NewFileStore(basePath string) (*FileStore, error) {
	store, err := local.NewStore(basePath)
	if err != nil {
		return nil, err
	}
	return &FileStore{store: store}, nil
}

func (s *FileStore) Create(ctx context.Context, l *domain.Learner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.GetByEmail(ctx, l.Email); err == nil {
		return fmt.Errorf("%w: %s", domain.ErrLearnerAlreadyExists, l.Email)
	} else if !errors.Is(err, domain.ErrLearnerNotFound) {
		return err
	}

	if s.store.Exists(collectionLearners, l.ID.String()) {
		return fmt.Errorf("%w: %s", domain.ErrLearnerAlreadyExists, l.ID)
	}
	return s.store.Save(collectionLearners, l.ID.String(), l)
}

func (s *FileStore) Get(_ context.Context, id uuid.UUID) (*domain.Learner, error) {
	var l domain.Learner
	if err := s.store.Load(collectionLearners, id.String(), &l); err != nil {
		if errors.Is(err, local.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrLearnerNotFound, id)
		}
		return nil, err
	}
	return &l, nil
}

func (s *FileStore) GetByEmail(ctx context.Context, email string) (*domain.Learner, error) {
	learners, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, l := range learners {
		if l.Email == email {
			return l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrLearnerNotFound, email)
}

func (s *FileStore) Update(_ context.Context, l *domain.Learner) error {
	if !s.store.Exists(collectionLearners, l.ID.String()) {
		return fmt.Errorf("%w: %s", domain.ErrLearnerNotFound, l.ID)
	}
	return s.store.Save(collectionLearners, l.ID.String(), l)
}

func (s *FileStore) List(ctx context.Context) ([]*domain.Learner, error) {
	ids, err := s.store.List(collectionLearners)
	if err != nil {
		return nil, err
	}

	learners := make([]*domain.Learner, 0, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		l, err := s.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domain.ErrLearnerNotFound) {
				continue
			}
			return nil, err
		}
		learners = append(learners, l)
	}
	return learners, nil
}

func (s *FileStore) AppendSubmission(_ context.Context, learnerID uuid.UUID, rec domain.SubmissionRecord) error {
	// Zero-padded nanoseconds keep file names in chronological order
	name := fmt.Sprintf("%020d-%s", rec.Timestamp.UnixNano(), rec.ID)
	return s.store.SaveDir(collectionLearners, learnerID.String(), subdirSubmissions, name, rec)
}

func (s *FileStore) ListSubmissions(_ context.Context, learnerID uuid.UUID, limit int) ([]domain.SubmissionRecord, error) {
	names, err := s.store.ListDir(collectionLearners, learnerID.String(), subdirSubmissions)
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	records := make([]domain.SubmissionRecord, 0, len(names))
	for _, name := range names {
		var rec domain.SubmissionRecord
		if err := s.store.LoadDir(collectionLearners, learnerID.String(), subdirSubmissions, name, &rec); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
