package learner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/codelite/internal/domain"
	"github.com/google/uuid"
)

func newLearner(t *testing.T, name, email string) *domain.Learner {
	t.Helper()
	l, err := domain.NewLearner(name, email, "2024-03-10", time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestFileStore_CreateGet(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	l := newLearner(t, "Ada", "ada@example.com")

	if err := store.Create(ctx, l); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := store.Get(ctx, l.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Email != l.Email || got.BestStreak != 1 {
		t.Errorf("Get() = %+v", got)
	}

	byEmail, err := store.GetByEmail(ctx, "ADA@example.com")
	if err != nil || byEmail.ID != l.ID {
		t.Errorf("GetByEmail() = %+v, %v", byEmail, err)
	}

	if err := store.Create(ctx, newLearner(t, "Other", "ada@example.com")); !errors.Is(err, domain.ErrLearnerAlreadyExists) {
		t.Errorf("duplicate Create() error = %v; want ErrLearnerAlreadyExists", err)
	}
}

func TestFileStore_NotFound(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	if _, err := store.Get(ctx, uuid.New()); !errors.Is(err, domain.ErrLearnerNotFound) {
		t.Errorf("Get() error = %v; want ErrLearnerNotFound", err)
	}
	if _, err := store.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrLearnerNotFound) {
		t.Errorf("GetByEmail() error = %v; want ErrLearnerNotFound", err)
	}
	if err := store.Update(ctx, newLearner(t, "Ada", "ada@example.com")); !errors.Is(err, domain.ErrLearnerNotFound) {
		t.Errorf("Update() error = %v; want ErrLearnerNotFound", err)
	}
}

func TestFileStore_UpdateList(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	ctx := context.Background()

	ada := newLearner(t, "Ada", "ada@example.com")
	grace := newLearner(t, "Grace", "grace@example.com")
	store.Create(ctx, ada)
	store.Create(ctx, grace)

	ada.ProblemsSolved = 4
	if err := store.Update(ctx, ada); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	all, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("List() = %d learners; want 2", len(all))
	}
	for _, l := range all {
		if l.ID == ada.ID && l.ProblemsSolved != 4 {
			t.Errorf("updated ProblemsSolved = %d; want 4", l.ProblemsSolved)
		}
	}
}

func TestFileStore_Submissions(t *testing.T) {
	store, _ := NewFileStore(t.TempDir())
	ctx := context.Background()
	l := newLearner(t, "Ada", "ada@example.com")
	store.Create(ctx, l)

	base := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := domain.SubmissionRecord{
			ID:        uuid.New(),
			ProblemID: "fizzbuzz",
			Accuracy:  50 + i*10,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.AppendSubmission(ctx, l.ID, rec); err != nil {
			t.Fatalf("AppendSubmission() error = %v", err)
		}
	}

	recs, err := store.ListSubmissions(ctx, l.ID, 2)
	if err != nil {
		t.Fatalf("ListSubmissions() error = %v", err)
	}
	if len(recs) != 2 || recs[0].Accuracy != 70 || recs[1].Accuracy != 60 {
		t.Errorf("ListSubmissions(2) = %+v; want newest first", recs)
	}

	none, err := store.ListSubmissions(ctx, uuid.New(), 0)
	if err != nil || len(none) != 0 {
		t.Errorf("ListSubmissions(unknown) = %v, %v", none, err)
	}
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	k := newKeyedMutex()
	id := uuid.New()

	unlock := k.Lock(id)
	acquired := make(chan struct{})
	go func() {
		release := k.Lock(id)
		close(acquired)
		release()
	}()

	select {
	case <-acquired:
		t.Fatal("second Lock() acquired while first held")
	case <-time.After(20 * time.Millisecond):
	}

	// Other keys are independent
	other := k.Lock(uuid.New())
	other()

	unlock()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second Lock() never acquired")
	}
	if k.size() != 0 {
		t.Errorf("size() = %d; want 0", k.size())
	}
}
