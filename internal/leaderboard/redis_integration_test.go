//go:build integration

package leaderboard_test

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/codelite/internal/leaderboard"
	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns its address
func setupRedis(t *testing.T) (string, func()) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start Redis container: %v", err)
	}

	addr, err := container.Endpoint(ctx, "")
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("failed to get Redis endpoint: %v", err)
	}

	cleanup := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return addr, cleanup
}

func TestIntegration_RedisBoard_UpdateAndTop(t *testing.T) {
	addr, cleanup := setupRedis(t)
	defer cleanup()

	ctx := context.Background()
	board, err := leaderboard.NewRedisBoard(ctx, leaderboard.RedisOptions{Addr: addr, Prefix: "test"})
	if err != nil {
		t.Fatalf("NewRedisBoard() error = %v", err)
	}
	defer board.Close()

	entries := []leaderboard.Entry{
		{LearnerID: uuid.New(), Name: "Ada", ProblemsSolved: 4, AvgAccuracy: 80, CurrentStreak: 2, BestStreak: 5},
		{LearnerID: uuid.New(), Name: "Grace", ProblemsSolved: 9, AvgAccuracy: 65, CurrentStreak: 4, BestStreak: 5},
		{LearnerID: uuid.New(), Name: "Linus", ProblemsSolved: 1, AvgAccuracy: 95, CurrentStreak: 1, BestStreak: 1},
	}
	for _, e := range entries {
		if err := board.Update(ctx, e); err != nil {
			t.Fatalf("Update() error = %v", err)
		}
	}

	tests := []struct {
		key   leaderboard.SortKey
		first string
	}{
		{leaderboard.SortStreak, "Grace"},
		{leaderboard.SortProblems, "Grace"},
		{leaderboard.SortAccuracy, "Linus"},
	}
	for _, tt := range tests {
		top, err := board.Top(ctx, tt.key, 2)
		if err != nil {
			t.Fatalf("Top(%s) error = %v", tt.key, err)
		}
		if len(top) != 2 {
			t.Fatalf("Top(%s) = %d entries; want 2", tt.key, len(top))
		}
		if top[0].Name != tt.first || top[0].Rank != 1 {
			t.Errorf("Top(%s)[0] = %+v; want %s at rank 1", tt.key, top[0], tt.first)
		}
	}

	// Updating a learner moves them without duplicating
	entries[2].ProblemsSolved = 20
	if err := board.Update(ctx, entries[2]); err != nil {
		t.Fatal(err)
	}
	all, err := board.Top(ctx, leaderboard.SortProblems, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].Name != "Linus" {
		t.Errorf("Top(problems) after update = %+v", all)
	}
}

func TestIntegration_RedisBoard_Unreachable(t *testing.T) {
	_, err := leaderboard.NewRedisBoard(context.Background(), leaderboard.RedisOptions{Addr: "127.0.0.1:1"})
	if err == nil {
		t.Error("expected error for unreachable redis")
	}
}
