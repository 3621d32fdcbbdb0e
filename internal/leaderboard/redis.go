package leaderboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisBoard stores entries in a Redis hash and keeps one sorted set per
// sort key.
//
//	<prefix>:entries        hash   learner_id -> entry JSON
//	<prefix>:rank:<key>     zset   learner_id scored by Score(entry, key)
type RedisBoard struct {
	client *redis.Client
	prefix string
}

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisBoard connects to Redis and verifies connectivity
func NewRedisBoard(ctx context.Context, opts RedisOptions) (*RedisBoard, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewRedisBoardWithClient(client, opts.Prefix), nil
}

// NewRedisBoardWithClient wraps an existing client
func NewRedisBoardWithClient(client *redis.Client, prefix string) *RedisBoard {
	if prefix == "" {
		prefix = "codelite:leaderboard"
	}
	return &RedisBoard{client: client, prefix: prefix}
}

func (b *RedisBoard) entriesKey() string {
	return b.prefix + ":entries"
}

func (b *RedisBoard) rankKey(key SortKey) string {
	return fmt.Sprintf("%s:rank:%s", b.prefix, key)
}

// Update writes the entry and its scores in a single transaction
func (b *RedisBoard) Update(ctx context.Context, e Entry) error {
	e.Rank = 0
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal leaderboard entry: %w", err)
	}

	member := e.LearnerID.String()
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, b.entriesKey(), member, payload)
		for _, key := range SortKeys() {
			pipe.ZAdd(ctx, b.rankKey(key), redis.Z{Score: Score(e, key), Member: member})
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}
	return nil
}

// Top reads the n highest scored learners for key (all when n <= 0)
func (b *RedisBoard) Top(ctx context.Context, key SortKey, n int) ([]Entry, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n - 1)
	}

	ids, err := b.client.ZRevRange(ctx, b.rankKey(key), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard %s: %w", key, err)
	}
	if len(ids) == 0 {
		return []Entry{}, nil
	}

	raw, err := b.client.HMGet(ctx, b.entriesKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read leaderboard entries: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			slog.Warn("leaderboard entry missing", "learner_id", ids[i])
			continue
		}
		var e Entry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			slog.Warn("skipping malformed leaderboard entry", "learner_id", ids[i], "error", err)
			continue
		}
		entries = append(entries, e)
	}

	// Redis breaks score ties by member; re-rank for the shared tie-break order
	return Rank(entries, key), nil
}

// HealthCheck verifies Redis connectivity
func (b *RedisBoard) HealthCheck(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (b *RedisBoard) Close() error {
	return b.client.Close()
}
