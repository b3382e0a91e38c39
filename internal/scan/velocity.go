package scan

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// VelocityCounter tracks how often a scanner produced scan events within a
// short trailing window. It backs the rapid-scanning signal only and is
// always best effort: a counter outage degrades detection, never scanning.
type VelocityCounter interface {
	Record(ctx context.Context, scannerID string, at time.Time) error
	CountRecent(ctx context.Context, scannerID string, window time.Duration) (int, error)
}

const velocityKeyPrefix = "scan:velocity:"

// RedisVelocity keeps one sorted set per scanner, scored by event time in
// unix milliseconds, pruned on every write.
type RedisVelocity struct {
	client *redis.Client
}

func NewRedisVelocity(client *redis.Client) *RedisVelocity {
	return &RedisVelocity{client: client}
}

func (v *RedisVelocity) key(scannerID string) string {
	return velocityKeyPrefix + scannerID
}

func (v *RedisVelocity) Record(ctx context.Context, scannerID string, at time.Time) error {
	key := v.key(scannerID)
	ms := at.UnixMilli()

	pipe := v.client.TxPipeline()
	// Members must be unique or same-millisecond scans collapse into one
	// entry; the timestamp lives in the score only.
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(ms), Member: uuid.NewString()})
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(at.Add(-time.Hour).UnixMilli(), 10))
	pipe.Expire(ctx, key, time.Hour)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record scan velocity: %w", err)
	}
	return nil
}

func (v *RedisVelocity) CountRecent(ctx context.Context, scannerID string, window time.Duration) (int, error) {
	cutoff := time.Now().Add(-window).UnixMilli()
	n, err := v.client.ZCount(ctx, v.key(scannerID), strconv.FormatInt(cutoff, 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count recent scans: %w", err)
	}
	return int(n), nil
}

// StoreVelocity derives the velocity signal from the persisted scan events
// themselves, for deployments without redis. Record is a no-op because
// inserting the event already records it.
type StoreVelocity struct {
	store *PostgresStore
}

func NewStoreVelocity(store *PostgresStore) *StoreVelocity {
	return &StoreVelocity{store: store}
}

func (v *StoreVelocity) Record(context.Context, string, time.Time) error { return nil }

func (v *StoreVelocity) CountRecent(ctx context.Context, scannerID string, window time.Duration) (int, error) {
	return v.store.CountRecentByScanner(ctx, scannerID, time.Now().Add(-window))
}
