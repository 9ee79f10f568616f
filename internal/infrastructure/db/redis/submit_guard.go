package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultGuardTTL = 10 * time.Minute

// SubmitGuard suppresses duplicate order submissions backed by Redis.
// Key format: submit:<user_id>:<idempotency_key>
type SubmitGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSubmitGuard creates a SubmitGuard wrapping the given Redis client.
func NewSubmitGuard(client *redis.Client, ttl time.Duration) *SubmitGuard {
	if ttl <= 0 {
		ttl = defaultGuardTTL
	}
	return &SubmitGuard{client: client, ttl: ttl}
}

// Claim reports whether key is new. The key expires after the guard ttl.
func (g *SubmitGuard) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key(key), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("submit guard claim: %w", err)
	}
	return ok, nil
}

// Release forgets key so the submission can be retried.
func (g *SubmitGuard) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, g.key(key)).Err()
}

func (g *SubmitGuard) key(key string) string {
	return fmt.Sprintf("submit:%s", key)
}
