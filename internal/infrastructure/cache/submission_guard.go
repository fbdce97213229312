package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// InMemorySubmissionGuard implements SubmissionGuard for a single instance
type InMemorySubmissionGuard struct {
	held *expiringMap[struct{}]
}

// NewInMemorySubmissionGuard creates an in-process guard
func NewInMemorySubmissionGuard() *InMemorySubmissionGuard {
	return &InMemorySubmissionGuard{held: newExpiringMap[struct{}](time.Minute)}
}

// Acquire claims key unless a live claim exists
func (g *InMemorySubmissionGuard) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	return g.held.setIfAbsent(key, struct{}{}, ttl), nil
}

// Release frees key
func (g *InMemorySubmissionGuard) Release(_ context.Context, key string) error {
	g.held.delete(key)
	return nil
}

// Close stops the expiry sweeper. Safe to call multiple times
func (g *InMemorySubmissionGuard) Close() error {
	g.held.close()
	return nil
}

// Size returns the number of held keys (for testing/monitoring)
func (g *InMemorySubmissionGuard) Size() int {
	return g.held.size()
}

// RedisSubmissionGuard implements SubmissionGuard with SET NX so that
// instances behind a load balancer share claims
type RedisSubmissionGuard struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSubmissionGuard creates a guard on an existing client
func NewRedisSubmissionGuard(client *redis.Client, keyPrefix string) *RedisSubmissionGuard {
	if keyPrefix == "" {
		keyPrefix = "storefront:guard:"
	}
	return &RedisSubmissionGuard{client: client, keyPrefix: keyPrefix}
}

// Acquire claims key with a TTL in a single atomic operation
func (g *RedisSubmissionGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire submission guard: %w", err)
	}
	return ok, nil
}

// Release frees key
func (g *RedisSubmissionGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, g.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release submission guard: %w", err)
	}
	return nil
}

// Close is a no-op; the shared client is closed by its owner
func (g *RedisSubmissionGuard) Close() error {
	return nil
}

var (
	_ shared.SubmissionGuard = (*InMemorySubmissionGuard)(nil)
	_ shared.SubmissionGuard = (*RedisSubmissionGuard)(nil)
)
