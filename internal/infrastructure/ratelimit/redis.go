package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis counts with INCR on a key that expires with the window, so every
// instance sharing the server sees the same counts.
type Redis struct {
	client *redis.Client
	prefix string
	limit  int
	period time.Duration
}

// NewRedis allows limit requests per key every period. An empty prefix
// uses "storefront:ratelimit:".
func NewRedis(client *redis.Client, prefix string, limit int, period time.Duration) *Redis {
	if prefix == "" {
		prefix = "storefront:ratelimit:"
	}
	return &Redis{client: client, prefix: prefix, limit: limit, period: period}
}

func (r *Redis) Take(ctx context.Context, key string) (Quota, error) {
	k := r.prefix + key

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		ttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return Quota{}, fmt.Errorf("rate limit %q: %w", key, err)
	}

	reset := ttl.Val()
	if reset <= 0 {
		// first hit of the window, or a key that lost its expiry
		if err := r.client.PExpire(ctx, k, r.period).Err(); err != nil {
			return Quota{}, fmt.Errorf("rate limit %q: %w", key, err)
		}
		reset = r.period
	}
	return quota(r.limit, int(incr.Val()), reset), nil
}

var (
	_ Limiter = (*Memory)(nil)
	_ Limiter = (*Redis)(nil)
)
