// Package ratelimit counts requests per caller in fixed windows, in process
// or in Redis when several instances serve the shop.
package ratelimit

import (
	"context"
	"time"
)

// Quota is the outcome of one Take.
type Quota struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration // until the window resets; set when !Allowed
}

// Limiter admits at most a fixed number of requests per key and window.
type Limiter interface {
	Take(ctx context.Context, key string) (Quota, error)
}

func quota(limit, used int, reset time.Duration) Quota {
	q := Quota{Allowed: used <= limit, Limit: limit, Remaining: max(limit-used, 0)}
	if !q.Allowed {
		q.RetryAfter = reset
	}
	return q
}
