package shared

import (
	"context"
	"time"
)

// SubmissionGuard rejects a second submission of the same non-idempotent
// write while the first one is still in flight.
type SubmissionGuard interface {
	// Acquire claims key for at most ttl.
	// Returns true if the key was free, false if another submission holds it
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release frees key once the guarded write has finished
	Release(ctx context.Context, key string) error

	// Close closes the guard and releases resources
	Close() error
}

// SubmissionGuardConfig holds configuration for submission guarding
type SubmissionGuardConfig struct {
	// TTL bounds how long a crashed submission can block the key
	// Default: 30 seconds
	TTL time.Duration

	// Enabled determines whether guarding is enabled
	// Default: true
	Enabled bool
}

// DefaultSubmissionGuardConfig returns the default guard configuration
func DefaultSubmissionGuardConfig() SubmissionGuardConfig {
	return SubmissionGuardConfig{
		TTL:     30 * time.Second,
		Enabled: true,
	}
}
