package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pattycroche/storefront/internal/domain/cart"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/pattycroche/storefront/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Stores bundles the session-scoped stores used by the storefront
type Stores struct {
	Carts  cart.Store
	Quotes shipping.QuoteSessionStore
	Guard  shared.SubmissionGuard

	closers []func() error
}

// StoresOption is a functional option for NewStores
type StoresOption func(*storesOptions)

type storesOptions struct {
	client *redis.Client
	logger *zap.Logger
}

// WithRedisClient backs quote sessions and the submission guard with Redis,
// and carts too when the cart store is configured as "redis"
func WithRedisClient(client *redis.Client) StoresOption {
	return func(o *storesOptions) {
		o.client = client
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) StoresOption {
	return func(o *storesOptions) {
		o.logger = logger
	}
}

// NewStores builds the stores from configuration
func NewStores(cartCfg config.CartConfig, checkoutCfg config.CheckoutConfig, opts ...StoresOption) (*Stores, error) {
	o := storesOptions{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Stores{}
	switch {
	case cartCfg.Store == "redis" && o.client == nil:
		return nil, errors.New("cart store redis requires a Redis client")
	case cartCfg.Store == "redis":
		s.Carts = NewRedisCartStore(o.client, cartCfg.TTL)
	default:
		carts := NewInMemoryCartStore(cartCfg.TTL)
		s.Carts = carts
		s.closers = append(s.closers, carts.Close)
	}

	if o.client != nil {
		s.Quotes = NewRedisQuoteSessionStore(o.client, checkoutCfg.QuoteTTL)
		s.Guard = NewRedisSubmissionGuard(o.client, "")
		o.logger.Info("Using Redis quote sessions and submission guard")
		return s, nil
	}

	quotes := NewInMemoryQuoteSessionStore(checkoutCfg.QuoteTTL)
	guard := NewInMemorySubmissionGuard()
	s.Quotes = quotes
	s.Guard = guard
	s.closers = append(s.closers, quotes.Close, guard.Close)
	o.logger.Warn("Redis disabled, using in-memory session stores. " +
		"Sessions are not shared across instances.")
	return s, nil
}

// Close releases in-memory store resources
func (s *Stores) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
