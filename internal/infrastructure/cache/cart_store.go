package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pattycroche/storefront/internal/domain/cart"
	"github.com/redis/go-redis/v9"
)

// InMemoryCartStore keeps carts in process memory.
// Suitable for a single instance; carts are lost on restart.
type InMemoryCartStore struct {
	carts *expiringMap[*cart.Cart]
	ttl   time.Duration
}

// NewInMemoryCartStore creates a store whose carts expire ttl after their last save
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	return &InMemoryCartStore{
		carts: newExpiringMap[*cart.Cart](5 * time.Minute),
		ttl:   ttl,
	}
}

// Get returns a copy of the session's cart
func (s *InMemoryCartStore) Get(_ context.Context, sessionID string) (*cart.Cart, error) {
	c, ok := s.carts.get(sessionID)
	if !ok {
		return nil, cart.ErrCartNotFound
	}
	return c.Clone(), nil
}

// Save stores a copy of the cart so later mutations by the caller are not shared
func (s *InMemoryCartStore) Save(_ context.Context, c *cart.Cart) error {
	if c == nil {
		return errors.New("cart is nil")
	}
	s.carts.set(c.SessionID(), c.Clone(), s.ttl)
	return nil
}

// Delete removes the session's cart
func (s *InMemoryCartStore) Delete(_ context.Context, sessionID string) error {
	s.carts.delete(sessionID)
	return nil
}

// Close stops the expiry sweeper
func (s *InMemoryCartStore) Close() error {
	s.carts.close()
	return nil
}

// RedisCartStore keeps carts in Redis as JSON so every instance sees them
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisCartStore creates a Redis-backed cart store
func NewRedisCartStore(client *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{
		client:    client,
		keyPrefix: "storefront:cart:",
		ttl:       ttl,
	}
}

// Get loads the session's cart
func (s *RedisCartStore) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, cart.ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	c := cart.New(sessionID)
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}
	return c, nil
}

// Save writes the cart and refreshes its TTL
func (s *RedisCartStore) Save(ctx context.Context, c *cart.Cart) error {
	if c == nil {
		return errors.New("cart is nil")
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+c.SessionID(), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set cart: %w", err)
	}
	return nil
}

// Delete removes the session's cart
func (s *RedisCartStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("redis delete cart: %w", err)
	}
	return nil
}

var (
	_ cart.Store = (*InMemoryCartStore)(nil)
	_ cart.Store = (*RedisCartStore)(nil)
)
