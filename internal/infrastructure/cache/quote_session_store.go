package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/redis/go-redis/v9"
)

// InMemoryQuoteSessionStore keeps the last offered options per session
type InMemoryQuoteSessionStore struct {
	sessions *expiringMap[shipping.QuoteSession]
	ttl      time.Duration
}

// NewInMemoryQuoteSessionStore creates a store whose entries expire after ttl
func NewInMemoryQuoteSessionStore(ttl time.Duration) *InMemoryQuoteSessionStore {
	return &InMemoryQuoteSessionStore{
		sessions: newExpiringMap[shipping.QuoteSession](time.Minute),
		ttl:      ttl,
	}
}

// Get returns the session's options
func (s *InMemoryQuoteSessionStore) Get(_ context.Context, sessionID string) (*shipping.QuoteSession, error) {
	qs, ok := s.sessions.get(sessionID)
	if !ok {
		return nil, shipping.ErrQuoteSessionNotFound
	}
	qs.Quotes = append([]shipping.Quote(nil), qs.Quotes...)
	return &qs, nil
}

// Save replaces the session's options
func (s *InMemoryQuoteSessionStore) Save(_ context.Context, sessionID string, session shipping.QuoteSession) error {
	session.Quotes = append([]shipping.Quote(nil), session.Quotes...)
	s.sessions.set(sessionID, session, s.ttl)
	return nil
}

// Close stops the expiry sweeper
func (s *InMemoryQuoteSessionStore) Close() error {
	s.sessions.close()
	return nil
}

// RedisQuoteSessionStore keeps offered options in Redis
type RedisQuoteSessionStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisQuoteSessionStore creates a Redis-backed quote session store
func NewRedisQuoteSessionStore(client *redis.Client, ttl time.Duration) *RedisQuoteSessionStore {
	return &RedisQuoteSessionStore{
		client:    client,
		keyPrefix: "storefront:quotes:",
		ttl:       ttl,
	}
}

// Get loads the session's options
func (s *RedisQuoteSessionStore) Get(ctx context.Context, sessionID string) (*shipping.QuoteSession, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, shipping.ErrQuoteSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get quote session: %w", err)
	}

	var qs shipping.QuoteSession
	if err := json.Unmarshal(data, &qs); err != nil {
		return nil, fmt.Errorf("unmarshal quote session: %w", err)
	}
	return &qs, nil
}

// Save replaces the session's options
func (s *RedisQuoteSessionStore) Save(ctx context.Context, sessionID string, session shipping.QuoteSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal quote session: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+sessionID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set quote session: %w", err)
	}
	return nil
}

var (
	_ shipping.QuoteSessionStore = (*InMemoryQuoteSessionStore)(nil)
	_ shipping.QuoteSessionStore = (*RedisQuoteSessionStore)(nil)
)
