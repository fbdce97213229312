package cache

import (
	"context"
	"time"

	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedPostalLookup remembers resolved addresses and collapses concurrent
// lookups of the same postal code into one upstream call
type CachedPostalLookup struct {
	next      shipping.PostalLookup
	addresses *expiringMap[valueobject.Address]
	ttl       time.Duration
	group     singleflight.Group
	logger    *zap.Logger
}

// NewCachedPostalLookup wraps next. Only successful lookups are cached.
func NewCachedPostalLookup(next shipping.PostalLookup, ttl time.Duration, logger *zap.Logger) *CachedPostalLookup {
	return &CachedPostalLookup{
		next:      next,
		addresses: newExpiringMap[valueobject.Address](10 * time.Minute),
		ttl:       ttl,
		logger:    logger,
	}
}

// Lookup returns the cached address or resolves it
func (c *CachedPostalLookup) Lookup(ctx context.Context, code valueobject.PostalCode) (valueobject.Address, error) {
	key := code.Digits()
	if addr, ok := c.addresses.get(key); ok {
		return addr, nil
	}

	v, err, shared := c.group.Do(key, func() (any, error) {
		addr, err := c.next.Lookup(ctx, code)
		if err != nil {
			return valueobject.Address{}, err
		}
		c.addresses.set(key, addr, c.ttl)
		return addr, nil
	})
	if shared {
		c.logger.Debug("Postal lookup shared with in-flight call", zap.String("postal_code", key))
	}
	if err != nil {
		return valueobject.Address{}, err
	}
	return v.(valueobject.Address), nil
}

// Close stops the expiry sweeper
func (c *CachedPostalLookup) Close() error {
	c.addresses.close()
	return nil
}

var _ shipping.PostalLookup = (*CachedPostalLookup)(nil)
