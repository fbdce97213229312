package cache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingLookup struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (l *countingLookup) Lookup(_ context.Context, code valueobject.PostalCode) (valueobject.Address, error) {
	l.calls.Add(1)
	time.Sleep(l.delay)
	if l.err != nil {
		return valueobject.Address{}, l.err
	}
	return valueobject.NewAddress(code, "Rua Visconde do Rio Branco", "Taubaté", "SP")
}

func atoiPort(t *testing.T, s string) int {
	t.Helper()
	port, err := strconv.Atoi(s)
	require.NoError(t, err)
	return port
}

func TestCachedPostalLookup(t *testing.T) {
	ctx := context.Background()
	code := valueobject.MustNewPostalCode("12010-000")

	t.Run("caches successful lookups", func(t *testing.T) {
		next := &countingLookup{}
		lookup := NewCachedPostalLookup(next, time.Hour, zap.NewNop())
		defer lookup.Close()

		for range 3 {
			addr, err := lookup.Lookup(ctx, code)
			require.NoError(t, err)
			assert.Equal(t, "Taubaté", addr.City())
		}
		assert.Equal(t, int32(1), next.calls.Load())
	})

	t.Run("collapses concurrent lookups", func(t *testing.T) {
		next := &countingLookup{delay: 50 * time.Millisecond}
		lookup := NewCachedPostalLookup(next, time.Hour, zap.NewNop())
		defer lookup.Close()

		var wg sync.WaitGroup
		for range 5 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := lookup.Lookup(ctx, code)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), next.calls.Load())
	})

	t.Run("does not cache failures", func(t *testing.T) {
		next := &countingLookup{err: shipping.ErrPostalCodeNotFound}
		lookup := NewCachedPostalLookup(next, time.Hour, zap.NewNop())
		defer lookup.Close()

		_, err := lookup.Lookup(ctx, code)
		assert.ErrorIs(t, err, shipping.ErrPostalCodeNotFound)
		_, err = lookup.Lookup(ctx, code)
		assert.ErrorIs(t, err, shipping.ErrPostalCodeNotFound)
		assert.Equal(t, int32(2), next.calls.Load())
	})
}
