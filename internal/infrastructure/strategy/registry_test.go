package strategy

import (
	"fmt"
	"sync"
	"testing"

	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plusOne lists every product one real above its net
type plusOne struct {
	strategy.Descriptor
}

func newPlusOne(name string) *plusOne {
	return &plusOne{Descriptor: strategy.Describe(name, "net plus one")}
}

func (s *plusOne) ListingPrice(net decimal.Decimal) decimal.Decimal {
	return net.Add(decimal.NewFromInt(1))
}

func (s *plusOne) FeeRate() decimal.Decimal {
	return decimal.Zero
}

func TestListingRegistry_Register(t *testing.T) {
	r := NewListingRegistry()

	require.NoError(t, r.Register(newPlusOne("a"), newPlusOne("b")))
	assert.Equal(t, []string{"a", "b"}, r.Names())

	t.Run("duplicate name fails", func(t *testing.T) {
		err := r.Register(newPlusOne("c"), newPlusOne("a"))
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		// strategies before the duplicate stay registered
		assert.Equal(t, []string{"a", "b", "c"}, r.Names())
	})
}

func TestListingRegistry_Lookup(t *testing.T) {
	r := NewListingRegistry()
	require.NoError(t, r.Register(newPlusOne("shopee")))

	got, err := r.Lookup("shopee")
	require.NoError(t, err)
	assert.Equal(t, "shopee", got.Name())

	for _, name := range []string{"", "elo7"} {
		_, err := r.Lookup(name)
		assert.ErrorIs(t, err, shared.ErrNotFound, name)
	}
}

func TestListingRegistry_QuoteListings(t *testing.T) {
	r := NewListingRegistry()
	require.NoError(t, r.Register(newPlusOne("plus_one")))

	quotes := r.QuoteListings(decimal.RequireFromString("9.999"), "plus_one", "unknown", "")

	require.Len(t, quotes, 1)
	assert.Equal(t, "plus_one", quotes[0].Marketplace)
	assert.Equal(t, "11.00", quotes[0].Price.StringFixed(2))
}

func TestListingRegistry_ConcurrentAccess(t *testing.T) {
	r := NewListingRegistry()
	require.NoError(t, r.Register(newPlusOne("base")))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			// half of these collide and fail
			_ = r.Register(newPlusOne(fmt.Sprintf("m%d", i%25)))
		}(i)
		go func() {
			defer wg.Done()
			_, _ = r.Lookup("base")
			r.QuoteListings(decimal.NewFromInt(10), "base")
			r.Names()
		}()
	}
	wg.Wait()

	assert.Len(t, r.Names(), 26)
}

func TestNewRegistryWithDefaults(t *testing.T) {
	r, err := NewRegistryWithDefaults()
	require.NoError(t, err)

	assert.Equal(t, []string{"elo7", "nuvemshop", "shopee"}, r.Names())

	quotes := r.QuoteListings(decimal.NewFromInt(100), "nuvemshop", "shopee", "elo7")
	require.Len(t, quotes, 3)
	assert.Equal(t, "105.62", quotes[0].Price.StringFixed(2))
	assert.Equal(t, "130.00", quotes[1].Price.StringFixed(2))
	assert.Equal(t, "136.24", quotes[2].Price.StringFixed(2))
}
