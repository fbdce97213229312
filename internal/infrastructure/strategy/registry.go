package strategy

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// ListingRegistry holds one listing price strategy per marketplace
type ListingRegistry struct {
	mu         sync.RWMutex
	strategies map[string]strategy.ListingPriceStrategy
}

// NewListingRegistry creates an empty registry
func NewListingRegistry() *ListingRegistry {
	return &ListingRegistry{strategies: make(map[string]strategy.ListingPriceStrategy)}
}

// Register adds strategies under their names. It stops at the first name
// that is already taken.
func (r *ListingRegistry) Register(strategies ...strategy.ListingPriceStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range strategies {
		name := s.Name()
		if _, taken := r.strategies[name]; taken {
			return fmt.Errorf("%w: listing strategy %q", shared.ErrAlreadyExists, name)
		}
		r.strategies[name] = s
	}
	return nil
}

// Lookup returns the strategy registered for a marketplace
func (r *ListingRegistry) Lookup(marketplace string) (strategy.ListingPriceStrategy, error) {
	r.mu.RLock()
	s, ok := r.strategies[marketplace]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: listing strategy %q", shared.ErrNotFound, marketplace)
	}
	return s, nil
}

// Names returns the registered marketplaces in alphabetical order
func (r *ListingRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// QuoteListings computes the rounded listing price of net on each of the
// named marketplaces, in the order given. Unknown marketplaces are skipped.
func (r *ListingRegistry) QuoteListings(net decimal.Decimal, marketplaces ...string) []strategy.ListingQuote {
	quotes := make([]strategy.ListingQuote, 0, len(marketplaces))
	for _, name := range marketplaces {
		s, err := r.Lookup(name)
		if err != nil {
			continue
		}
		quotes = append(quotes, strategy.QuoteListing(s, net))
	}
	return quotes
}
