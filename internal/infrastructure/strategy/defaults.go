package strategy

import (
	"github.com/pattycroche/storefront/internal/infrastructure/strategy/pricing"
)

// NewRegistryWithDefaults creates a registry holding the fee schedules of
// every marketplace the shop lists on
func NewRegistryWithDefaults() (*ListingRegistry, error) {
	r := NewListingRegistry()
	if err := r.Register(
		pricing.NewNuvemshopStrategy(),
		pricing.NewShopeeStrategy(),
		pricing.DefaultElo7Strategy(),
	); err != nil {
		return nil, err
	}
	return r, nil
}
