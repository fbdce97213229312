package pricing

import (
	"github.com/pattycroche/storefront/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// NuvemshopStrategyName is the registry name of the Nuvemshop fee schedule
const NuvemshopStrategyName = "nuvemshop"

var (
	nuvemshopFeeRate  = decimal.RequireFromString("0.0499")
	nuvemshopFixedFee = decimal.RequireFromString("0.35")
)

// NuvemshopStrategy prices listings for the shop's own Nuvemshop store:
// 4.99% of the sale plus 0.35 per transaction, with no brackets.
type NuvemshopStrategy struct {
	strategy.Descriptor
}

// NewNuvemshopStrategy creates the Nuvemshop listing strategy
func NewNuvemshopStrategy() *NuvemshopStrategy {
	return &NuvemshopStrategy{
		Descriptor: strategy.Describe(
			NuvemshopStrategyName,
			"Nuvemshop store: 4.99% payment fee plus 0.35 per sale",
		),
	}
}

// ListingPrice returns (net + 0.35) / (1 - 0.0499)
func (s *NuvemshopStrategy) ListingPrice(net decimal.Decimal) decimal.Decimal {
	return grossUp(nonNegative(net), nuvemshopFixedFee, nuvemshopFeeRate)
}

// FeeRate returns the percentage fee
func (s *NuvemshopStrategy) FeeRate() decimal.Decimal {
	return nuvemshopFeeRate
}
