package pricing

import (
	"github.com/pattycroche/storefront/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// ShopeeStrategyName is the registry name of the Shopee fee schedule
const ShopeeStrategyName = "shopee"

var (
	shopeeFeeRate       = decimal.RequireFromString("0.20")
	shopeeFixedFee      = decimal.RequireFromString("4.00")
	shopeeCommissionCap = decimal.RequireFromString("105.00")
)

// ShopeeStrategy prices listings on Shopee: 20% commission plus 4.00 per
// item, with the commission capped at 105.00.
type ShopeeStrategy struct {
	strategy.Descriptor
}

// NewShopeeStrategy creates the Shopee listing strategy
func NewShopeeStrategy() *ShopeeStrategy {
	return &ShopeeStrategy{
		Descriptor: strategy.Describe(
			ShopeeStrategyName,
			"Shopee: 20% commission (capped at 105.00) plus 4.00 per item",
		),
	}
}

// ListingPrice returns (net + 4) / 0.8 while the commission on that price
// stays within the cap; above it the commission is flat, so the price is
// net + 105 + 4.
func (s *ShopeeStrategy) ListingPrice(net decimal.Decimal) decimal.Decimal {
	net = nonNegative(net)
	price := grossUp(net, shopeeFixedFee, shopeeFeeRate)
	if price.Mul(shopeeFeeRate).GreaterThan(shopeeCommissionCap) {
		return net.Add(shopeeCommissionCap).Add(shopeeFixedFee)
	}
	return price
}

// FeeRate returns the percentage fee
func (s *ShopeeStrategy) FeeRate() decimal.Decimal {
	return shopeeFeeRate
}

// CommissionCap returns the maximum commission charged per item
func (s *ShopeeStrategy) CommissionCap() decimal.Decimal {
	return shopeeCommissionCap
}
