package pricing

import (
	"sort"

	"github.com/pattycroche/storefront/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// Elo7StrategyName is the registry name of the Elo7 fee schedule
const Elo7StrategyName = "elo7"

var (
	elo7FeeRate  = decimal.RequireFromString("0.20")
	elo7FixedFee = decimal.RequireFromString("6.00")
)

// ServiceFeeTier is one bracket of the Elo7 service fee schedule. A nil
// MaxPrice marks the open-ended last bracket.
type ServiceFeeTier struct {
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`
	Fee      decimal.Decimal  `json:"fee"`
}

// Elo7Strategy prices listings on Elo7: 20% commission, a 6.00 fixed fee
// and a service fee that depends on the bracket the final price lands in.
type Elo7Strategy struct {
	strategy.Descriptor
	tiers []ServiceFeeTier
}

// NewElo7Strategy creates an Elo7 strategy with the given service fee tiers.
// Tiers are sorted by MaxPrice ascending; the open-ended tier goes last.
func NewElo7Strategy(tiers []ServiceFeeTier) *Elo7Strategy {
	sortedTiers := make([]ServiceFeeTier, len(tiers))
	copy(sortedTiers, tiers)
	sort.SliceStable(sortedTiers, func(i, j int) bool {
		a, b := sortedTiers[i].MaxPrice, sortedTiers[j].MaxPrice
		if a == nil {
			return false
		}
		if b == nil {
			return true
		}
		return a.LessThan(*b)
	})

	return &Elo7Strategy{
		Descriptor: strategy.Describe(
			Elo7StrategyName,
			"Elo7: 20% commission plus 6.00 and a tiered service fee",
		),
		tiers: sortedTiers,
	}
}

// DefaultElo7Strategy creates the Elo7 strategy with the current fee table
func DefaultElo7Strategy() *Elo7Strategy {
	bound := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}
	return NewElo7Strategy([]ServiceFeeTier{
		{MaxPrice: bound("29.89"), Fee: decimal.RequireFromString("1.99")},
		{MaxPrice: bound("79.89"), Fee: decimal.RequireFromString("2.49")},
		{MaxPrice: bound("149.89"), Fee: decimal.RequireFromString("2.99")},
		{MaxPrice: bound("299.89"), Fee: decimal.RequireFromString("4.99")},
		{MaxPrice: nil, Fee: decimal.RequireFromString("5.99")},
	})
}

// GetTiers returns a copy of the service fee tiers
func (s *Elo7Strategy) GetTiers() []ServiceFeeTier {
	result := make([]ServiceFeeTier, len(s.tiers))
	copy(result, s.tiers)
	return result
}

// ListingPrice walks the brackets in ascending order and returns the first
// price (net + 6 + fee) / 0.8 that fits under its bracket's ceiling. The
// open-ended bracket always fits.
func (s *Elo7Strategy) ListingPrice(net decimal.Decimal) decimal.Decimal {
	price, _ := s.resolve(net)
	return price
}

// ServiceFee returns the bracket fee applied for the given net amount
func (s *Elo7Strategy) ServiceFee(net decimal.Decimal) decimal.Decimal {
	_, fee := s.resolve(net)
	return fee
}

func (s *Elo7Strategy) resolve(net decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	net = nonNegative(net)
	price := grossUp(net, elo7FixedFee, elo7FeeRate)
	fee := decimal.Zero
	for _, tier := range s.tiers {
		fee = tier.Fee
		price = grossUp(net, elo7FixedFee.Add(fee), elo7FeeRate)
		if tier.MaxPrice == nil || price.LessThanOrEqual(*tier.MaxPrice) {
			break
		}
	}
	// Without an open-ended bracket the last bracket's price stands
	return price, fee
}

// FeeRate returns the percentage fee
func (s *Elo7Strategy) FeeRate() decimal.Decimal {
	return elo7FeeRate
}
