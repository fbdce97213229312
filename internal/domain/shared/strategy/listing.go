package strategy

import (
	"github.com/shopspring/decimal"
)

// ListingPriceStrategy computes the price a product must be listed at on a
// fee-charging marketplace so that the seller keeps the given net amount.
//
// Implementations are pure: the same net always yields the same listing
// price, and any non-negative net yields a defined result. The returned
// value is kept at full precision; callers round for display.
type ListingPriceStrategy interface {
	Strategy
	// ListingPrice returns the listing price for the given net amount
	ListingPrice(net decimal.Decimal) decimal.Decimal
	// FeeRate returns the marketplace's percentage fee as a fraction (0.20 for 20%)
	FeeRate() decimal.Decimal
}

// ListingQuote is a listing price computed for one marketplace
type ListingQuote struct {
	Marketplace string          `json:"marketplace"`
	Net         decimal.Decimal `json:"net"`
	Price       decimal.Decimal `json:"price"`
}

// QuoteListing applies a listing strategy to a net amount and rounds the
// result half-up to cents.
func QuoteListing(s ListingPriceStrategy, net decimal.Decimal) ListingQuote {
	return ListingQuote{
		Marketplace: s.Name(),
		Net:         net,
		Price:       s.ListingPrice(net).Round(2),
	}
}
