package pricing

import "github.com/shopspring/decimal"

// nonNegative clamps negative amounts to zero so every strategy stays total
// over its input.
func nonNegative(net decimal.Decimal) decimal.Decimal {
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// grossUp solves net = price*(1-feeRate) - fixedFee for price.
func grossUp(net, fixedFee, feeRate decimal.Decimal) decimal.Decimal {
	return net.Add(fixedFee).Div(decimal.NewFromInt(1).Sub(feeRate))
}
