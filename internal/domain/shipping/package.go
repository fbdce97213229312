package shipping

import "github.com/shopspring/decimal"

// Carrier minimums (centimeters) and the fallback weight (kilograms).
var (
	MinWidth      = decimal.NewFromInt(11)
	MinHeight     = decimal.NewFromInt(2)
	MinLength     = decimal.NewFromInt(16)
	DefaultWeight = decimal.RequireFromString("0.3")

	// gramsThreshold is the weight above which a value is read as grams
	gramsThreshold = decimal.NewFromInt(5)
	gramsPerKilo   = decimal.NewFromInt(1000)
)

// PackageAttributes are the physical attributes recorded on a product.
// Any of them may be missing; nil, zero and negative values count as missing.
type PackageAttributes struct {
	Width  *decimal.Decimal
	Height *decimal.Decimal
	Length *decimal.Decimal
	Weight *decimal.Decimal
}

// Package is a parcel ready for a shipping-rate request.
// Dimensions are centimeters, weight is kilograms.
type Package struct {
	Width  decimal.Decimal `json:"width"`
	Height decimal.Decimal `json:"height"`
	Length decimal.Decimal `json:"length"`
	Weight decimal.Decimal `json:"weight"`
}

// ResolvePackage derives shippable dimensions from partial product data.
// Each dimension is raised to the carrier minimum. A missing weight becomes
// 0.3kg; a weight above 5 is assumed to be in grams and converted to kg.
func ResolvePackage(attrs PackageAttributes) Package {
	return Package{
		Width:  atLeast(attrs.Width, MinWidth),
		Height: atLeast(attrs.Height, MinHeight),
		Length: atLeast(attrs.Length, MinLength),
		Weight: resolveWeight(attrs.Weight),
	}
}

func atLeast(v *decimal.Decimal, floor decimal.Decimal) decimal.Decimal {
	if !present(v) {
		return floor
	}
	return decimal.Max(*v, floor)
}

func resolveWeight(w *decimal.Decimal) decimal.Decimal {
	if !present(w) {
		return DefaultWeight
	}
	if w.GreaterThan(gramsThreshold) {
		return w.Div(gramsPerKilo)
	}
	return *w
}

func present(v *decimal.Decimal) bool {
	return v != nil && v.IsPositive()
}
