package shipping

import (
	"context"

	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// Error codes for shipping collaborators
const (
	CodeInvalidPostalCode     = "INVALID_POSTAL_CODE"
	CodePostalCodeNotFound    = "POSTAL_CODE_NOT_FOUND"
	CodePostalLookupFailed    = "POSTAL_LOOKUP_FAILED"
	CodeShippingRatesFailed   = "SHIPPING_RATES_FAILED"
	CodeShippingNotConfigured = "SHIPPING_NOT_CONFIGURED"
)

var (
	// ErrInvalidPostalCode is returned before any lookup when a code is malformed
	ErrInvalidPostalCode = shared.NewDomainError(CodeInvalidPostalCode, "Invalid postal code. Enter 8 digits.")
	// ErrPostalCodeNotFound is returned when the lookup service does not know the code
	ErrPostalCodeNotFound = shared.NewDomainError(CodePostalCodeNotFound, "Postal code not found.")
	// ErrPostalLookupFailed is returned when the lookup service could not be reached
	ErrPostalLookupFailed = shared.NewDomainError(CodePostalLookupFailed, "Could not look up the postal code. Please try again.")
	// ErrShippingRatesFailed is returned when the shipping-rate service could not be reached
	ErrShippingRatesFailed = shared.NewDomainError(CodeShippingRatesFailed, "Could not calculate shipping. Please try again.")
	// ErrShippingNotConfigured is returned when no shipping-rate credentials are set
	ErrShippingNotConfigured = shared.NewDomainError(CodeShippingNotConfigured, "Shipping calculation is not available right now.")
)

// PostalLookup resolves a postal code to the address it covers.
// Implementations return ErrPostalCodeNotFound for unknown codes and
// ErrPostalLookupFailed (wrapped) for transport failures.
type PostalLookup interface {
	Lookup(ctx context.Context, code valueobject.PostalCode) (valueobject.Address, error)
}

// RateItem is one line of a shipping-rate request
type RateItem struct {
	ID             string
	Package        Package
	InsuranceValue decimal.Decimal
	Quantity       int
}

// RateRequest asks the shipping-rate service for options between two postal codes
type RateRequest struct {
	From  valueobject.PostalCode
	To    valueobject.PostalCode
	Items []RateItem
}

// RateCalculator returns raw carrier quotes for a request.
// Transport failures are returned as ErrShippingRatesFailed (wrapped);
// per-carrier failures come back as RawQuote error markers.
type RateCalculator interface {
	Calculate(ctx context.Context, req RateRequest) ([]RawQuote, error)
}
