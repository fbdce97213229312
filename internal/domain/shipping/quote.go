package shipping

import (
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// QuoteKind tags where a shipping option came from
type QuoteKind string

const (
	// QuoteKindCarrier is an option returned by the shipping-rate service
	QuoteKindCarrier QuoteKind = "carrier"
	// QuoteKindLocal is the free local courier offered to nearby cities
	QuoteKindLocal QuoteKind = "local"
)

// Local courier option values
const (
	LocalCourierName     = "Local courier (free)"
	LocalCourierDelivery = "1-2"
	LocalCourierID       = "local"
)

// Error codes for quote normalization
const (
	CodeNoShippingOptions  = "NO_SHIPPING_OPTIONS"
	CodeShippingQuoteError = "SHIPPING_QUOTE_ERROR"
)

// ErrNoShippingOptions is returned when the carrier offered nothing for a postal code
var ErrNoShippingOptions = shared.NewDomainError(CodeNoShippingOptions, "no shipping options available for this postal code")

// RawQuote is one record as returned by the shipping-rate service: either a
// priced option or an error marker.
type RawQuote struct {
	ID           string
	Name         string
	Price        decimal.Decimal
	DeliveryTime string
	CompanyName  string
	CompanyLogo  string
	Error        string
}

// IsError reports whether the record is an error marker
func (r RawQuote) IsError() bool {
	return r.Error != ""
}

// Quote is a selectable shipping option
type Quote struct {
	ID           string          `json:"id"`
	Kind         QuoteKind       `json:"kind"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	DeliveryTime string          `json:"delivery_time"`
	CompanyName  string          `json:"company_name,omitempty"`
	CompanyLogo  string          `json:"company_logo,omitempty"`
}

// IsLocal reports whether the quote is the synthetic local courier option
func (q Quote) IsLocal() bool {
	return q.Kind == QuoteKindLocal
}

// LocalCourierQuote returns the free local delivery option
func LocalCourierQuote() Quote {
	return Quote{
		ID:           LocalCourierID,
		Kind:         QuoteKindLocal,
		Name:         LocalCourierName,
		Price:        decimal.Zero,
		DeliveryTime: LocalCourierDelivery,
	}
}

// NormalizeQuotes turns raw carrier records into selectable options.
//
// Error markers are dropped. For local deliveries the free courier option is
// placed first. When nothing selectable remains the result is an error: the
// first carrier error message if the carrier returned only errors, or
// ErrNoShippingOptions if it returned nothing.
func NormalizeQuotes(raw []RawQuote, local bool) ([]Quote, error) {
	quotes := make([]Quote, 0, len(raw)+1)
	if local {
		quotes = append(quotes, LocalCourierQuote())
	}

	var firstErr string
	for _, r := range raw {
		if r.IsError() {
			if firstErr == "" {
				firstErr = r.Error
			}
			continue
		}
		quotes = append(quotes, Quote{
			ID:           r.ID,
			Kind:         QuoteKindCarrier,
			Name:         r.Name,
			Price:        r.Price,
			DeliveryTime: r.DeliveryTime,
			CompanyName:  r.CompanyName,
			CompanyLogo:  r.CompanyLogo,
		})
	}

	if len(quotes) > 0 {
		return quotes, nil
	}
	if firstErr != "" {
		return nil, shared.NewDomainError(CodeShippingQuoteError, firstErr)
	}
	return nil, ErrNoShippingOptions
}

// QuoteNormalizer combines locality classification with quote normalization
type QuoteNormalizer struct {
	classifier *LocalityClassifier
}

// NewQuoteNormalizer creates a normalizer using the given classifier
func NewQuoteNormalizer(classifier *LocalityClassifier) *QuoteNormalizer {
	if classifier == nil {
		classifier = NewLocalityClassifier()
	}
	return &QuoteNormalizer{classifier: classifier}
}

// Normalize normalizes raw quotes for a destination city. An empty city
// means the locality is unknown and no local option is offered.
func (n *QuoteNormalizer) Normalize(raw []RawQuote, city string) ([]Quote, error) {
	return NormalizeQuotes(raw, city != "" && n.classifier.IsLocal(city))
}

// Classifier returns the locality classifier
func (n *QuoteNormalizer) Classifier() *LocalityClassifier {
	return n.classifier
}

// FindQuote returns the option with the given id
func FindQuote(quotes []Quote, id string) (Quote, bool) {
	for _, q := range quotes {
		if q.ID == id {
			return q, true
		}
	}
	return Quote{}, false
}
