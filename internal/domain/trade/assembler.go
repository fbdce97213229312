package trade

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pattycroche/storefront/internal/domain/cart"
	"github.com/pattycroche/storefront/internal/domain/catalog"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/shopspring/decimal"
)

// Validation errors raised before an order may be submitted
var (
	ErrMissingCustomerName      = shared.NewDomainError("MISSING_CUSTOMER_NAME", "Customer name is required")
	ErrMissingHouseNumber       = shared.NewDomainError("MISSING_HOUSE_NUMBER", "House number is required")
	ErrMissingShippingSelection = shared.NewDomainError("MISSING_SHIPPING_SELECTION", "Select a shipping option or proceed without shipping")
	ErrMissingPostalCode        = shared.NewDomainError("MISSING_POSTAL_CODE", "Postal code is required when a shipping option is selected")
	ErrEmptyOrder               = shared.NewDomainError("EMPTY_ORDER", "Order has no items")
	ErrInvalidItemQuantity      = shared.NewDomainError("INVALID_QUANTITY", "Item quantity must be at least 1")
	ErrInvalidItemPrice         = shared.NewDomainError("INVALID_PRICE", "Item price cannot be negative")
)

// CheckoutInput is the checkout state an order is assembled from
type CheckoutInput struct {
	CustomerName string
	HouseNumber  string
	PostalCode   valueobject.PostalCode
	Items        []LineItem
	Shipping     *shipping.Quote
	// SkipShipping proceeds without a quote: cost 0, method "To be arranged"
	SkipShipping bool
}

// ItemsFromCart snapshots the cart lines
func ItemsFromCart(c *cart.Cart) []LineItem {
	lines := c.Lines()
	items := make([]LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, LineItem{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
		})
	}
	return items
}

// ItemsFromProduct snapshots a single product for fast checkout.
// A quantity below 1 is taken as 1.
func ItemsFromProduct(p catalog.Product, quantity int) []LineItem {
	if quantity < 1 {
		quantity = 1
	}
	return []LineItem{{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  quantity,
	}}
}

// Contents identifies what a list of line items holds: each product with its
// quantity and unit price, regardless of line order.
func Contents(items []LineItem) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%d:%d@%s", it.ProductID, it.Quantity, it.UnitPrice.StringFixed(2))
	}
	slices.Sort(parts)
	return strings.Join(parts, ",")
}

// OrderAssembler builds CustomerOrder records from checkout state
type OrderAssembler struct {
	numbers *OrderNumberGenerator
}

// NewOrderAssembler creates an assembler. A nil generator uses the default clock and random source.
func NewOrderAssembler(numbers *OrderNumberGenerator) *OrderAssembler {
	if numbers == nil {
		numbers = NewOrderNumberGenerator(nil, nil)
	}
	return &OrderAssembler{numbers: numbers}
}

// Validate checks the checkout preconditions without building anything
func (a *OrderAssembler) Validate(in CheckoutInput) error {
	if strings.TrimSpace(in.CustomerName) == "" {
		return ErrMissingCustomerName
	}
	if strings.TrimSpace(in.HouseNumber) == "" {
		return ErrMissingHouseNumber
	}
	if in.Shipping == nil && !in.SkipShipping {
		return ErrMissingShippingSelection
	}
	if in.Shipping != nil && in.PostalCode.IsEmpty() {
		return ErrMissingPostalCode
	}
	if len(in.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range in.Items {
		if item.Quantity < 1 {
			return ErrInvalidItemQuantity
		}
		if item.UnitPrice.IsNegative() {
			return ErrInvalidItemPrice
		}
	}
	return nil
}

// Assemble validates the input and produces a Pending order with totals
// computed once. An OrderPlacedEvent is recorded on the order.
func (a *OrderAssembler) Assemble(in CheckoutInput) (*CustomerOrder, error) {
	if err := a.Validate(in); err != nil {
		return nil, err
	}

	items := make([]LineItem, len(in.Items))
	copy(items, in.Items)

	totalProducts := decimal.Zero
	for _, item := range items {
		totalProducts = totalProducts.Add(item.Amount())
	}

	shippingCost := decimal.Zero
	shippingMethod := ShippingToBeArranged
	if in.Shipping != nil {
		shippingCost = in.Shipping.Price
		shippingMethod = in.Shipping.Name
	}

	now := a.numbers.Now()
	order := &CustomerOrder{
		BaseAggregateRoot:  shared.NewBaseAggregateRootAt(now),
		OrderNumber:        a.numbers.NextAt(now),
		CustomerName:       strings.TrimSpace(in.CustomerName),
		CustomerPostalCode: in.PostalCode,
		HouseNumber:        strings.TrimSpace(in.HouseNumber),
		Items:              items,
		TotalProducts:      totalProducts,
		ShippingCost:       shippingCost,
		ShippingMethod:     shippingMethod,
		TotalGeneral:       totalProducts.Add(shippingCost),
		Status:             OrderStatusPending,
	}
	order.Record(NewOrderPlacedEvent(order))

	return order, nil
}
