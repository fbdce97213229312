package trade

import (
	"github.com/google/uuid"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeCustomerOrder = "CustomerOrder"

// Event type constants
const (
	EventTypeOrderPlaced = "OrderPlaced"
)

// OrderPlacedEvent is raised when a checkout produces an order. It is
// published only after the order has been persisted.
type OrderPlacedEvent struct {
	shared.BaseDomainEvent
	OrderID        uuid.UUID       `json:"order_id"`
	OrderNumber    string          `json:"order_number"`
	CustomerName   string          `json:"customer_name"`
	PostalCode     string          `json:"postal_code"`
	HouseNumber    string          `json:"house_number"`
	Items          []LineItem      `json:"items"`
	TotalProducts  decimal.Decimal `json:"total_products"`
	ShippingCost   decimal.Decimal `json:"shipping_cost"`
	ShippingMethod string          `json:"shipping_method"`
	TotalGeneral   decimal.Decimal `json:"total_general"`
}

// NewOrderPlacedEvent creates the event for order, dated at its creation
func NewOrderPlacedEvent(order *CustomerOrder) *OrderPlacedEvent {
	items := make([]LineItem, len(order.Items))
	copy(items, order.Items)

	return &OrderPlacedEvent{
		BaseDomainEvent: shared.NewBaseDomainEventAt(EventTypeOrderPlaced, AggregateTypeCustomerOrder, order.ID, order.CreatedAt),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		CustomerName:    order.CustomerName,
		PostalCode:      order.CustomerPostalCode.Digits(),
		HouseNumber:     order.HouseNumber,
		Items:           items,
		TotalProducts:   order.TotalProducts,
		ShippingCost:    order.ShippingCost,
		ShippingMethod:  order.ShippingMethod,
		TotalGeneral:    order.TotalGeneral,
	}
}
