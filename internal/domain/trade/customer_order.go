package trade

import (
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of a customer order. The shop engine
// only ever creates Pending orders; later statuses are set by the seller.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// ShippingToBeArranged is the shipping method recorded when the customer
// checks out without choosing a quote
const ShippingToBeArranged = "To be arranged"

// LineItem is a product snapshot taken at submission time
type LineItem struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Amount returns unit price times quantity
func (i LineItem) Amount() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CustomerOrder is the canonical record of a checkout. Totals are computed
// once by the OrderAssembler and never recomputed.
type CustomerOrder struct {
	shared.BaseAggregateRoot
	OrderNumber        string
	CustomerName       string
	CustomerPostalCode valueobject.PostalCode
	HouseNumber        string
	Items              []LineItem
	TotalProducts      decimal.Decimal
	ShippingCost       decimal.Decimal
	ShippingMethod     string
	TotalGeneral       decimal.Decimal
	Status             OrderStatus
}

// ItemCount returns the number of units ordered
func (o *CustomerOrder) ItemCount() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// GetTotalGeneralMoney returns the grand total as Money
func (o *CustomerOrder) GetTotalGeneralMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(o.TotalGeneral)
}

// GetShippingCostMoney returns the shipping cost as Money
func (o *CustomerOrder) GetShippingCostMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(o.ShippingCost)
}

// GetTotalProductsMoney returns the products subtotal as Money
func (o *CustomerOrder) GetTotalProductsMoney() valueobject.Money {
	return valueobject.NewMoneyBRL(o.TotalProducts)
}
