package models

import (
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// CustomerOrderModel is the persistence model for submitted orders.
// Items are stored as a JSON snapshot so later catalog edits never change them.
type CustomerOrderModel struct {
	RootColumns
	OrderNumber        string            `gorm:"type:varchar(20);not null;uniqueIndex"`
	CustomerName       string            `gorm:"type:varchar(200);not null"`
	CustomerPostalCode string            `gorm:"type:varchar(8)"`
	HouseNumber        string            `gorm:"type:varchar(20);not null"`
	Items              []trade.LineItem  `gorm:"type:text;serializer:json;not null"`
	TotalProducts      decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	ShippingCost       decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	ShippingMethod     string            `gorm:"type:varchar(200);not null"`
	TotalGeneral       decimal.Decimal   `gorm:"type:decimal(12,2);not null"`
	Status             trade.OrderStatus `gorm:"type:varchar(20);not null;default:'Pending'"`
}

// TableName returns the table name for GORM
func (CustomerOrderModel) TableName() string {
	return "customer_orders"
}

// FromDomain populates the persistence model from a domain CustomerOrder
func (m *CustomerOrderModel) FromDomain(o *trade.CustomerOrder) {
	m.RootColumns = rootColumns(o.BaseAggregateRoot)
	m.OrderNumber = o.OrderNumber
	m.CustomerName = o.CustomerName
	m.CustomerPostalCode = o.CustomerPostalCode.Digits()
	m.HouseNumber = o.HouseNumber
	m.Items = append([]trade.LineItem(nil), o.Items...)
	m.TotalProducts = o.TotalProducts
	m.ShippingCost = o.ShippingCost
	m.ShippingMethod = o.ShippingMethod
	m.TotalGeneral = o.TotalGeneral
	m.Status = o.Status
}

// ToDomain converts the persistence model to a domain CustomerOrder.
// A stored postal code that no longer parses is returned empty.
func (m *CustomerOrderModel) ToDomain() *trade.CustomerOrder {
	postalCode, _ := valueobject.NewPostalCode(m.CustomerPostalCode)
	return &trade.CustomerOrder{
		BaseAggregateRoot:  m.root(),
		OrderNumber:        m.OrderNumber,
		CustomerName:       m.CustomerName,
		CustomerPostalCode: postalCode,
		HouseNumber:        m.HouseNumber,
		Items:              append([]trade.LineItem(nil), m.Items...),
		TotalProducts:      m.TotalProducts,
		ShippingCost:       m.ShippingCost,
		ShippingMethod:     m.ShippingMethod,
		TotalGeneral:       m.TotalGeneral,
		Status:             m.Status,
	}
}

// CustomerOrderModelFromDomain creates a new persistence model from a domain CustomerOrder
func CustomerOrderModelFromDomain(o *trade.CustomerOrder) *CustomerOrderModel {
	m := &CustomerOrderModel{}
	m.FromDomain(o)
	return m
}
