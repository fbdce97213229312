package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/pattycroche/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// AddressResponse represents a looked-up address
type AddressResponse struct {
	PostalCode string `json:"postal_code"`
	Street     string `json:"street"`
	District   string `json:"district"`
	City       string `json:"city"`
	State      string `json:"state"`
	Locality   string `json:"locality"`
	Local      bool   `json:"local"`
}

// QuoteRequest asks for shipping options for the cart, or for a single
// product when ProductID is set
type QuoteRequest struct {
	PostalCode string `json:"postal_code" binding:"required"`
	ProductID  int64  `json:"product_id" binding:"omitempty,min=1"`
	Quantity   int    `json:"quantity" binding:"omitempty,min=1,max=9999"`
}

// QuoteResponse lists the selectable shipping options. AddressNotice is set
// when the address could not be resolved; quoting proceeds regardless.
type QuoteResponse struct {
	PostalCode    string           `json:"postal_code"`
	Address       *AddressResponse `json:"address,omitempty"`
	AddressNotice string           `json:"address_notice,omitempty"`
	Local         bool             `json:"local"`
	Quotes        []shipping.Quote `json:"quotes"`
	DefaultQuote  string           `json:"default_quote_id"`
}

// SubmitOrderRequest submits the session's cart, or a single product when
// ProductID is set. QuoteID must be one of the options last quoted to the
// session unless SkipShipping is set.
type SubmitOrderRequest struct {
	CustomerName string `json:"customer_name" binding:"required,max=200"`
	HouseNumber  string `json:"house_number" binding:"required,max=20"`
	PostalCode   string `json:"postal_code"`
	QuoteID      string `json:"quote_id"`
	SkipShipping bool   `json:"skip_shipping"`
	ProductID    int64  `json:"product_id" binding:"omitempty,min=1"`
	Quantity     int    `json:"quantity" binding:"omitempty,min=1,max=9999"`
}

// OrderItemResponse represents an order line in API responses
type OrderItemResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Amount    decimal.Decimal `json:"amount"`
}

// OrderResponse represents a customer order in API responses
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	OrderNumber    string              `json:"order_number"`
	CustomerName   string              `json:"customer_name"`
	PostalCode     string              `json:"postal_code"`
	HouseNumber    string              `json:"house_number"`
	Items          []OrderItemResponse `json:"items"`
	TotalProducts  decimal.Decimal     `json:"total_products"`
	ShippingCost   decimal.Decimal     `json:"shipping_cost"`
	ShippingMethod string              `json:"shipping_method"`
	TotalGeneral   decimal.Decimal     `json:"total_general"`
	TotalDisplay   string              `json:"total_display"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
}

// SubmitOrderResponse is the persisted order and the chat link that hands
// it over to the seller
type SubmitOrderResponse struct {
	Order       OrderResponse `json:"order"`
	WhatsAppURL string        `json:"whatsapp_url"`
}

// ChannelRequest resolves where a product page order button leads
type ChannelRequest struct {
	ProductID  int64  `json:"product_id" binding:"required,min=1"`
	Quantity   int    `json:"quantity" binding:"omitempty,min=1,max=9999"`
	PostalCode string `json:"postal_code" binding:"required"`
}

// Order channels
const (
	ChannelWhatsApp = "whatsapp"
	ChannelStore    = "store"
)

// ChannelResponse is the resolved order channel and its link
type ChannelResponse struct {
	Channel string          `json:"channel"`
	URL     string          `json:"url"`
	Address AddressResponse `json:"address"`
}

// ToAddressResponse converts a domain Address to AddressResponse
func ToAddressResponse(a valueobject.Address, local bool) AddressResponse {
	return AddressResponse{
		PostalCode: a.PostalCode().Masked(),
		Street:     a.Street(),
		District:   a.District(),
		City:       a.City(),
		State:      a.State(),
		Locality:   a.Locality(),
		Local:      local,
	}
}

// ToOrderResponse converts a domain CustomerOrder to OrderResponse
func ToOrderResponse(o *trade.CustomerOrder) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Amount:    item.Amount(),
		}
	}
	postal := ""
	if !o.CustomerPostalCode.IsEmpty() {
		postal = o.CustomerPostalCode.Masked()
	}
	return OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		CustomerName:   o.CustomerName,
		PostalCode:     postal,
		HouseNumber:    o.HouseNumber,
		Items:          items,
		TotalProducts:  o.TotalProducts,
		ShippingCost:   o.ShippingCost,
		ShippingMethod: o.ShippingMethod,
		TotalGeneral:   o.TotalGeneral,
		TotalDisplay:   o.GetTotalGeneralMoney().Display(),
		Status:         o.Status.String(),
		CreatedAt:      o.CreatedAt,
	}
}
