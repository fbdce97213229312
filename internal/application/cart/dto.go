package cart

import (
	"github.com/pattycroche/storefront/internal/domain/cart"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AddItemRequest adds a product to the cart
type AddItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required,min=1"`
	Quantity  int   `json:"quantity" binding:"omitempty,min=1,max=9999"`
}

// UpdateItemRequest sets a line quantity; 0 removes the line
type UpdateItemRequest struct {
	Quantity int `json:"quantity" binding:"min=0,max=9999"`
}

// CartItemResponse represents a cart line in API responses
type CartItemResponse struct {
	ProductID int64           `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartResponse represents a cart in API responses
type CartResponse struct {
	SessionID    string             `json:"session_id"`
	Items        []CartItemResponse `json:"items"`
	Total        decimal.Decimal    `json:"total"`
	TotalDisplay string             `json:"total_display"`
	Count        int                `json:"count"`
}

// ToCartResponse converts a domain Cart to CartResponse
func ToCartResponse(c *cart.Cart) *CartResponse {
	lines := c.Lines()
	items := make([]CartItemResponse, len(lines))
	for i, l := range lines {
		items[i] = CartItemResponse{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Image:     l.Product.ImageURL,
			UnitPrice: l.Product.Price,
			Quantity:  l.Quantity,
			Subtotal:  l.Subtotal(),
		}
	}
	total := c.Total()
	return &CartResponse{
		SessionID:    c.SessionID(),
		Items:        items,
		Total:        total,
		TotalDisplay: valueobject.NewMoneyBRL(total).Display(),
		Count:        c.Count(),
	}
}
