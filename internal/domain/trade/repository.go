package trade

import (
	"context"

	"github.com/pattycroche/storefront/internal/domain/shared"
)

// ErrOrderNotFound is returned when no order carries the requested number
var ErrOrderNotFound = shared.NewDomainError("ORDER_NOT_FOUND", "Order not found")

// OrderRepository is the order-persistence sink. Orders are written once.
type OrderRepository interface {
	// Create inserts the order. It fails when the store rejects the record.
	Create(ctx context.Context, order *CustomerOrder) error
	// FindByOrderNumber returns the order or ErrOrderNotFound
	FindByOrderNumber(ctx context.Context, orderNumber string) (*CustomerOrder, error)
}
