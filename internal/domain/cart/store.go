package cart

import (
	"context"

	"github.com/pattycroche/storefront/internal/domain/shared"
)

// ErrCartNotFound is returned by a Store when a session has no saved cart
var ErrCartNotFound = shared.NewDomainError("CART_NOT_FOUND", "Cart not found")

// Store keeps carts between requests of the same session
type Store interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, sessionID string) error
}
