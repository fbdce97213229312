package checkout

import (
	"context"

	"github.com/pattycroche/storefront/internal/domain/cart"
	"github.com/pattycroche/storefront/internal/domain/catalog"
)

// ProductGetter resolves catalog-visible products
type ProductGetter interface {
	GetVisible(ctx context.Context, id int64) (*catalog.Product, error)
}

// CartAccess loads and clears session carts
type CartAccess interface {
	Load(ctx context.Context, sessionID string) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID string) error
}
