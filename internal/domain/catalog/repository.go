package catalog

import (
	"context"

	"github.com/pattycroche/storefront/internal/domain/shared"
)

// ProductQuery narrows and orders catalog listings. An empty Category
// matches every category. SortBy is one of id, name, category or
// created_at; anything else sorts newest first. SortDir is "asc" or "desc".
type ProductQuery struct {
	Category string
	Search   string
	SortBy   string
	SortDir  string
	Page     shared.PageRequest
}

// ProductReader is the catalog data source. It is read-only from the
// shop engine's point of view.
type ProductReader interface {
	// FindByID finds a product by its ID, visible or not
	FindByID(ctx context.Context, id int64) (*Product, error)

	// FindVisible returns one page of catalog-visible products
	FindVisible(ctx context.Context, q ProductQuery) ([]Product, error)

	// CountVisible counts catalog-visible products matching q, ignoring q.Page
	CountVisible(ctx context.Context, q ProductQuery) (int64, error)

	// FindVisibleByCategory finds catalog-visible products of a category
	FindVisibleByCategory(ctx context.Context, category string, limit int) ([]Product, error)

	// ListCategories returns the category of every product, possibly repeated
	ListCategories(ctx context.Context) ([]string, error)
}
