package catalog

import (
	"time"

	"github.com/pattycroche/storefront/internal/domain/catalog"
	"github.com/pattycroche/storefront/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// ProductListFilter represents filter options for the catalog listing
type ProductListFilter struct {
	Category string `form:"category"`
	Search   string `form:"q" binding:"omitempty,max=100"`
	SortBy   string `form:"sort" binding:"omitempty,oneof=id name category created_at"`
	SortDir  string `form:"order" binding:"omitempty,oneof=asc desc"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID               int64                   `json:"id"`
	Name             string                  `json:"name"`
	Category         string                  `json:"category"`
	Price            decimal.Decimal         `json:"price"`
	PriceDisplay     string                  `json:"price_display"`
	Description      string                  `json:"description"`
	Image            string                  `json:"image"`
	AdditionalImages []string                `json:"additional_images"`
	IsNew            bool                    `json:"is_new"`
	IsOnSale         bool                    `json:"is_on_sale"`
	Dimensions       catalog.Dimensions      `json:"dimensions"`
	Links            map[string]string       `json:"links"`
	ListingPrices    []strategy.ListingQuote `json:"listing_prices"`
	CreatedAt        time.Time               `json:"created_at"`
}

// ProductDetailResponse is a product together with its related products
type ProductDetailResponse struct {
	ProductResponse
	Related []ProductResponse `json:"related"`
}

// CategoriesResponse lists the catalog categories. Fallback is set when the
// data source failed and the static list was returned.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Fallback   bool     `json:"fallback"`
}
