package catalog

import (
	"sort"
	"strings"
	"time"

	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Defaults applied to incomplete catalog records
const (
	DefaultProductName  = "Unnamed product"
	DefaultCategory     = "Other"
	PlaceholderImageURL = "https://via.placeholder.com/300"
)

// Marketplace identifies an external sales channel a product may be listed on
type Marketplace string

const (
	// MarketplaceNuvemshop is the shop's own online store
	MarketplaceNuvemshop Marketplace = "nuvemshop"
	MarketplaceShopee    Marketplace = "shopee"
	MarketplaceElo7      Marketplace = "elo7"
)

// IsValid returns true if the marketplace is known
func (m Marketplace) IsValid() bool {
	switch m {
	case MarketplaceNuvemshop, MarketplaceShopee, MarketplaceElo7:
		return true
	}
	return false
}

// String returns the string representation of Marketplace
func (m Marketplace) String() string {
	return string(m)
}

// Dimensions are the optional physical attributes of a product.
// Width, height and length are centimeters; weight may be kilograms or grams.
type Dimensions struct {
	Width  *decimal.Decimal `json:"width,omitempty"`
	Height *decimal.Decimal `json:"height,omitempty"`
	Length *decimal.Decimal `json:"length,omitempty"`
	Weight *decimal.Decimal `json:"weight,omitempty"`
}

// Product is a catalog item. Products are maintained outside the shop
// engine and are read-only here.
type Product struct {
	ID               int64                  `json:"id"`
	Name             string                 `json:"name"`
	Category         string                 `json:"category"`
	Price            decimal.Decimal        `json:"price"`
	Description      string                 `json:"description"`
	ImageURL         string                 `json:"image"`
	AdditionalImages []string               `json:"additional_images"`
	IsNew            bool                   `json:"is_new"`
	IsOnSale         bool                   `json:"is_on_sale"`
	Visible          bool                   `json:"show_in_catalog"`
	Dimensions       Dimensions             `json:"dimensions"`
	Links            map[Marketplace]string `json:"links,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

// ProductRecord is a product as stored by the catalog data source, before
// defaults are applied.
type ProductRecord struct {
	ID               int64
	Name             string
	Category         string
	BasePrice        *decimal.Decimal
	Price            *decimal.Decimal
	Description      string
	PhotoURL         string
	Image            string
	AdditionalImages []string
	IsNew            bool
	IsOnSale         bool
	ShowInCatalog    bool
	Dimensions       Dimensions
	Links            map[Marketplace]string
	CreatedAt        time.Time
}

// NewProductFromRecord applies the catalog defaults to a stored record:
// missing names and categories get placeholders, the base price wins over
// the list price, and a missing photo falls back to a placeholder image.
func NewProductFromRecord(r ProductRecord) Product {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = DefaultProductName
	}
	category := strings.TrimSpace(r.Category)
	if category == "" {
		category = DefaultCategory
	}

	image := r.PhotoURL
	if image == "" {
		image = r.Image
	}
	if image == "" {
		image = PlaceholderImageURL
	}

	images := r.AdditionalImages
	if images == nil {
		images = []string{}
	}

	links := make(map[Marketplace]string, len(r.Links))
	for m, url := range r.Links {
		if url = strings.TrimSpace(url); url != "" && m.IsValid() {
			links[m] = url
		}
	}

	return Product{
		ID:               r.ID,
		Name:             name,
		Category:         category,
		Price:            resolvePrice(r.BasePrice, r.Price),
		Description:      r.Description,
		ImageURL:         image,
		AdditionalImages: images,
		IsNew:            r.IsNew,
		IsOnSale:         r.IsOnSale,
		Visible:          r.ShowInCatalog,
		Dimensions:       r.Dimensions,
		Links:            links,
		CreatedAt:        r.CreatedAt,
	}
}

// resolvePrice prefers a positive base price, then a positive list price, then zero
func resolvePrice(basePrice, price *decimal.Decimal) decimal.Decimal {
	if basePrice != nil && basePrice.IsPositive() {
		return *basePrice
	}
	if price != nil && price.IsPositive() {
		return *price
	}
	return decimal.Zero
}

// LinkFor returns the product's listing URL on a marketplace
func (p Product) LinkFor(m Marketplace) (string, bool) {
	url, ok := p.Links[m]
	return url, ok && url != ""
}

// StoreLink returns the product's page on the shop's own store
func (p Product) StoreLink() (string, bool) {
	return p.LinkFor(MarketplaceNuvemshop)
}

// ListedMarketplaces returns the marketplaces the product has a link for, sorted
func (p Product) ListedMarketplaces() []Marketplace {
	result := make([]Marketplace, 0, len(p.Links))
	for m, url := range p.Links {
		if url != "" {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i] < result[j] })
	return result
}

// ErrProductNotFound is returned when a product id is unknown or hidden
var ErrProductNotFound = shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
