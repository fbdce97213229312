package catalog

import (
	"context"
	"errors"

	"github.com/pattycroche/storefront/internal/domain/catalog"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/strategy"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ListingQuoter computes marketplace listing prices
type ListingQuoter interface {
	QuoteListings(net decimal.Decimal, marketplaces ...string) []strategy.ListingQuote
}

// ProductService handles catalog read operations
type ProductService struct {
	productRepo catalog.ProductReader
	quoter      ListingQuoter
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductReader, quoter ListingQuoter, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo: productRepo,
		quoter:      quoter,
		logger:      logger,
	}
}

// List returns a page of catalog-visible products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) (*shared.Page[ProductResponse], error) {
	q := catalog.ProductQuery{
		Search:  filter.Search,
		SortBy:  filter.SortBy,
		SortDir: filter.SortDir,
		Page:    shared.PageRequest{Number: filter.Page, Size: filter.PageSize}.Normalized(),
	}
	if filter.Category != catalog.AllCategories {
		q.Category = filter.Category
	}

	products, err := s.productRepo.FindVisible(ctx, q)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.CountVisible(ctx, q)
	if err != nil {
		return nil, err
	}

	page := shared.NewPage(s.toResponses(products), total, q.Page)
	return &page, nil
}

// GetVisible returns a catalog-visible product. Hidden and unknown products
// both yield ErrProductNotFound.
func (s *ProductService) GetVisible(ctx context.Context, id int64) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, err
	}
	if !product.Visible {
		return nil, catalog.ErrProductNotFound
	}
	return product, nil
}

// GetByID returns a product with its related products
func (s *ProductService) GetByID(ctx context.Context, id int64) (*ProductDetailResponse, error) {
	product, err := s.GetVisible(ctx, id)
	if err != nil {
		return nil, err
	}

	// A failed related-products query still renders the product
	candidates, err := s.productRepo.FindVisibleByCategory(ctx, product.Category, catalog.MaxRelatedProducts+1)
	if err != nil {
		s.logger.Warn("failed to load related products",
			zap.Int64("product_id", id),
			zap.String("category", product.Category),
			zap.Error(err),
		)
		candidates = nil
	}

	return &ProductDetailResponse{
		ProductResponse: s.toResponse(*product),
		Related:         s.toResponses(catalog.RelatedProducts(*product, candidates)),
	}, nil
}

// ListingPrices returns the listing prices of a product on every
// marketplace it is listed on
func (s *ProductService) ListingPrices(ctx context.Context, id int64) ([]strategy.ListingQuote, error) {
	product, err := s.GetVisible(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.listingPrices(*product), nil
}

// Categories returns the category list. When the data source fails the
// static fallback list is returned instead of an error.
func (s *ProductService) Categories(ctx context.Context) CategoriesResponse {
	categories, err := s.productRepo.ListCategories(ctx)
	if err != nil {
		s.logger.Warn("failed to load categories, using fallback list", zap.Error(err))
		return CategoriesResponse{Categories: catalog.FallbackCategoryList(), Fallback: true}
	}
	return CategoriesResponse{Categories: catalog.CategoryList(categories)}
}

func (s *ProductService) listingPrices(p catalog.Product) []strategy.ListingQuote {
	if s.quoter == nil {
		return []strategy.ListingQuote{}
	}
	listed := p.ListedMarketplaces()
	names := make([]string, 0, len(listed))
	for _, m := range listed {
		names = append(names, m.String())
	}
	return s.quoter.QuoteListings(p.Price, names...)
}

func (s *ProductService) toResponse(p catalog.Product) ProductResponse {
	links := make(map[string]string, len(p.Links))
	for m, url := range p.Links {
		links[m.String()] = url
	}
	return ProductResponse{
		ID:               p.ID,
		Name:             p.Name,
		Category:         p.Category,
		Price:            p.Price,
		PriceDisplay:     valueobject.NewMoneyBRL(p.Price).Display(),
		Description:      p.Description,
		Image:            p.ImageURL,
		AdditionalImages: p.AdditionalImages,
		IsNew:            p.IsNew,
		IsOnSale:         p.IsOnSale,
		Dimensions:       p.Dimensions,
		Links:            links,
		ListingPrices:    s.listingPrices(p),
		CreatedAt:        p.CreatedAt,
	}
}

func (s *ProductService) toResponses(products []catalog.Product) []ProductResponse {
	result := make([]ProductResponse, len(products))
	for i, p := range products {
		result[i] = s.toResponse(p)
	}
	return result
}
