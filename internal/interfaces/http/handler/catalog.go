package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/pattycroche/storefront/internal/application/catalog"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/strategy"
	"github.com/pattycroche/storefront/internal/interfaces/http/dto"
)

// CatalogService is the catalog read side used by CatalogHandler
type CatalogService interface {
	List(ctx context.Context, filter catalogapp.ProductListFilter) (*shared.Page[catalogapp.ProductResponse], error)
	GetByID(ctx context.Context, id int64) (*catalogapp.ProductDetailResponse, error)
	ListingPrices(ctx context.Context, id int64) ([]strategy.ListingQuote, error)
	Categories(ctx context.Context) catalogapp.CategoriesResponse
}

// CatalogHandler handles catalog API endpoints
type CatalogHandler struct {
	BaseHandler
	service CatalogService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(service CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ListProducts godoc
// @Summary      List catalog products
// @Description  Visible products, newest first, optionally filtered by category
// @Tags         catalog
// @Produce      json
// @Param        category  query string false "Category name; \"All\" disables the filter"
// @Param        q         query string false "Case-insensitive name search" maxlength(100)
// @Param        sort      query string false "Sort column" Enums(id, name, category, created_at)
// @Param        order     query string false "Sort direction" Enums(asc, desc)
// @Param        page      query int    false "Page number" minimum(1)
// @Param        page_size query int    false "Page size" minimum(1) maximum(100)
// @Success      200 {object} dto.Response{data=[]catalogapp.ProductResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products [get]
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if !h.bindQuery(c, &filter) {
		return
	}

	page, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.Paged(*page))
}

// GetProduct godoc
// @Summary      Get a product
// @Description  Product detail with up to four related products from the same category
// @Tags         catalog
// @Produce      json
// @Param        id path int true "Product ID"
// @Success      200 {object} dto.Response{data=catalogapp.ProductDetailResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products/{id} [get]
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// ListingPrices godoc
// @Summary      Marketplace listing prices
// @Tags         catalog
// @Produce      json
// @Param        id path int true "Product ID"
// @Success      200 {object} dto.Response{data=[]strategy.ListingQuote}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /catalog/products/{id}/listing-prices [get]
func (h *CatalogHandler) ListingPrices(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	quotes, err := h.service.ListingPrices(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, quotes)
}

// Categories godoc
// @Summary      List categories
// @Description  Category names with "All" first; falls back to the static list when the catalog is unavailable
// @Tags         catalog
// @Produce      json
// @Success      200 {object} dto.Response{data=catalogapp.CategoriesResponse}
// @Router       /catalog/categories [get]
func (h *CatalogHandler) Categories(c *gin.Context) {
	h.Success(c, h.service.Categories(c.Request.Context()))
}
