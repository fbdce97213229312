package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	cartapp "github.com/pattycroche/storefront/internal/application/cart"
	"github.com/pattycroche/storefront/internal/interfaces/http/middleware"
)

// CartService is the session cart API used by CartHandler
type CartService interface {
	Get(ctx context.Context, sessionID string) (*cartapp.CartResponse, error)
	AddItem(ctx context.Context, sessionID string, req cartapp.AddItemRequest) (*cartapp.CartResponse, error)
	UpdateItem(ctx context.Context, sessionID string, productID int64, req cartapp.UpdateItemRequest) (*cartapp.CartResponse, error)
	RemoveItem(ctx context.Context, sessionID string, productID int64) (*cartapp.CartResponse, error)
	Clear(ctx context.Context, sessionID string) error
}

// CartHandler handles the session cart endpoints
type CartHandler struct {
	BaseHandler
	service CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(service CartService) *CartHandler {
	return &CartHandler{service: service}
}

// Get godoc
// @Summary      Get the session cart
// @Tags         cart
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Router       /cart [get]
func (h *CartHandler) Get(c *gin.Context) {
	resp, err := h.service.Get(c.Request.Context(), middleware.GetSessionID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AddItem godoc
// @Summary      Add a product to the cart
// @Description  Adding a product already in the cart increases its quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session"
// @Param        request body cartapp.AddItemRequest true "Item"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cartapp.AddItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.AddItem(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// UpdateItem godoc
// @Summary      Set a cart line quantity
// @Description  A quantity of 0 removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session"
// @Param        id path int true "Product ID"
// @Param        request body cartapp.UpdateItemRequest true "Quantity"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items/{id} [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	productID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req cartapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.UpdateItem(c.Request.Context(), middleware.GetSessionID(c), productID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RemoveItem godoc
// @Summary      Remove a cart line
// @Tags         cart
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session"
// @Param        id path int true "Product ID"
// @Success      200 {object} dto.Response{data=cartapp.CartResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /cart/items/{id} [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	productID, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.service.RemoveItem(c.Request.Context(), middleware.GetSessionID(c), productID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Param        X-Session-ID header string false "Shopper session"
// @Success      204
// @Router       /cart [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), middleware.GetSessionID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
