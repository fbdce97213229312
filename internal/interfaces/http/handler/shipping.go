package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	checkoutapp "github.com/pattycroche/storefront/internal/application/checkout"
	"github.com/pattycroche/storefront/internal/interfaces/http/middleware"
)

// QuoteService resolves addresses and shipping options
type QuoteService interface {
	LookupAddress(ctx context.Context, rawCode string) (*checkoutapp.AddressResponse, error)
	Quote(ctx context.Context, sessionID string, req checkoutapp.QuoteRequest) (*checkoutapp.QuoteResponse, error)
}

// ShippingHandler handles address lookup and shipping quotes
type ShippingHandler struct {
	BaseHandler
	service QuoteService
}

// NewShippingHandler creates a new ShippingHandler
func NewShippingHandler(service QuoteService) *ShippingHandler {
	return &ShippingHandler{service: service}
}

// LookupAddress godoc
// @Summary      Look up an address by postal code
// @Tags         shipping
// @Produce      json
// @Param        postalCode path string true "CEP, masked or digits only"
// @Success      200 {object} dto.Response{data=checkoutapp.AddressResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/address/{postalCode} [get]
func (h *ShippingHandler) LookupAddress(c *gin.Context) {
	addr, err := h.service.LookupAddress(c.Request.Context(), c.Param("postalCode"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, addr)
}

// Quote godoc
// @Summary      Calculate shipping options
// @Description  Quotes the session cart, or a single product when product_id is set.
// @Description  The returned options become selectable for checkout in this session.
// @Tags         shipping
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session"
// @Param        request body checkoutapp.QuoteRequest true "Quote request"
// @Success      200 {object} dto.Response{data=checkoutapp.QuoteResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      502 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /shipping/quotes [post]
func (h *ShippingHandler) Quote(c *gin.Context) {
	var req checkoutapp.QuoteRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.service.Quote(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
