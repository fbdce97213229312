package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	checkoutapp "github.com/pattycroche/storefront/internal/application/checkout"
	"github.com/pattycroche/storefront/internal/interfaces/http/middleware"
)

// OrderSubmitter places orders
type OrderSubmitter interface {
	Submit(ctx context.Context, sessionID string, req checkoutapp.SubmitOrderRequest) (*checkoutapp.SubmitOrderResponse, error)
}

// ChannelResolver decides where a product page order button leads
type ChannelResolver interface {
	Resolve(ctx context.Context, req checkoutapp.ChannelRequest) (*checkoutapp.ChannelResponse, error)
}

// CheckoutHandler handles order submission endpoints
type CheckoutHandler struct {
	BaseHandler
	orders   OrderSubmitter
	channels ChannelResolver
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(orders OrderSubmitter, channels ChannelResolver) *CheckoutHandler {
	return &CheckoutHandler{orders: orders, channels: channels}
}

// SubmitOrder godoc
// @Summary      Place an order
// @Description  Persists the order and returns the WhatsApp link that hands it to the seller.
// @Description  A second submission from the same session while one is running is rejected.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        X-Session-ID header string false "Shopper session"
// @Param        request body checkoutapp.SubmitOrderRequest true "Order"
// @Success      201 {object} dto.Response{data=checkoutapp.SubmitOrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout/orders [post]
func (h *CheckoutHandler) SubmitOrder(c *gin.Context) {
	var req checkoutapp.SubmitOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.orders.Submit(c.Request.Context(), middleware.GetSessionID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// ResolveChannel godoc
// @Summary      Resolve the order channel for a product
// @Description  Local customers order over WhatsApp; everyone else is sent to the online store listing
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        request body checkoutapp.ChannelRequest true "Product and postal code"
// @Success      200 {object} dto.Response{data=checkoutapp.ChannelResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /checkout/channel [post]
func (h *CheckoutHandler) ResolveChannel(c *gin.Context) {
	var req checkoutapp.ChannelRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.channels.Resolve(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
