package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	checkoutapp "github.com/pattycroche/storefront/internal/application/checkout"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupShipping() (*mockQuoteService, *gin.Engine) {
	svc := new(mockQuoteService)
	h := NewShippingHandler(svc)
	engine := newTestEngine()
	engine.GET("/shipping/address/:postalCode", h.LookupAddress)
	engine.POST("/shipping/quotes", h.Quote)
	return svc, engine
}

func TestShippingHandler_LookupAddress(t *testing.T) {
	svc, engine := setupShipping()
	svc.On("LookupAddress", mock.Anything, "12010000").Return(&checkoutapp.AddressResponse{
		PostalCode: "12010-000",
		City:       "Taubaté",
		State:      "SP",
		Local:      true,
	}, nil)
	svc.On("LookupAddress", mock.Anything, "123").Return(nil, shipping.ErrInvalidPostalCode)
	svc.On("LookupAddress", mock.Anything, "99999999").Return(nil, shipping.ErrPostalCodeNotFound)
	svc.On("LookupAddress", mock.Anything, "01001000").
		Return(nil, fmt.Errorf("%w: connection refused", shipping.ErrPostalLookupFailed))

	w := doRequest(t, engine, http.MethodGet, "/shipping/address/12010000", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "Taubaté", data["city"])
	assert.Equal(t, true, data["local"])

	assert.Equal(t, http.StatusBadRequest, doRequest(t, engine, http.MethodGet, "/shipping/address/123", nil).Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, engine, http.MethodGet, "/shipping/address/99999999", nil).Code)

	w = doRequest(t, engine, http.MethodGet, "/shipping/address/01001000", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestShippingHandler_Quote(t *testing.T) {
	svc, engine := setupShipping()
	req := checkoutapp.QuoteRequest{PostalCode: "12010-000", ProductID: 4, Quantity: 2}
	svc.On("Quote", mock.Anything, testSession, req).Return(&checkoutapp.QuoteResponse{
		PostalCode: "12010-000",
		Local:      true,
		Quotes: []shipping.Quote{
			shipping.LocalCourierQuote(),
			{ID: "1", Kind: shipping.QuoteKindCarrier, Name: "PAC", Price: decimal.RequireFromString("22.50"), DeliveryTime: "5"},
		},
		DefaultQuote: shipping.LocalCourierID,
	}, nil)

	w := doRequest(t, engine, http.MethodPost, "/shipping/quotes", req)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	quotes := data["quotes"].([]any)
	require.Len(t, quotes, 2)
	assert.Equal(t, "local", quotes[0].(map[string]any)["kind"])
	assert.Equal(t, "local", data["default_quote_id"])
}

func TestShippingHandler_QuoteErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"no options", shipping.ErrNoShippingOptions, http.StatusUnprocessableEntity},
		{"superseded", checkoutapp.ErrQuoteSuperseded, http.StatusConflict},
		{"empty cart", checkoutapp.ErrNothingToQuote, http.StatusBadRequest},
		{"carrier down", fmt.Errorf("%w: 503", shipping.ErrShippingRatesFailed), http.StatusBadGateway},
		{"no token", shipping.ErrShippingNotConfigured, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, engine := setupShipping()
			svc.On("Quote", mock.Anything, testSession, mock.Anything).Return(nil, tt.err)

			w := doRequest(t, engine, http.MethodPost, "/shipping/quotes", map[string]any{"postal_code": "12010000"})
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestShippingHandler_QuoteRequiresPostalCode(t *testing.T) {
	svc, engine := setupShipping()

	w := doRequest(t, engine, http.MethodPost, "/shipping/quotes", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "postal_code", decodeResponse(t, w).Error.Details[0].Field)
	svc.AssertNotCalled(t, "Quote", mock.Anything, mock.Anything, mock.Anything)
}
