package rates

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAdapter(t *testing.T, cfg Config, handler http.HandlerFunc) *MelhorEnvioAdapter {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg.BaseURL = server.URL
	if cfg.Token == "" {
		cfg.Token = "test-token"
	}
	return NewMelhorEnvioAdapter(cfg, zap.NewNop(), WithHTTPClient(server.Client()))
}

func testRequest() shipping.RateRequest {
	return shipping.RateRequest{
		From: valueobject.MustNewPostalCode("12010-000"),
		To:   valueobject.MustNewPostalCode("01310-100"),
		Items: []shipping.RateItem{{
			ID: "1",
			Package: shipping.Package{
				Width:  decimal.NewFromInt(11),
				Height: decimal.NewFromInt(17),
				Length: decimal.NewFromInt(11),
				Weight: decimal.RequireFromString("0.3"),
			},
			InsuranceValue: decimal.RequireFromString("45.00"),
			Quantity:       2,
		}},
	}
}

func TestMelhorEnvioAdapter_Calculate(t *testing.T) {
	t.Run("sends the parcel list and maps quotes", func(t *testing.T) {
		var got calculateRequest
		var auth, agent string
		adapter := newTestAdapter(t, Config{UserAgent: "storefront (test)"}, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, calculatePath, r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			auth = r.Header.Get("Authorization")
			agent = r.Header.Get("User-Agent")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`[
				{"id":1,"name":"PAC","price":"22.50","delivery_time":8,"company":{"name":"Correios","picture":"https://img/correios.png"}},
				{"id":2,"name":"SEDEX","price":"41.90","custom_price":"39.90","delivery_time":3,"company":{"name":"Correios"}},
				{"id":3,"name":".Package","error":"Transportadora não atende este trecho.","company":{"name":"Jadlog"}}
			]`))
		})

		quotes, err := adapter.Calculate(context.Background(), testRequest())
		require.NoError(t, err)

		assert.Equal(t, "Bearer test-token", auth)
		assert.Equal(t, "storefront (test)", agent)
		assert.Equal(t, "12010000", got.From.PostalCode)
		assert.Equal(t, "01310100", got.To.PostalCode)
		require.Len(t, got.Products, 1)
		assert.Equal(t, json.Number("0.3"), got.Products[0].Weight)
		assert.Equal(t, json.Number("45"), got.Products[0].InsuranceValue)
		assert.Equal(t, 2, got.Products[0].Quantity)

		require.Len(t, quotes, 3)
		assert.Equal(t, "1", quotes[0].ID)
		assert.True(t, quotes[0].Price.Equal(decimal.RequireFromString("22.50")))
		assert.Equal(t, "8", quotes[0].DeliveryTime)
		assert.Equal(t, "Correios", quotes[0].CompanyName)
		assert.Equal(t, "https://img/correios.png", quotes[0].CompanyLogo)
		assert.True(t, quotes[1].Price.Equal(decimal.RequireFromString("39.90")))
		assert.True(t, quotes[2].IsError())
		assert.Equal(t, "Transportadora não atende este trecho.", quotes[2].Error)
	})

	t.Run("unparseable price becomes an error marker", func(t *testing.T) {
		adapter := newTestAdapter(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[{"id":1,"name":"PAC","price":"n/a","delivery_time":8}]`))
		})
		quotes, err := adapter.Calculate(context.Background(), testRequest())
		require.NoError(t, err)
		require.Len(t, quotes, 1)
		assert.True(t, quotes[0].IsError())
	})

	t.Run("non-200 is a rates failure", func(t *testing.T) {
		adapter := newTestAdapter(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Unauthenticated."}`))
		})
		_, err := adapter.Calculate(context.Background(), testRequest())
		assert.ErrorIs(t, err, shipping.ErrShippingRatesFailed)
	})

	t.Run("malformed body is a rates failure", func(t *testing.T) {
		adapter := newTestAdapter(t, Config{}, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"not":"an array"}`))
		})
		_, err := adapter.Calculate(context.Background(), testRequest())
		assert.ErrorIs(t, err, shipping.ErrShippingRatesFailed)
	})

	t.Run("missing token is not configured", func(t *testing.T) {
		adapter := NewMelhorEnvioAdapter(Config{}, zap.NewNop())
		_, err := adapter.Calculate(context.Background(), testRequest())
		assert.ErrorIs(t, err, shipping.ErrShippingNotConfigured)
	})
}

func TestMelhorEnvioAdapter_Breaker(t *testing.T) {
	var calls atomic.Int32
	adapter := newTestAdapter(t, Config{MaxFailures: 2, OpenTimeout: time.Minute}, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for range 2 {
		_, err := adapter.Calculate(context.Background(), testRequest())
		require.ErrorIs(t, err, shipping.ErrShippingRatesFailed)
	}

	// breaker is open: the calculator is not called again
	_, err := adapter.Calculate(context.Background(), testRequest())
	assert.ErrorIs(t, err, shipping.ErrShippingRatesFailed)
	assert.Equal(t, int32(2), calls.Load())
}
