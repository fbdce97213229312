package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	cartapp "github.com/pattycroche/storefront/internal/application/cart"
	catalogapp "github.com/pattycroche/storefront/internal/application/catalog"
	checkoutapp "github.com/pattycroche/storefront/internal/application/checkout"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/strategy"
	"github.com/pattycroche/storefront/internal/interfaces/http/dto"
	"github.com/pattycroche/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

const testSession = "sess-1"

// newTestEngine builds an engine with the request id and session middleware
func newTestEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Session())
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionIDHeader, testSession)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

type mockCatalogService struct {
	mock.Mock
}

func (m *mockCatalogService) List(ctx context.Context, filter catalogapp.ProductListFilter) (*shared.Page[catalogapp.ProductResponse], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.Page[catalogapp.ProductResponse]), args.Error(1)
}

func (m *mockCatalogService) GetByID(ctx context.Context, id int64) (*catalogapp.ProductDetailResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalogapp.ProductDetailResponse), args.Error(1)
}

func (m *mockCatalogService) ListingPrices(ctx context.Context, id int64) ([]strategy.ListingQuote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]strategy.ListingQuote), args.Error(1)
}

func (m *mockCatalogService) Categories(ctx context.Context) catalogapp.CategoriesResponse {
	args := m.Called(ctx)
	return args.Get(0).(catalogapp.CategoriesResponse)
}

type mockCartService struct {
	mock.Mock
}

func (m *mockCartService) cartResult(args mock.Arguments) (*cartapp.CartResponse, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cartapp.CartResponse), args.Error(1)
}

func (m *mockCartService) Get(ctx context.Context, sessionID string) (*cartapp.CartResponse, error) {
	return m.cartResult(m.Called(ctx, sessionID))
}

func (m *mockCartService) AddItem(ctx context.Context, sessionID string, req cartapp.AddItemRequest) (*cartapp.CartResponse, error) {
	return m.cartResult(m.Called(ctx, sessionID, req))
}

func (m *mockCartService) UpdateItem(ctx context.Context, sessionID string, productID int64, req cartapp.UpdateItemRequest) (*cartapp.CartResponse, error) {
	return m.cartResult(m.Called(ctx, sessionID, productID, req))
}

func (m *mockCartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (*cartapp.CartResponse, error) {
	return m.cartResult(m.Called(ctx, sessionID, productID))
}

func (m *mockCartService) Clear(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

type mockQuoteService struct {
	mock.Mock
}

func (m *mockQuoteService) LookupAddress(ctx context.Context, rawCode string) (*checkoutapp.AddressResponse, error) {
	args := m.Called(ctx, rawCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkoutapp.AddressResponse), args.Error(1)
}

func (m *mockQuoteService) Quote(ctx context.Context, sessionID string, req checkoutapp.QuoteRequest) (*checkoutapp.QuoteResponse, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkoutapp.QuoteResponse), args.Error(1)
}

type mockOrderSubmitter struct {
	mock.Mock
}

func (m *mockOrderSubmitter) Submit(ctx context.Context, sessionID string, req checkoutapp.SubmitOrderRequest) (*checkoutapp.SubmitOrderResponse, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkoutapp.SubmitOrderResponse), args.Error(1)
}

type mockChannelResolver struct {
	mock.Mock
}

func (m *mockChannelResolver) Resolve(ctx context.Context, req checkoutapp.ChannelRequest) (*checkoutapp.ChannelResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkoutapp.ChannelResponse), args.Error(1)
}
