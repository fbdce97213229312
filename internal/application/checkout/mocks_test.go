package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/pattycroche/storefront/internal/domain/cart"
	"github.com/pattycroche/storefront/internal/domain/catalog"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/pattycroche/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockPostalLookup is a mock implementation of shipping.PostalLookup
type MockPostalLookup struct {
	mock.Mock
}

func (m *MockPostalLookup) Lookup(ctx context.Context, code valueobject.PostalCode) (valueobject.Address, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(valueobject.Address), args.Error(1)
}

// MockRateCalculator is a mock implementation of shipping.RateCalculator
type MockRateCalculator struct {
	mock.Mock
}

func (m *MockRateCalculator) Calculate(ctx context.Context, req shipping.RateRequest) ([]shipping.RawQuote, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]shipping.RawQuote), args.Error(1)
}

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *trade.CustomerOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*trade.CustomerOrder, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.CustomerOrder), args.Error(1)
}

// MockProductGetter is a mock implementation of ProductGetter
type MockProductGetter struct {
	mock.Mock
}

func (m *MockProductGetter) GetVisible(ctx context.Context, id int64) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

// MockCartAccess is a mock implementation of CartAccess
type MockCartAccess struct {
	mock.Mock
}

func (m *MockCartAccess) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartAccess) Clear(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockSubmissionGuard is a mock implementation of shared.SubmissionGuard
type MockSubmissionGuard struct {
	mock.Mock
}

func (m *MockSubmissionGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockSubmissionGuard) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockSubmissionGuard) Close() error {
	return nil
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// memorySessions is a minimal shipping.QuoteSessionStore
type memorySessions struct {
	mu       sync.Mutex
	sessions map[string]shipping.QuoteSession
	saveErr  error
}

func newMemorySessions() *memorySessions {
	return &memorySessions{sessions: make(map[string]shipping.QuoteSession)}
}

func (s *memorySessions) Get(_ context.Context, sessionID string) (*shipping.QuoteSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	qs, ok := s.sessions[sessionID]
	if !ok {
		return nil, shipping.ErrQuoteSessionNotFound
	}
	return &qs, nil
}

func (s *memorySessions) Save(_ context.Context, sessionID string, qs shipping.QuoteSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.sessions[sessionID] = qs
	return nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testProduct(id int64, name, price string) *catalog.Product {
	return &catalog.Product{
		ID:       id,
		Name:     name,
		Category: "Amigurumi",
		Price:    dec(price),
		Visible:  true,
		Links: map[catalog.Marketplace]string{
			catalog.MarketplaceNuvemshop: "https://store.example/p/" + name,
		},
	}
}

func mustAddress(code, street, city, state string) valueobject.Address {
	addr, err := valueobject.NewAddress(valueobject.MustNewPostalCode(code), street, city, state)
	if err != nil {
		panic(err)
	}
	return addr
}

var (
	taubate   = mustAddress("12080-000", "Rua Um", "Taubaté", "SP")
	saoPaulo  = mustAddress("01310-100", "Avenida Paulista", "São Paulo", "SP")
	originCEP = valueobject.MustNewPostalCode("12020-000")
)
