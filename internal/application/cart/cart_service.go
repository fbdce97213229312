package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/pattycroche/storefront/internal/domain/cart"
	"github.com/pattycroche/storefront/internal/domain/catalog"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrMissingSession is returned when a request carries no session id
var ErrMissingSession = shared.NewDomainError("MISSING_SESSION", "Session id is required")

// ProductGetter resolves catalog-visible products
type ProductGetter interface {
	GetVisible(ctx context.Context, id int64) (*catalog.Product, error)
}

// CartService manages per-session carts
type CartService struct {
	store    cart.Store
	products ProductGetter
	logger   *zap.Logger

	sfg   singleflight.Group // collapses concurrent loads of one session
	locks sync.Map           // sessionID -> *sync.Mutex
}

// NewCartService creates a new CartService
func NewCartService(store cart.Store, products ProductGetter, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		store:    store,
		products: products,
		logger:   logger,
	}
}

// Load returns the session's cart, or an empty cart when none is saved
func (s *CartService) Load(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	v, err, _ := s.sfg.Do(sessionID, func() (interface{}, error) {
		c, err := s.store.Get(ctx, sessionID)
		if errors.Is(err, cart.ErrCartNotFound) {
			return cart.New(sessionID), nil
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}

	// Callers sharing a flight must not share the aggregate
	return v.(*cart.Cart).Clone(), nil
}

// Get returns the session's cart
func (s *CartService) Get(ctx context.Context, sessionID string) (*CartResponse, error) {
	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return ToCartResponse(c), nil
}

// AddItem adds a catalog product to the cart. Quantity 0 means 1.
func (s *CartService) AddItem(ctx context.Context, sessionID string, req AddItemRequest) (*CartResponse, error) {
	qty := req.Quantity
	if qty == 0 {
		qty = 1
	}

	product, err := s.products.GetVisible(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		return c.AddQuantity(*product, qty)
	})
}

// UpdateItem sets a line's quantity; below 1 removes the line
func (s *CartService) UpdateItem(ctx context.Context, sessionID string, productID int64, req UpdateItemRequest) (*CartResponse, error) {
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		return c.UpdateQuantity(productID, req.Quantity)
	})
}

// RemoveItem removes a line from the cart
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (*CartResponse, error) {
	return s.mutate(ctx, sessionID, func(c *cart.Cart) error {
		return c.Remove(productID)
	})
}

// Clear empties the session's cart
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrMissingSession
	}
	unlock := s.lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		s.logger.Error("failed to clear cart", zap.String("session_id", sessionID), zap.Error(err))
		return err
	}
	return nil
}

// mutate runs a read-modify-write on the session's cart under the session lock
func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(*cart.Cart) error) (*CartResponse, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	unlock := s.lock(sessionID)
	defer unlock()

	c, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		s.logger.Error("failed to save cart", zap.String("session_id", sessionID), zap.Error(err))
		return nil, err
	}
	return ToCartResponse(c), nil
}

func (s *CartService) lock(sessionID string) func() {
	v, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
