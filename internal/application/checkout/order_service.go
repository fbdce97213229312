package checkout

import (
	"context"
	"errors"
	"time"

	"github.com/pattycroche/storefront/internal/domain/messaging"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/shared/valueobject"
	"github.com/pattycroche/storefront/internal/domain/shipping"
	"github.com/pattycroche/storefront/internal/domain/trade"
	"github.com/pattycroche/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

var (
	// ErrSubmissionInProgress is returned while the same session already has a submission running
	ErrSubmissionInProgress = shared.NewDomainError("SUBMISSION_IN_PROGRESS", "Your order is already being submitted")
	// ErrQuoteNotFound is returned when the selected option was not quoted to the session
	ErrQuoteNotFound = shared.NewDomainError("SHIPPING_QUOTE_NOT_FOUND", "The selected shipping option is no longer available, please recalculate")
	// ErrOrderPersistFailed is returned when the order sink rejects the order
	ErrOrderPersistFailed = shared.NewDomainError("ORDER_PERSIST_FAILED", "Could not register your order, please try again")
)

// OrderRecorder receives checkout counters
type OrderRecorder interface {
	RecordOrderPlaced(ctx context.Context, order *trade.CustomerOrder)
	RecordOrderFailed(ctx context.Context, reason string)
}

type nopRecorder struct{}

func (nopRecorder) RecordOrderPlaced(context.Context, *trade.CustomerOrder) {}
func (nopRecorder) RecordOrderFailed(context.Context, string)               {}

// OrderService submits orders: validate, assemble, persist, then hand off.
// The handoff runs only after the order is stored and never fails the submission.
type OrderService struct {
	assembler *trade.OrderAssembler
	orders    trade.OrderRepository
	sessions  shipping.QuoteSessionStore
	carts     CartAccess
	products  ProductGetter
	guard     shared.SubmissionGuard
	guardCfg  shared.SubmissionGuardConfig
	events    shared.EventPublisher
	contact   messaging.Contact
	recorder  OrderRecorder
	logger    *zap.Logger
}

// OrderServiceOption configures an OrderService
type OrderServiceOption func(*OrderService)

// WithSubmissionGuard guards submissions against double submission per session
func WithSubmissionGuard(guard shared.SubmissionGuard, cfg shared.SubmissionGuardConfig) OrderServiceOption {
	return func(s *OrderService) {
		s.guard = guard
		s.guardCfg = cfg
	}
}

// WithEventPublisher publishes the order's domain events after persistence
func WithEventPublisher(p shared.EventPublisher) OrderServiceOption {
	return func(s *OrderService) {
		s.events = p
	}
}

// WithOrderRecorder sets the checkout metrics recorder
func WithOrderRecorder(r OrderRecorder) OrderServiceOption {
	return func(s *OrderService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// NewOrderService creates a new OrderService
func NewOrderService(
	assembler *trade.OrderAssembler,
	orders trade.OrderRepository,
	sessions shipping.QuoteSessionStore,
	carts CartAccess,
	products ProductGetter,
	contact messaging.Contact,
	logger *zap.Logger,
	opts ...OrderServiceOption,
) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OrderService{
		assembler: assembler,
		orders:    orders,
		sessions:  sessions,
		carts:     carts,
		products:  products,
		contact:   contact,
		recorder:  nopRecorder{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit places an order for the session
func (s *OrderService) Submit(ctx context.Context, sessionID string, req SubmitOrderRequest) (*SubmitOrderResponse, error) {
	attrs := []attribute.KeyValue{
		telemetry.AttrSessionID.String(sessionID),
		telemetry.AttrFastCheckout.Bool(req.ProductID > 0),
	}
	return telemetry.InSpan(ctx, "checkout.submit_order", attrs,
		func(ctx context.Context, span trace.Span) (*SubmitOrderResponse, error) {
			resp, err := s.submit(ctx, sessionID, req)
			if err != nil {
				return nil, err
			}
			span.SetAttributes(
				telemetry.AttrOrderNumber.String(resp.Order.OrderNumber),
				telemetry.Amount(resp.Order.TotalGeneral),
			)
			return resp, nil
		})
}

func (s *OrderService) submit(ctx context.Context, sessionID string, req SubmitOrderRequest) (*SubmitOrderResponse, error) {
	if sessionID == "" {
		return nil, shared.NewDomainError("MISSING_SESSION", "Session id is required")
	}

	release, err := s.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	defer release()

	input, fromCart, err := s.buildInput(ctx, sessionID, req)
	if err != nil {
		s.recorder.RecordOrderFailed(ctx, errorCode(err))
		return nil, err
	}

	order, err := s.assembler.Assemble(input)
	if err != nil {
		s.recorder.RecordOrderFailed(ctx, errorCode(err))
		return nil, err
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.logger.Error("failed to persist order",
			zap.String("order_number", order.OrderNumber),
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		s.recorder.RecordOrderFailed(ctx, ErrOrderPersistFailed.Code)
		return nil, ErrOrderPersistFailed
	}

	s.logger.Info("order placed",
		zap.String("order_number", order.OrderNumber),
		zap.String("order_id", order.ID.String()),
		zap.Int("items", order.ItemCount()),
		zap.String("total", order.TotalGeneral.StringFixed(2)),
	)
	s.recorder.RecordOrderPlaced(ctx, order)

	// Everything below is best effort: the order is already stored
	s.publish(ctx, order)
	if fromCart {
		if err := s.carts.Clear(ctx, sessionID); err != nil {
			s.logger.Warn("failed to clear cart after order", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	return &SubmitOrderResponse{
		Order:       ToOrderResponse(order),
		WhatsAppURL: s.contact.Link(messaging.OrderMessage(order)),
	}, nil
}

func (s *OrderService) buildInput(ctx context.Context, sessionID string, req SubmitOrderRequest) (trade.CheckoutInput, bool, error) {
	input := trade.CheckoutInput{
		CustomerName: req.CustomerName,
		HouseNumber:  req.HouseNumber,
		SkipShipping: req.SkipShipping,
	}

	if req.PostalCode != "" {
		code, err := parsePostalCode(req.PostalCode)
		if err != nil {
			return input, false, err
		}
		input.PostalCode = code
	}

	fromCart := req.ProductID == 0
	if fromCart {
		c, err := s.carts.Load(ctx, sessionID)
		if err != nil {
			return input, false, err
		}
		input.Items = trade.ItemsFromCart(c)
	} else {
		product, err := s.products.GetVisible(ctx, req.ProductID)
		if err != nil {
			return input, false, err
		}
		input.Items = trade.ItemsFromProduct(*product, req.Quantity)
	}

	if req.QuoteID != "" && !req.SkipShipping {
		quote, code, err := s.selectedQuote(ctx, sessionID, req.QuoteID, input.PostalCode, trade.Contents(input.Items))
		if err != nil {
			return input, fromCart, err
		}
		input.Shipping = &quote
		input.PostalCode = code
	}

	if err := s.assembler.Validate(input); err != nil {
		return input, fromCart, err
	}
	return input, fromCart, nil
}

// selectedQuote returns the quote the session was offered. The order must
// hold the same items the quote was priced for, and a postal code given with
// the order must match the one that was quoted.
func (s *OrderService) selectedQuote(ctx context.Context, sessionID, quoteID string, code valueobject.PostalCode, contents string) (shipping.Quote, valueobject.PostalCode, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, shipping.ErrQuoteSessionNotFound) {
			return shipping.Quote{}, code, ErrQuoteNotFound
		}
		return shipping.Quote{}, code, err
	}
	if !code.IsEmpty() && !code.Equals(session.PostalCode) {
		return shipping.Quote{}, code, ErrQuoteNotFound
	}
	if !session.Covers(contents) {
		s.logger.Info("quote priced for different items",
			zap.String("session_id", sessionID),
			zap.String("quoted", session.Contents),
			zap.String("ordered", contents),
		)
		return shipping.Quote{}, code, ErrQuoteNotFound
	}
	quote, ok := session.Find(quoteID)
	if !ok {
		return shipping.Quote{}, code, ErrQuoteNotFound
	}
	return quote, session.PostalCode, nil
}

func (s *OrderService) acquire(ctx context.Context, sessionID string) (func(), error) {
	if s.guard == nil || !s.guardCfg.Enabled {
		return func() {}, nil
	}

	key := "checkout:" + sessionID
	ok, err := s.guard.Acquire(ctx, key, s.guardCfg.TTL)
	if err != nil {
		// fail open
		s.logger.Warn("submission guard unavailable, continuing unguarded", zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, ErrSubmissionInProgress
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := s.guard.Release(ctx, key); err != nil {
			s.logger.Warn("failed to release submission guard", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

func (s *OrderService) publish(ctx context.Context, order *trade.CustomerOrder) {
	events := order.PullEvents()
	if s.events == nil || len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events",
			zap.String("order_number", order.OrderNumber),
			zap.Error(err),
		)
	}
}

func errorCode(err error) string {
	return shared.CodeOf(err, "INTERNAL_ERROR")
}
