package event

import (
	"context"
	"sync"
	"time"

	"github.com/pattycroche/storefront/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultHandlerTimeout bounds a single handler invocation
const DefaultHandlerTimeout = 30 * time.Second

// InMemoryEventBus is the in-process EventPublisher.
//
// Publish returns immediately: every handler runs on its own goroutine with
// a context detached from the publisher's cancellation. Handler errors and
// panics are logged and never reach the publisher. Stop waits for in-flight
// handlers; events published after Stop are dropped.
type InMemoryEventBus struct {
	registry       *HandlerRegistry
	logger         *zap.Logger
	handlerTimeout time.Duration

	// mu orders wg.Add in Publish before the wg.Wait in Stop
	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

// BusOption configures an InMemoryEventBus
type BusOption func(*InMemoryEventBus)

// WithHandlerTimeout sets the per-handler timeout
func WithHandlerTimeout(d time.Duration) BusOption {
	return func(b *InMemoryEventBus) {
		if d > 0 {
			b.handlerTimeout = d
		}
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	b := &InMemoryEventBus{
		registry:       NewHandlerRegistry(),
		logger:         logger,
		handlerTimeout: DefaultHandlerTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish hands events to their handlers without waiting for them
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		for _, event := range events {
			b.logger.Warn("event bus stopped, dropping event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
			)
		}
		return nil
	}

	detached := context.WithoutCancel(ctx)
	for _, event := range events {
		for _, handler := range b.registry.GetHandlers(event.EventType()) {
			b.wg.Add(1)
			go func(handler shared.EventHandler, event shared.DomainEvent) {
				defer b.wg.Done()
				b.dispatch(detached, handler, event)
			}(handler, event)
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit event types the
// handler's own EventTypes are used.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Start starts the event bus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.mu.Lock()
	b.stopped = false
	b.mu.Unlock()
	b.logger.Info("event bus started")
	return nil
}

// Stop stops accepting events and waits for in-flight handlers or ctx
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		b.logger.Warn("event bus stop timed out with handlers still running")
		return ctx.Err()
	}
}

// Wait blocks until every dispatched handler has returned
func (b *InMemoryEventBus) Wait() {
	b.wg.Wait()
}

func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
	defer cancel()

	if err := handler.Handle(ctx, event); err != nil {
		b.logger.Error("handler failed to process event",
			zap.String("event_type", event.EventType()),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err),
		)
	}
}

var _ shared.EventPublisher = (*InMemoryEventBus)(nil)
