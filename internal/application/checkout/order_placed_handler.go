package checkout

import (
	"context"
	"fmt"

	"github.com/pattycroche/storefront/internal/domain/messaging"
	"github.com/pattycroche/storefront/internal/domain/shared"
	"github.com/pattycroche/storefront/internal/domain/trade"
	"go.uber.org/zap"
)

// Handoff is a prebuilt chat message for the seller about a new order
type Handoff struct {
	OrderNumber string
	Message     string
	URL         string
}

// HandoffDispatcher delivers a handoff to the seller. Delivery is fire and
// forget from the checkout's point of view.
type HandoffDispatcher interface {
	Dispatch(ctx context.Context, h Handoff) error
}

// OrderPlacedHandler handles OrderPlacedEvent by notifying the seller
type OrderPlacedHandler struct {
	dispatcher HandoffDispatcher
	contact    messaging.Contact
	logger     *zap.Logger
}

// NewOrderPlacedHandler creates a new handler for order placed events
func NewOrderPlacedHandler(dispatcher HandoffDispatcher, contact messaging.Contact, logger *zap.Logger) *OrderPlacedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderPlacedHandler{
		dispatcher: dispatcher,
		contact:    contact,
		logger:     logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderPlacedHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderPlaced}
}

// Handle builds the order message from the event and dispatches it
func (h *OrderPlacedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	placed, ok := event.(*trade.OrderPlacedEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", trade.EventTypeOrderPlaced),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			trade.EventTypeOrderPlaced, event.EventType())
	}

	order := orderFromEvent(placed)
	message := messaging.OrderMessage(order)

	if err := h.dispatcher.Dispatch(ctx, Handoff{
		OrderNumber: placed.OrderNumber,
		Message:     message,
		URL:         h.contact.Link(message),
	}); err != nil {
		h.logger.Warn("order handoff failed",
			zap.String("order_number", placed.OrderNumber),
			zap.Error(err),
		)
		return err
	}

	h.logger.Info("order handed off", zap.String("order_number", placed.OrderNumber))
	return nil
}

func orderFromEvent(e *trade.OrderPlacedEvent) *trade.CustomerOrder {
	order := &trade.CustomerOrder{
		OrderNumber:    e.OrderNumber,
		CustomerName:   e.CustomerName,
		HouseNumber:    e.HouseNumber,
		Items:          e.Items,
		TotalProducts:  e.TotalProducts,
		ShippingCost:   e.ShippingCost,
		ShippingMethod: e.ShippingMethod,
		TotalGeneral:   e.TotalGeneral,
		Status:         trade.OrderStatusPending,
	}
	order.ID = e.OrderID
	if e.PostalCode != "" {
		if code, err := parsePostalCode(e.PostalCode); err == nil {
			order.CustomerPostalCode = code
		}
	}
	return order
}
