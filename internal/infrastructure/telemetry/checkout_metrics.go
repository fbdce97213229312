package telemetry

import (
	"context"
	"errors"

	"github.com/pattycroche/storefront/internal/domain/trade"
	"go.opentelemetry.io/otel/metric"
)

// ErrNilMeter is returned by constructors given a nil meter.
var ErrNilMeter = errors.New("telemetry: nil meter")

// CheckoutMetrics counts placed and failed orders. It implements
// checkout.OrderRecorder.
type CheckoutMetrics struct {
	placed metric.Int64Counter
	failed metric.Int64Counter
	value  metric.Float64Histogram
}

// NewCheckoutMetrics declares the checkout instruments on meter.
func NewCheckoutMetrics(meter metric.Meter) (*CheckoutMetrics, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	in := NewInstruments(meter)
	m := &CheckoutMetrics{
		placed: in.Counter("storefront_orders_placed_total", "Orders recorded at checkout", "{order}"),
		failed: in.Counter("storefront_orders_failed_total", "Order submissions that did not produce an order", "{order}"),
		value:  in.Histogram("storefront_order_value", "Order grand total", "BRL", OrderValueBuckets...),
	}
	if err := in.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordOrderPlaced counts an order and records its grand total, labelled
// by shipping method ("none" for hand-delivered orders).
func (m *CheckoutMetrics) RecordOrderPlaced(ctx context.Context, order *trade.CustomerOrder) {
	if order == nil {
		return
	}
	method := order.ShippingMethod
	if method == "" {
		method = "none"
	}
	attrs := metric.WithAttributes(AttrShippingMethod.String(method))
	m.placed.Add(ctx, 1, attrs)
	total, _ := order.TotalGeneral.Float64()
	m.value.Record(ctx, total, attrs)
}

// RecordOrderFailed counts a rejected or failed submission by error code.
func (m *CheckoutMetrics) RecordOrderFailed(ctx context.Context, reason string) {
	m.failed.Add(ctx, 1, metric.WithAttributes(AttrFailureReason.String(reason)))
}
