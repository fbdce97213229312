package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope of service spans
const TracerName = "storefront"

// Span attribute keys set by the application services
var (
	AttrSessionID    = attribute.Key("session_id")
	AttrOrderNumber  = attribute.Key("order_number")
	AttrPostalCode   = attribute.Key("postal_code")
	AttrQuoteID      = attribute.Key("quote_id")
	AttrLocal        = attribute.Key("local_delivery")
	AttrQuoteCount   = attribute.Key("quotes_count")
	AttrAmount       = attribute.Key("amount")
	AttrFastCheckout = attribute.Key("fast_checkout")
)

// Amount renders a BRL amount with two decimals under AttrAmount.
func Amount(d decimal.Decimal) attribute.KeyValue {
	return AttrAmount.String(d.StringFixed(2))
}

// InSpan runs fn inside an internal span called name, started from the
// global tracer provider. A non-nil error from fn is recorded on the span
// and sets its status to Error.
func InSpan[T any](ctx context.Context, name string, attrs []attribute.KeyValue,
	fn func(ctx context.Context, span trace.Span) (T, error)) (T, error) {
	ctx, span := otel.Tracer(TracerName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	out, err := fn(ctx, span)
	Fail(span, err)
	return out, err
}

// Fail records err on span and marks it failed. A nil err is ignored.
func Fail(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceID returns the trace id of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}
