package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const (
	loggerCtxKey ctxKey = iota
	correlationCtxKey
)

// Correlation identifies the request and shopper session a log entry
// belongs to.
type Correlation struct {
	RequestID string
	SessionID string
}

func (c Correlation) fields() []zap.Field {
	var fields []zap.Field
	if c.RequestID != "" {
		fields = append(fields, zap.String("request_id", c.RequestID))
	}
	if c.SessionID != "" {
		fields = append(fields, zap.String("session_id", c.SessionID))
	}
	return fields
}

// WithCorrelation stores ids in ctx. Empty fields keep values already set.
func WithCorrelation(ctx context.Context, ids Correlation) context.Context {
	prev := CorrelationFrom(ctx)
	if ids.RequestID == "" {
		ids.RequestID = prev.RequestID
	}
	if ids.SessionID == "" {
		ids.SessionID = prev.SessionID
	}
	return context.WithValue(ctx, correlationCtxKey, ids)
}

// CorrelationFrom returns the ids stored by WithCorrelation.
func CorrelationFrom(ctx context.Context) Correlation {
	ids, _ := ctx.Value(correlationCtxKey).(Correlation)
	return ids
}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerCtxKey, l)
}

// FromContext returns the logger stored in ctx, or a no-op logger.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerCtxKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// TraceID returns the hex trace id of the active span, or "".
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

// L returns the logger stored in ctx with trace_id and span_id added.
//
//	logger.L(ctx).Info("quote stored", zap.String("quote_id", id))
func L(ctx context.Context) *zap.Logger {
	return withSpan(ctx, FromContext(ctx))
}

// Enrich adds the correlation ids and span ids carried by ctx to l. A nil
// l yields a no-op logger.
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	if fields := CorrelationFrom(ctx).fields(); len(fields) > 0 {
		l = l.With(fields...)
	}
	return withSpan(ctx, l)
}

func withSpan(ctx context.Context, l *zap.Logger) *zap.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return l
	}
	return l.With(
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	)
}
