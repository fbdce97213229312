package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

const defaultExportInterval = time.Minute

// MetricsConfig enables periodic metric export.
type MetricsConfig struct {
	Collector
	Enabled        bool
	ExportInterval time.Duration
}

// MeterProvider owns the SDK meter provider when metrics are enabled.
type MeterProvider struct {
	sdk *sdkmetric.MeterProvider
}

// NewMeterProvider builds the metric pipeline and installs it as the otel
// global. When disabled, Meter hands out meters from the global provider.
func NewMeterProvider(ctx context.Context, cfg MetricsConfig, log *zap.Logger) (*MeterProvider, error) {
	if !cfg.Enabled {
		log.Info("Metrics disabled")
		return &MeterProvider{}, nil
	}

	interval := cfg.ExportInterval
	if interval <= 0 {
		interval = defaultExportInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}
	res, err := cfg.resource()
	if err != nil {
		return nil, err
	}

	sdk := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(sdk)

	log.Info("Metrics enabled",
		zap.String("collector", cfg.Endpoint),
		zap.Duration("export_interval", interval),
	)
	return &MeterProvider{sdk: sdk}, nil
}

// IsEnabled reports whether metrics are exported.
func (mp *MeterProvider) IsEnabled() bool {
	return mp.sdk != nil
}

// Meter returns a named meter.
func (mp *MeterProvider) Meter(name string, opts ...metric.MeterOption) metric.Meter {
	if mp.sdk == nil {
		return otel.GetMeterProvider().Meter(name, opts...)
	}
	return mp.sdk.Meter(name, opts...)
}

// Shutdown exports the last collection and stops the reader.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if mp.sdk == nil {
		return nil
	}
	return shutdownWithin(ctx, "meter", mp.sdk.Shutdown)
}

// Instruments creates instruments on one meter and collects creation
// errors, so a component can declare all of its instruments and check Err
// once.
type Instruments struct {
	meter metric.Meter
	errs  []error
}

// NewInstruments starts an instrument set on meter.
func NewInstruments(meter metric.Meter) *Instruments {
	return &Instruments{meter: meter}
}

// Counter declares a monotonic int64 counter.
func (in *Instruments) Counter(name, description, unit string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(description), metric.WithUnit(unit))
	in.track(name, err)
	return c
}

// Gauge declares an int64 up/down counter.
func (in *Instruments) Gauge(name, description, unit string) metric.Int64UpDownCounter {
	g, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(description), metric.WithUnit(unit))
	in.track(name, err)
	return g
}

// Histogram declares a float64 histogram with explicit bucket bounds.
func (in *Instruments) Histogram(name, description, unit string, bounds ...float64) metric.Float64Histogram {
	opts := []metric.Float64HistogramOption{metric.WithDescription(description), metric.WithUnit(unit)}
	if len(bounds) > 0 {
		opts = append(opts, metric.WithExplicitBucketBoundaries(bounds...))
	}
	h, err := in.meter.Float64Histogram(name, opts...)
	in.track(name, err)
	return h
}

func (in *Instruments) track(name string, err error) {
	if err != nil {
		in.errs = append(in.errs, fmt.Errorf("instrument %s: %w", name, err))
	}
}

// Err returns every creation failure joined, or nil.
func (in *Instruments) Err() error {
	return errors.Join(in.errs...)
}

// Metric attribute keys.
var (
	AttrShippingMethod = attribute.Key("shipping_method")
	AttrFailureReason  = attribute.Key("reason")
	AttrHTTPMethod     = attribute.Key("http_method")
	AttrHTTPRoute      = attribute.Key("http_route")
	AttrHTTPStatusCode = attribute.Key("http_status_code")
)

// HTTPDurationBuckets are request latency bounds in seconds. The upper
// buckets cover slow shipping-rate calls.
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// ResponseSizeBuckets are response body bounds in bytes.
var ResponseSizeBuckets = []float64{256, 1024, 4096, 16384, 65536, 262144}

// OrderValueBuckets are order total bounds in BRL.
var OrderValueBuckets = []float64{25, 50, 100, 150, 250, 500, 1000}
