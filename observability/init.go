package observability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/kbukum/restkit/logger"
)

// Defaults for a local OTLP/HTTP collector.
const (
	DefaultEndpoint       = "localhost:4318"
	DefaultSampleRate     = 1.0
	DefaultMetricInterval = 15 * time.Second
)

// Config describes one OTLP/HTTP collector that receives both spans and
// metrics for a service.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	// Endpoint is host:port of the collector.
	Endpoint string
	Insecure bool
	// SampleRate is the share of root spans kept, 0..1.
	SampleRate     float64
	MetricInterval time.Duration
}

// ApplyDefaults fills in the endpoint, sample rate and export interval.
func (c *Config) ApplyDefaults() {
	if c.Endpoint == "" {
		c.Endpoint = DefaultEndpoint
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.MetricInterval <= 0 {
		c.MetricInterval = DefaultMetricInterval
	}
}

// Providers are the SDK providers Init installed as the otel globals.
type Providers struct {
	Tracer *sdktrace.TracerProvider
	Meter  *sdkmetric.MeterProvider
}

// Shutdown flushes pending metrics and spans and stops both exporters.
func (p *Providers) Shutdown(ctx context.Context) error {
	return errors.Join(p.Meter.Shutdown(ctx), p.Tracer.Shutdown(ctx))
}

// Init builds trace and metric pipelines that export to cfg.Endpoint and
// installs them, with W3C trace context propagation, as the otel globals.
// Exporters connect lazily, so an unreachable collector is not an error here.
func Init(ctx context.Context, cfg Config) (*Providers, error) {
	cfg.ApplyDefaults()

	res, err := serviceResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry resource: %w", err)
	}

	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}

	spans, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("span exporter: %w", err)
	}
	metrics, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		_ = spans.Shutdown(ctx)
		return nil, fmt.Errorf("metric exporter: %w", err)
	}

	p := &Providers{
		Tracer: sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(spans),
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.ParentBased(sampler(cfg.SampleRate))),
		),
		Meter: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metrics, sdkmetric.WithInterval(cfg.MetricInterval))),
			sdkmetric.WithResource(res),
		),
	}
	otel.SetTracerProvider(p.Tracer)
	otel.SetMeterProvider(p.Meter)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	logger.Info("telemetry exporting", logger.Fields(
		"service", cfg.ServiceName,
		"endpoint", cfg.Endpoint,
		"sample_rate", cfg.SampleRate,
		"metric_interval", cfg.MetricInterval.String(),
	))
	return p, nil
}

// serviceResource describes the service on every exported span and metric.
// OTEL_RESOURCE_ATTRIBUTES is honored but cannot override the service fields.
func serviceResource(ctx context.Context, cfg Config) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
	)
}
