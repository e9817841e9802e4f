package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// ClientMetrics holds the instruments recorded for every REST client call.
type ClientMetrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	errorTotal      metric.Int64Counter
}

// NewClientMetrics creates client instruments on the given meter.
func NewClientMetrics(meter metric.Meter) (*ClientMetrics, error) {
	requestTotal, err := meter.Int64Counter("rest.client.request.total",
		metric.WithDescription("Total number of REST client requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rest.client.request.total counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram("rest.client.request.duration",
		metric.WithDescription("Duration of REST client requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rest.client.request.duration histogram: %w", err)
	}

	errorTotal, err := meter.Int64Counter("rest.client.error.total",
		metric.WithDescription("REST client failures by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rest.client.error.total counter: %w", err)
	}

	return &ClientMetrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		errorTotal:      errorTotal,
	}, nil
}

// RecordRequest records one completed call. A nil receiver is a no-op.
func (m *ClientMetrics) RecordRequest(ctx context.Context, transport, method, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("method", method),
		attribute.String("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("method", method),
	))
}

// RecordError records a failed call by error code. A nil receiver is a no-op.
func (m *ClientMetrics) RecordError(ctx context.Context, transport, code string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("transport", transport),
		attribute.String("code", code),
	))
}
