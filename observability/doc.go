// Package observability provides OpenTelemetry tracing and metrics for REST
// client calls.
//
// Exporting to an OTLP/HTTP collector:
//
//	p, err := observability.Init(ctx, observability.Config{ServiceName: "restdemo"})
//	defer p.Shutdown(ctx)
//
// Recording:
//
//	ctx, span := observability.StartSpan(ctx, "rest.fetch GET")
//	defer span.End()
//
//	metrics, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
//	metrics.RecordRequest(ctx, "fetch", "GET", "200", duration)
//
// Without Init the global no-op providers are used, so adapters can always
// create spans and record metrics.
package observability
