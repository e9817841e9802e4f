package rest

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
)

// Instrument wraps each adapter call with a span, metrics and logs.
// Adapters create one at construction and call Begin per request.
type Instrument struct {
	transport string
	log       *logger.Logger
	metrics   *observability.ClientMetrics
}

// NewInstrument creates an Instrument for the named transport. A nil log
// falls back to the global logger.
func NewInstrument(transport string, log *logger.Logger) *Instrument {
	if log == nil {
		log = logger.WithComponent("rest")
	}
	// Instrument creation on the global meter only fails for invalid names.
	metrics, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
	if err != nil {
		log.Warn("client metrics disabled", logger.Fields(logger.FieldError, err.Error()))
	}
	return &Instrument{
		transport: transport,
		log:       log.WithFields(logger.Fields(logger.FieldTransport, transport)),
		metrics:   metrics,
	}
}

// Logger returns the transport-tagged logger.
func (i *Instrument) Logger() *logger.Logger {
	return i.log
}

// Call tracks one in-flight request.
type Call struct {
	inst      *Instrument
	ctx       context.Context
	span      trace.Span
	op        string
	method    string
	path      string
	requestID string
	start     time.Time
}

// Begin starts tracking a request. The returned context carries the span and
// must be used for the outgoing request.
func (i *Instrument) Begin(ctx context.Context, method, path string) (context.Context, *Call) {
	requestID := uuid.NewString()
	op := "rest." + i.transport + " " + method
	ctx, span := observability.StartSpan(ctx, op)
	observability.SetSpanAttribute(ctx, observability.AttrTransport, i.transport)
	observability.SetSpanAttribute(ctx, observability.AttrMethod, method)
	observability.SetSpanAttribute(ctx, observability.AttrPath, path)
	observability.SetSpanAttribute(ctx, observability.AttrRequestID, requestID)

	return ctx, &Call{
		inst:      i,
		ctx:       ctx,
		span:      span,
		op:        op,
		method:    method,
		path:      path,
		requestID: requestID,
		start:     time.Now(),
	}
}

// RequestID is the identifier sent as X-Request-ID for this call.
func (c *Call) RequestID() string {
	return c.requestID
}

// End closes the span and records the outcome. statusCode is 0 when no
// response arrived.
func (c *Call) End(statusCode int, err error) {
	defer c.span.End()
	elapsed := time.Since(c.start)

	status := "error"
	if statusCode > 0 {
		status = strconv.Itoa(statusCode)
		observability.SetSpanAttribute(c.ctx, observability.AttrStatusCode, statusCode)
	}
	c.inst.metrics.RecordRequest(c.ctx, c.inst.transport, c.method, status, elapsed)

	fields := logger.Fields(
		logger.FieldMethod, c.method,
		logger.FieldPath, c.path,
		logger.FieldRequestID, c.requestID,
		logger.FieldStatus, statusCode,
	)
	timing := logger.DurationFields(c.op, elapsed)

	if err != nil {
		code := "unknown"
		if ec, ok := CodeOf(err); ok {
			code = ec.String()
		}
		observability.SetSpanAttribute(c.ctx, observability.AttrErrorCode, code)
		observability.SetSpanError(c.ctx, err)
		c.inst.metrics.RecordError(c.ctx, c.inst.transport, code)
		c.inst.log.WithError(err).Warn("request failed", fields, timing)
		return
	}
	c.inst.log.Debug("request completed", fields, timing)
}
