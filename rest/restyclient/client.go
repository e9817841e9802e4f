package restyclient

import (
	"context"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/rest"
)

// TransportName labels this adapter in logs, spans and metrics.
const TransportName = "resty"

// Client implements rest.Client by delegating to a resty client.
type Client struct {
	resty  *resty.Client
	config rest.Config
	inst   *rest.Instrument
}

var _ rest.Client = (*Client)(nil)

// Option configures the adapter.
type Option func(*options)

type options struct {
	transport http.RoundTripper
	log       *logger.Logger
}

// WithTransport replaces the base round tripper. It is still wrapped with
// OpenTelemetry instrumentation, and TLS settings apply when it is an
// *http.Transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithLogger sets the logger used for request logs and resty's own output.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a resty adapter with the given configuration.
func New(cfg rest.Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	transport, err := rest.NewTransport(cfg, o.transport)
	if err != nil {
		return nil, err
	}
	if o.log == nil {
		o.log = logger.WithComponent(TransportName)
	}
	inst := rest.NewInstrument(TransportName, o.log)

	rc := resty.NewWithClient(&http.Client{Transport: transport}).
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetLogger(&restyLogger{log: inst.Logger()}).
		SetHeaders(rest.MergeHeaders(cfg.Headers)).
		SetHeader(rest.HeaderUserAgent, cfg.UserAgent)

	return &Client{resty: rc, config: cfg, inst: inst}, nil
}

// Name returns the configured name, or "resty".
func (c *Client) Name() string {
	if c.config.Name != "" {
		return c.config.Name
	}
	return TransportName
}

// Get issues a GET request with no body.
func (c *Client) Get(ctx context.Context, path string, opts ...rest.RequestOption) (*rest.User, error) {
	return c.do(ctx, http.MethodGet, path, nil, false, opts)
}

// Post issues a POST request. Content-Type defaults to application/json.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...rest.RequestOption) (*rest.User, error) {
	return c.do(ctx, http.MethodPost, path, body, true, opts)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.resty.GetClient().CloseIdleConnections()
}

func (c *Client) do(ctx context.Context, method, path string, body any, withBody bool, opts []rest.RequestOption) (*rest.User, error) {
	if err := rest.CheckPath(path); err != nil {
		return nil, err
	}
	ro, err := rest.BuildOptions(opts...)
	if err != nil {
		return nil, err
	}
	var payload []byte
	if withBody {
		if payload, err = rest.EncodeBody(body); err != nil {
			return nil, err
		}
	}

	ctx, call := c.inst.Begin(ctx, method, path)
	c.logIgnored(ro)
	user, status, err := c.execute(ctx, call, method, path, payload, withBody, ro)
	call.End(status, err)
	return user, err
}

// execute sends exactly one request; resty retries are disabled.
func (c *Client) execute(ctx context.Context, call *rest.Call, method, path string, payload []byte, withBody bool, ro rest.RequestOptions) (*rest.User, int, error) {
	req := c.resty.R().
		SetContext(ctx).
		SetHeader(rest.HeaderRequestID, call.RequestID())
	if withBody {
		req.SetHeader(rest.HeaderContentType, rest.ContentTypeJSON)
	}
	// Caller headers go last so they win over every default.
	req.SetHeaders(rest.MergeHeaders(ro.Headers))
	if payload != nil {
		req.SetBody(payload)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, 0, rest.NewTransportError(ctx, err)
	}

	data := resp.Body()
	if classErr := rest.ClassifyStatusCode(resp.StatusCode(), data); classErr != nil {
		return nil, resp.StatusCode(), classErr
	}

	user, err := rest.DecodeUser(resp.StatusCode(), data, c.config.ValidateResponses)
	return user, resp.StatusCode(), err
}

// logIgnored notes request options this transport has no equivalent for.
func (c *Client) logIgnored(ro rest.RequestOptions) {
	if ro.Mode == "" && ro.Cache == "" {
		return
	}
	c.inst.Logger().Debug("request option ignored by transport", logger.Fields(
		"mode", string(ro.Mode),
		"cache", string(ro.Cache),
	))
}
