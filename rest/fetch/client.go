package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/rest"
)

// TransportName labels this adapter in logs, spans and metrics.
const TransportName = "fetch"

// Client implements rest.Client on top of net/http.
type Client struct {
	httpClient *http.Client
	config     rest.Config
	inst       *rest.Instrument
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

// WithLogger sets the logger used for request logs.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a fetch adapter with the given configuration.
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

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		config: cfg,
		inst:   rest.NewInstrument(TransportName, o.log),
	}, nil
}

// Name returns the configured name, or "fetch".
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
	c.httpClient.CloseIdleConnections()
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
	user, status, err := c.execute(ctx, call, method, path, payload, withBody, ro)
	call.End(status, err)
	return user, err
}

// execute sends exactly one request; failures are returned without retry.
func (c *Client) execute(ctx context.Context, call *rest.Call, method, path string, payload []byte, withBody bool, ro rest.RequestOptions) (*rest.User, int, error) {
	req, err := c.buildRequest(ctx, call, method, path, payload, withBody, ro)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, rest.NewTransportError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, rest.NewTransportError(ctx, fmt.Errorf("read response body: %w", err))
	}
	if classErr := rest.ClassifyStatusCode(resp.StatusCode, data); classErr != nil {
		return nil, resp.StatusCode, classErr
	}

	user, err := rest.DecodeUser(resp.StatusCode, data, c.config.ValidateResponses)
	return user, resp.StatusCode, err
}

func (c *Client) buildRequest(ctx context.Context, call *rest.Call, method, path string, payload []byte, withBody bool, ro rest.RequestOptions) (*http.Request, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rest.ResolveURL(c.config.BaseURL, path), body)
	if err != nil {
		return nil, rest.NewValidationError(fmt.Sprintf("create request: %v", err))
	}

	var contentType map[string]string
	if withBody {
		contentType = map[string]string{rest.HeaderContentType: rest.ContentTypeJSON}
	}
	headers := rest.MergeHeaders(
		c.config.Headers,
		map[string]string{
			rest.HeaderUserAgent: c.config.UserAgent,
			rest.HeaderRequestID: call.RequestID(),
		},
		requestInitHeaders(ro),
		contentType,
		ro.Headers,
	)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req, nil
}
