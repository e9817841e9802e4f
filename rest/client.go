package rest

import "context"

// Client is the capability set every transport adapter exposes.
// Implementations must be safe for concurrent use.
type Client interface {
	// Name identifies the adapter, e.g. "fetch" or "resty".
	Name() string
	// Get issues a GET request for path and decodes the response body into a User.
	Get(ctx context.Context, path string, opts ...RequestOption) (*User, error)
	// Post issues a POST request with body and decodes the response body into a User.
	// String and []byte bodies are sent verbatim; other values are JSON-encoded.
	Post(ctx context.Context, path string, body any, opts ...RequestOption) (*User, error)
}
