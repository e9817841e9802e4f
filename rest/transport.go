package rest

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewTransport returns the round tripper adapters send through: base (or a
// clone of http.DefaultTransport when nil) with cfg.TLS applied, wrapped in
// OpenTelemetry instrumentation.
//
// TLS settings only apply to *http.Transport bases, which are cloned first.
func NewTransport(cfg Config, base http.RoundTripper) (http.RoundTripper, error) {
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	} else if t, ok := base.(*http.Transport); ok && cfg.TLS.Enabled() {
		base = t.Clone()
	}

	if t, ok := base.(*http.Transport); ok {
		if err := cfg.TLS.Apply(t); err != nil {
			return nil, err
		}
	}
	return otelhttp.NewTransport(base), nil
}
