package rest

import (
	"fmt"
	"strings"
)

// Mode mirrors the fetch request mode.
type Mode string

const (
	ModeCORS       Mode = "cors"
	ModeNoCORS     Mode = "no-cors"
	ModeSameOrigin Mode = "same-origin"
)

// Valid reports whether m is unset or one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case "", ModeCORS, ModeNoCORS, ModeSameOrigin:
		return true
	}
	return false
}

// CacheMode mirrors the fetch request cache directive.
type CacheMode string

const (
	CacheDefault    CacheMode = "default"
	CacheNoStore    CacheMode = "no-store"
	CacheReload     CacheMode = "reload"
	CacheNoCache    CacheMode = "no-cache"
	CacheForceCache CacheMode = "force-cache"
)

// Valid reports whether c is unset or one of the known cache modes.
func (c CacheMode) Valid() bool {
	switch c {
	case "", CacheDefault, CacheNoStore, CacheReload, CacheNoCache, CacheForceCache:
		return true
	}
	return false
}

// RequestOptions describes how a single request should be sent.
// Adapters read it but never modify it.
type RequestOptions struct {
	// Headers are caller headers. They win over every adapter default.
	Headers map[string]string
	// Mode is the request mode. Empty means unset.
	Mode Mode
	// Cache is the cache directive. Empty means unset.
	Cache CacheMode
}

// RequestOption configures a single request.
type RequestOption func(*RequestOptions)

// WithHeader sets one caller header.
func WithHeader(key, value string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string)
		}
		o.Headers[key] = value
	}
}

// WithHeaders sets several caller headers. The map is copied.
func WithHeaders(headers map[string]string) RequestOption {
	return func(o *RequestOptions) {
		if o.Headers == nil {
			o.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			o.Headers[k] = v
		}
	}
}

// WithMode sets the request mode.
func WithMode(m Mode) RequestOption {
	return func(o *RequestOptions) { o.Mode = m }
}

// WithCache sets the cache directive.
func WithCache(c CacheMode) RequestOption {
	return func(o *RequestOptions) { o.Cache = c }
}

// BuildOptions applies opts to a fresh RequestOptions and validates it.
func BuildOptions(opts ...RequestOption) (RequestOptions, error) {
	var o RequestOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.Validate(); err != nil {
		return RequestOptions{}, err
	}
	return o, nil
}

// Validate checks that Mode and Cache, when set, come from their enumerations.
func (o RequestOptions) Validate() error {
	if !o.Mode.Valid() {
		return NewValidationError(fmt.Sprintf("mode must be one of [cors, no-cors, same-origin] (got: %s)", o.Mode))
	}
	if !o.Cache.Valid() {
		return NewValidationError(fmt.Sprintf("cache must be one of [%s] (got: %s)",
			strings.Join([]string{"default", "no-store", "reload", "no-cache", "force-cache"}, ", "), o.Cache))
	}
	return nil
}
