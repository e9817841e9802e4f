package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Header names and values shared by the adapters.
const (
	HeaderContentType = "Content-Type"
	HeaderUserAgent   = "User-Agent"
	HeaderRequestID   = "X-Request-ID"
	ContentTypeJSON   = "application/json"
)

// CheckPath rejects an empty resource path.
func CheckPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return NewValidationError("path is required")
	}
	return nil
}

// ResolveURL joins baseURL and path. Absolute paths are returned unchanged.
func ResolveURL(baseURL, path string) string {
	if baseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// EncodeBody converts a Post body into its wire payload.
// Strings and byte slices pass through verbatim, nil yields no payload, and
// everything else is JSON-encoded.
func EncodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, NewValidationError(fmt.Sprintf("encode body: %v", err))
		}
		return data, nil
	}
}

// MergeHeaders overlays header maps in order; later maps win on key collision.
// Keys are canonicalised so "content-type" overrides "Content-Type".
// The inputs are not modified.
func MergeHeaders(layers ...map[string]string) map[string]string {
	size := 0
	for _, l := range layers {
		size += len(l)
	}
	merged := make(map[string]string, size)
	for _, l := range layers {
		for k, v := range l {
			merged[http.CanonicalHeaderKey(k)] = v
		}
	}
	return merged
}
