package fetch

import "github.com/kbukum/restkit/rest"

// Request-init header names.
const (
	HeaderFetchMode    = "Sec-Fetch-Mode"
	HeaderCacheControl = "Cache-Control"
	HeaderPragma       = "Pragma"
)

// requestInitHeaders translates mode and cache into the headers a fetch
// request would carry. Unset or default values produce no headers.
func requestInitHeaders(ro rest.RequestOptions) map[string]string {
	h := make(map[string]string, 3)
	if ro.Mode != "" {
		h[HeaderFetchMode] = string(ro.Mode)
	}
	switch ro.Cache {
	case rest.CacheNoStore:
		h[HeaderCacheControl] = "no-store"
	case rest.CacheNoCache:
		h[HeaderCacheControl] = "no-cache"
	case rest.CacheReload:
		h[HeaderCacheControl] = "no-cache"
		h[HeaderPragma] = "no-cache"
	case rest.CacheForceCache:
		h[HeaderCacheControl] = "max-stale"
	}
	return h
}
