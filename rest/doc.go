// Package rest defines a transport-agnostic REST client contract and the
// pieces its adapters share: the User model, per-request options, body
// encoding, header merging, response decoding and typed errors.
//
// Two adapters implement the contract:
//
//   - fetch: net/http based; mode and cache options become request headers
//   - restyclient: go-resty based; mode and cache options are ignored
//
// # Usage
//
//	c, err := fetch.New(rest.Config{BaseURL: "https://api.example.com"})
//	if err != nil {
//	    return err
//	}
//	user, err := c.Get(ctx, "/me", rest.WithCache(rest.CacheNoStore))
//
// Every failure is returned as an error. Use errors.As with *rest.Error, or the
// Is* helpers, when the failure kind matters.
package rest
