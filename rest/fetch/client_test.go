package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/rest"
	"github.com/kbukum/restkit/rest/resttest"
	"github.com/kbukum/restkit/security"
)

func newClient(t *testing.T, baseURL string, mutate ...func(*rest.Config)) *Client {
	t.Helper()
	cfg := rest.Config{BaseURL: baseURL}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := New(cfg, WithLogger(logger.Nop()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func TestGet_NoOptions(t *testing.T) {
	srv := resttest.NewServer(t)
	c := newClient(t, srv.URL)

	user, err := c.Get(context.Background(), "/me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(resttest.DefaultUser, *user); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}

	if srv.Hits() != 1 {
		t.Fatalf("expected exactly 1 request, got %d", srv.Hits())
	}
	req := srv.Last(t)
	if req.Method != http.MethodGet {
		t.Errorf("expected GET, got %s", req.Method)
	}
	if req.Path != "/me" {
		t.Errorf("expected /me, got %s", req.Path)
	}
	if len(req.Body) != 0 {
		t.Errorf("expected no body, got %q", req.Body)
	}
	if ct := req.Header.Get("Content-Type"); ct != "" {
		t.Errorf("expected no Content-Type on GET, got %q", ct)
	}
	if req.Header.Get(rest.HeaderRequestID) == "" {
		t.Error("expected X-Request-ID header")
	}
	if !strings.HasPrefix(req.Header.Get("User-Agent"), "restkit/") {
		t.Errorf("expected restkit user agent, got %q", req.Header.Get("User-Agent"))
	}
}

func TestPost_ObjectBody(t *testing.T) {
	srv := resttest.NewServer(t)
	c := newClient(t, srv.URL)

	body := map[string]any{"zeta": 1, "alpha": []string{"a", "b"}, "name": "Bob"}
	if _, err := c.Post(context.Background(), "/users/new", body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want, _ := json.Marshal(body)
	req := srv.Last(t)
	if req.Method != http.MethodPost {
		t.Errorf("expected POST, got %s", req.Method)
	}
	if string(req.Body) != string(want) {
		t.Errorf("expected body %s, got %s", want, req.Body)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}
}

func TestPost_StringBodyVerbatim(t *testing.T) {
	srv := resttest.NewServer(t)
	c := newClient(t, srv.URL)

	raw := `{"already":"encoded",  "spacing":true}`
	if _, err := c.Post(context.Background(), "/users/new", raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := srv.Last(t)
	if string(req.Body) != raw {
		t.Errorf("expected body to be sent verbatim, got %q", req.Body)
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected default Content-Type, got %q", ct)
	}
}

func TestPost_CallerContentTypeWins(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"canonical key", "Content-Type"},
		{"lower-case key", "content-type"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := resttest.NewServer(t)
			c := newClient(t, srv.URL)

			_, err := c.Post(context.Background(), "/users/new", "plain words",
				rest.WithHeader(tc.key, "text/plain"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			req := srv.Last(t)
			if got := req.Header.Values("Content-Type"); len(got) != 1 || got[0] != "text/plain" {
				t.Errorf("expected single Content-Type text/plain, got %v", got)
			}
		})
	}
}

func TestHeaderPrecedence(t *testing.T) {
	srv := resttest.NewServer(t)
	c := newClient(t, srv.URL, func(cfg *rest.Config) {
		cfg.Headers = map[string]string{"X-Tenant": "default", "X-Keep": "yes"}
	})

	opts := rest.WithHeaders(map[string]string{"x-tenant": "caller", "Cache-Control": "max-age=5"})
	if _, err := c.Get(context.Background(), "/me", opts, rest.WithCache(rest.CacheNoStore)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := srv.Last(t)
	if got := req.Header.Get("X-Tenant"); got != "caller" {
		t.Errorf("expected caller header to win, got %q", got)
	}
	if got := req.Header.Get("X-Keep"); got != "yes" {
		t.Errorf("expected default header, got %q", got)
	}
	if got := req.Header.Get("Cache-Control"); got != "max-age=5" {
		t.Errorf("expected caller Cache-Control to beat cache option, got %q", got)
	}
}

func TestRequestInit_ModeAndCache(t *testing.T) {
	tests := []struct {
		name       string
		opts       []rest.RequestOption
		wantMode   string
		wantCache  string
		wantPragma string
	}{
		{"unset", nil, "", "", ""},
		{"cors no-store", []rest.RequestOption{rest.WithMode(rest.ModeCORS), rest.WithCache(rest.CacheNoStore)}, "cors", "no-store", ""},
		{"same-origin reload", []rest.RequestOption{rest.WithMode(rest.ModeSameOrigin), rest.WithCache(rest.CacheReload)}, "same-origin", "no-cache", "no-cache"},
		{"no-cors force-cache", []rest.RequestOption{rest.WithMode(rest.ModeNoCORS), rest.WithCache(rest.CacheForceCache)}, "no-cors", "max-stale", ""},
		{"default cache", []rest.RequestOption{rest.WithCache(rest.CacheDefault)}, "", "", ""},
		{"no-cache", []rest.RequestOption{rest.WithCache(rest.CacheNoCache)}, "", "no-cache", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := resttest.NewServer(t)
			c := newClient(t, srv.URL)

			if _, err := c.Get(context.Background(), "/me", tc.opts...); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			req := srv.Last(t)
			if got := req.Header.Get(HeaderFetchMode); got != tc.wantMode {
				t.Errorf("Sec-Fetch-Mode = %q, want %q", got, tc.wantMode)
			}
			if got := req.Header.Get(HeaderCacheControl); got != tc.wantCache {
				t.Errorf("Cache-Control = %q, want %q", got, tc.wantCache)
			}
			if got := req.Header.Get(HeaderPragma); got != tc.wantPragma {
				t.Errorf("Pragma = %q, want %q", got, tc.wantPragma)
			}
		})
	}
}

func TestInvalidOptionsRejectedBeforeSending(t *testing.T) {
	srv := resttest.NewServer(t)
	c := newClient(t, srv.URL)

	_, err := c.Get(context.Background(), "/me", rest.WithMode("navigate"))
	if !rest.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = c.Post(context.Background(), "/users/new", nil, rest.WithCache("only-if-cached"))
	if !rest.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = c.Get(context.Background(), "")
	if !rest.IsValidation(err) {
		t.Fatalf("expected validation error for empty path, got %v", err)
	}
	if srv.Hits() != 0 {
		t.Errorf("expected no requests, got %d", srv.Hits())
	}
}

func TestTransportFailurePropagates(t *testing.T) {
	c := newClient(t, resttest.Unreachable(t))

	_, err := c.Get(context.Background(), "/me")
	if err == nil {
		t.Fatal("expected error")
	}
	if !rest.IsConnection(err) {
		t.Errorf("expected connection error, got %v", err)
	}

	_, err = c.Post(context.Background(), "/login", map[string]string{"username": "u"})
	if !rest.IsTransport(err) {
		t.Errorf("expected transport error, got %v", err)
	}
}

type countingTransport struct {
	calls int
	err   error
}

func (c *countingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	c.calls++
	return nil, c.err
}

func TestTransportFailure_NoRetry(t *testing.T) {
	rt := &countingTransport{err: errors.New("network unreachable")}
	c, err := New(rest.Config{BaseURL: "http://api.invalid"}, WithTransport(rt), WithLogger(logger.Nop()))
	if err != nil {
		t.Fatal(err)
	}

	_, err = c.Get(context.Background(), "/me")
	if !rest.IsConnection(err) {
		t.Fatalf("expected connection error, got %v", err)
	}
	if !strings.Contains(err.Error(), "network unreachable") {
		t.Errorf("expected underlying cause in message, got %v", err)
	}
	if rt.calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", rt.calls)
	}
}

func TestTimeout(t *testing.T) {
	srv := resttest.NewServer(t)
	c := newClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := c.Get(ctx, "/me")
	if !rest.IsTimeout(err) {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusUnauthorized, rest.IsAuth},
		{http.StatusNotFound, rest.IsNotFound},
		{http.StatusBadRequest, rest.IsValidation},
		{http.StatusBadGateway, rest.IsServerError},
	}
	for _, tc := range tests {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			srv := resttest.NewServer(t, resttest.WithResponse(tc.status, []byte(`{"error":"nope"}`)))
			c := newClient(t, srv.URL)

			_, err := c.Get(context.Background(), "/me")
			if !tc.check(err) {
				t.Fatalf("unexpected error classification: %v", err)
			}
			if rest.StatusCode(err) != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, rest.StatusCode(err))
			}
			if srv.Hits() != 1 {
				t.Errorf("expected a single attempt, got %d", srv.Hits())
			}
		})
	}
}

func TestMalformedBody(t *testing.T) {
	srv := resttest.NewServer(t, resttest.WithResponse(http.StatusOK, []byte(`{"name":`)))
	c := newClient(t, srv.URL)

	_, err := c.Get(context.Background(), "/me")
	if !rest.IsDecode(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestResponseValidation(t *testing.T) {
	body := []byte(`{"name":"Eve","email":"not-an-email"}`)

	t.Run("parsed as-is by default", func(t *testing.T) {
		srv := resttest.NewServer(t, resttest.WithResponse(http.StatusOK, body))
		c := newClient(t, srv.URL)

		user, err := c.Get(context.Background(), "/me")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Email != "not-an-email" {
			t.Errorf("expected raw email, got %q", user.Email)
		}
	})

	t.Run("validate responses", func(t *testing.T) {
		srv := resttest.NewServer(t, resttest.WithResponse(http.StatusOK, body))
		c := newClient(t, srv.URL, func(cfg *rest.Config) { cfg.ValidateResponses = true })

		_, err := c.Get(context.Background(), "/me")
		if !rest.IsInvalidResponse(err) {
			t.Fatalf("expected invalid response error, got %v", err)
		}
	})
}

func TestNewInvalidConfig(t *testing.T) {
	if _, err := New(rest.Config{BaseURL: "ftp://example.com"}); err == nil {
		t.Error("expected error for non-http base url")
	}
}

func TestName(t *testing.T) {
	c := newClient(t, "http://localhost")
	if c.Name() != TransportName {
		t.Errorf("expected %q, got %q", TransportName, c.Name())
	}
	named := newClient(t, "http://localhost", func(cfg *rest.Config) { cfg.Name = "primary" })
	if named.Name() != "primary" {
		t.Errorf("expected configured name, got %q", named.Name())
	}
}

func TestTLS(t *testing.T) {
	srv := resttest.NewServer(t, resttest.WithTLS())

	untrusted := newClient(t, srv.URL)
	if _, err := untrusted.Get(context.Background(), "/me"); !rest.IsConnection(err) {
		t.Errorf("expected certificate failure as connection error, got %v", err)
	}

	trusted := newClient(t, srv.URL, func(cfg *rest.Config) {
		cfg.TLS = &security.TLSConfig{CAFile: srv.CAFile(t)}
	})
	if _, err := trusted.Get(context.Background(), "/me"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.Hits() != 1 {
		t.Errorf("expected only the trusted request to arrive, got %d", srv.Hits())
	}
}
