package restyclient

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

func TestGet_ReturnsUser(t *testing.T) {
	want := rest.User{
		Name:    "Grace Hopper",
		Email:   "grace@example.com",
		Friends: []rest.User{{Name: "Ada Lovelace", Email: "ada@example.com"}},
	}
	srv := resttest.NewServer(t, resttest.WithUser(want))
	c := newClient(t, srv.URL)

	user, err := c.Get(context.Background(), "/me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(want, *user); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}

	if srv.Hits() != 1 {
		t.Fatalf("expected exactly 1 request, got %d", srv.Hits())
	}
	req := srv.Last(t)
	if req.Method != http.MethodGet || req.Path != "/me" {
		t.Errorf("expected GET /me, got %s %s", req.Method, req.Path)
	}
	if len(req.Body) != 0 {
		t.Errorf("expected no body, got %q", req.Body)
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

	body := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{"u", "p"}
	if _, err := c.Post(context.Background(), "/login", body); err != nil {
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

	raw := `{"username":"u",   "password":"p"}`
	if _, err := c.Post(context.Background(), "/login", raw); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := srv.Last(t).Body; string(got) != raw {
		t.Errorf("expected body to be sent verbatim, got %q", got)
	}
}

func TestPost_CallerContentTypeWins(t *testing.T) {
	srv := resttest.NewServer(t)
	c := newClient(t, srv.URL)

	_, err := c.Post(context.Background(), "/users/new", "plain words",
		rest.WithHeader("content-type", "text/plain"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := srv.Last(t).Header.Values("Content-Type"); len(got) != 1 || got[0] != "text/plain" {
		t.Errorf("expected single Content-Type text/plain, got %v", got)
	}
}

func TestHeadersPassThrough(t *testing.T) {
	srv := resttest.NewServer(t)
	c := newClient(t, srv.URL, func(cfg *rest.Config) {
		cfg.Headers = map[string]string{"X-Tenant": "default", "X-Keep": "yes"}
	})

	if _, err := c.Get(context.Background(), "/me", rest.WithHeader("x-tenant", "caller")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	req := srv.Last(t)
	if got := req.Header.Get("X-Tenant"); got != "caller" {
		t.Errorf("expected caller header to win, got %q", got)
	}
	if got := req.Header.Get("X-Keep"); got != "yes" {
		t.Errorf("expected default header, got %q", got)
	}
}

func TestModeAndCacheIgnored(t *testing.T) {
	srv := resttest.NewServer(t)
	c := newClient(t, srv.URL)

	user, err := c.Get(context.Background(), "/me",
		rest.WithMode(rest.ModeCORS), rest.WithCache(rest.CacheNoStore))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff(resttest.DefaultUser, *user); diff != "" {
		t.Errorf("user mismatch (-want +got):\n%s", diff)
	}
	req := srv.Last(t)
	for _, h := range []string{"Sec-Fetch-Mode", "Cache-Control", "Pragma"} {
		if got := req.Header.Get(h); got != "" {
			t.Errorf("expected no %s header, got %q", h, got)
		}
	}
}

func TestInvalidOptionsRejectedBeforeSending(t *testing.T) {
	srv := resttest.NewServer(t)
	c := newClient(t, srv.URL)

	if _, err := c.Get(context.Background(), "/me", rest.WithCache("bogus")); !rest.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := c.Post(context.Background(), "/login", func() {}); !rest.IsValidation(err) {
		t.Fatalf("expected validation error for unencodable body, got %v", err)
	}
	if srv.Hits() != 0 {
		t.Errorf("expected no requests, got %d", srv.Hits())
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

	_, err = c.Post(context.Background(), "/login", map[string]string{"username": "u"})
	if !rest.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "network unreachable") {
		t.Errorf("expected underlying cause in message, got %v", err)
	}
	if rt.calls != 1 {
		t.Errorf("expected exactly one attempt, got %d", rt.calls)
	}
}

func TestUnreachable(t *testing.T) {
	c := newClient(t, resttest.Unreachable(t))

	if _, err := c.Get(context.Background(), "/me"); !rest.IsConnection(err) {
		t.Errorf("expected connection error, got %v", err)
	}
}

func TestTimeout(t *testing.T) {
	srv := resttest.NewServer(t)
	c := newClient(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	if _, err := c.Get(ctx, "/me"); !rest.IsTimeout(err) {
		t.Errorf("expected timeout error, got %v", err)
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusForbidden, rest.IsAuth},
		{http.StatusNotFound, rest.IsNotFound},
		{http.StatusUnprocessableEntity, rest.IsValidation},
		{http.StatusServiceUnavailable, rest.IsServerError},
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
	srv := resttest.NewServer(t, resttest.WithResponse(http.StatusOK, []byte(`not json`)))
	c := newClient(t, srv.URL)

	if _, err := c.Get(context.Background(), "/me"); !rest.IsDecode(err) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestResponseValidation(t *testing.T) {
	srv := resttest.NewServer(t, resttest.WithResponse(http.StatusOK, []byte(`{"email":"x@example.com"}`)))

	user, err := newClient(t, srv.URL).Get(context.Background(), "/me")
	if err != nil {
		t.Fatalf("expected unvalidated decode by default, got %v", err)
	}
	if user.Name != "" || user.Email != "x@example.com" {
		t.Errorf("unexpected user %+v", user)
	}

	c := newClient(t, srv.URL, func(cfg *rest.Config) { cfg.ValidateResponses = true })
	if _, err := c.Get(context.Background(), "/me"); !rest.IsInvalidResponse(err) {
		t.Fatalf("expected invalid response error, got %v", err)
	}
}

func TestName(t *testing.T) {
	c := newClient(t, "http://localhost")
	if c.Name() != TransportName {
		t.Errorf("expected %q, got %q", TransportName, c.Name())
	}
}

func TestRestyLogger(t *testing.T) {
	l := &restyLogger{log: logger.Nop()}
	l.Errorf("e %d", 1)
	l.Warnf("w %s", "x")
	l.Debugf("d")
}

func TestTLS(t *testing.T) {
	srv := resttest.NewServer(t, resttest.WithTLS())
	c := newClient(t, srv.URL, func(cfg *rest.Config) {
		cfg.TLS = &security.TLSConfig{CAFile: srv.CAFile(t)}
	})

	user, err := c.Get(context.Background(), "/me")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.Email != resttest.DefaultUser.Email {
		t.Errorf("unexpected user %+v", user)
	}
}
