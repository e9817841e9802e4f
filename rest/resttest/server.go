// Package resttest provides a fake user API for exercising rest.Client
// adapters. Every request is recorded so tests can assert on exactly what
// went over the wire.
package resttest

import (
	"bytes"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/restkit/rest"
)

// RecordedRequest is one request as the server received it.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
	// ReadErr is set when the body could not be read in full. Body then holds
	// the bytes received before the failure and the request gets a 400.
	ReadErr error
}

// LoginRequest is the body accepted by POST /login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Server is a gin-backed fake API serving:
//
//	POST /login      -> configured user (400 on malformed credentials)
//	GET  /me         -> configured user
//	ANY  /users/*    -> configured user
//
// Anything else returns 404.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []RecordedRequest
	user     rest.User
	status   int
	raw      []byte
	tls      bool
}

// Option configures the fake server.
type Option func(*Server)

// WithUser sets the user returned on success.
func WithUser(u rest.User) Option {
	return func(s *Server) { s.user = u }
}

// WithResponse makes every route reply with status and a raw body instead of
// the configured user.
func WithResponse(status int, body []byte) Option {
	return func(s *Server) {
		s.status = status
		s.raw = body
	}
}

// WithTLS serves over HTTPS with a self-signed certificate. Use CAFile to
// trust it.
func WithTLS() Option {
	return func(s *Server) { s.tls = true }
}

// DefaultUser is returned when no WithUser option is given.
var DefaultUser = rest.User{Name: "Ada Lovelace", Email: "ada@example.com"}

// NewServer starts a fake API and closes it when the test ends.
func NewServer(t testing.TB, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{user: DefaultUser}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(s.record, s.override)
	r.POST("/login", s.login)
	r.GET("/me", s.respondUser)
	r.Any("/users/*rest", s.respondUser)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	s.Server = httptest.NewUnstartedServer(r)
	if s.tls {
		s.StartTLS()
	} else {
		s.Start()
	}
	t.Cleanup(s.Close)
	return s
}

// CAFile writes the server certificate as PEM and returns its path.
func (s *Server) CAFile(t testing.TB) string {
	t.Helper()
	cert := s.Certificate()
	if cert == nil {
		t.Fatal("resttest: server is not using TLS")
	}
	path := filepath.Join(t.TempDir(), "ca.pem")
	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("resttest: write ca file: %v", err)
	}
	return path
}

// Requests returns a copy of every recorded request in arrival order.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// Hits returns the number of requests received.
func (s *Server) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Last returns the most recent request. It fails the test if there is none.
func (s *Server) Last(t testing.TB) RecordedRequest {
	t.Helper()
	reqs := s.Requests()
	if len(reqs) == 0 {
		t.Fatal("resttest: no requests recorded")
	}
	return reqs[len(reqs)-1]
}

func (s *Server) record(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method:  c.Request.Method,
		Path:    c.Request.URL.Path,
		Header:  c.Request.Header.Clone(),
		Body:    body,
		ReadErr: err,
	})
	s.mu.Unlock()

	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "reading body: " + err.Error()})
		return
	}
	c.Next()
}

func (s *Server) override(c *gin.Context) {
	if s.status == 0 {
		c.Next()
		return
	}
	c.Data(s.status, rest.ContentTypeJSON, s.raw)
	c.Abort()
}

func (s *Server) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.respondUser(c)
}

func (s *Server) respondUser(c *gin.Context) {
	c.JSON(http.StatusOK, s.user)
}

// Unreachable returns a base URL on which nothing is listening.
func Unreachable(t testing.TB) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}
