// Package app is the caller-facing composition over a rest.Client. It knows
// the user API's routes and payloads but nothing about the transport.
package app

import (
	"context"
	"fmt"

	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/rest"
)

// Routes of the user API.
const (
	PathLogin = "/login"
	PathMe    = "/me"
)

// LoginRequest is the body posted to /login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// App issues user API calls through the adapter it was built with.
// The adapter cannot be changed after construction.
type App struct {
	client rest.Client
	log    *logger.Logger
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger. Defaults to the global logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *App) { a.log = l }
}

// New creates an App bound to client.
func New(client rest.Client, opts ...Option) *App {
	a := &App{client: client}
	for _, opt := range opts {
		opt(a)
	}
	if a.log == nil {
		a.log = logger.WithComponent("app")
	}
	return a
}

// Transport returns the name of the adapter in use.
func (a *App) Transport() string {
	return a.client.Name()
}

// Login posts the credentials to /login and returns the user it yields.
func (a *App) Login(ctx context.Context, username, password string) (*rest.User, error) {
	user, err := a.client.Post(ctx, PathLogin, LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	a.log.Info("logged in", logger.Fields(logger.FieldTransport, a.Transport(), "user", user.Name))
	return user, nil
}

// Me fetches the current user from /me.
func (a *App) Me(ctx context.Context) (*rest.User, error) {
	user, err := a.client.Get(ctx, PathMe)
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return user, nil
}
