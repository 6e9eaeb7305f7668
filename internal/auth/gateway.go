package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"bluecherry-cli/internal/client"
	"bluecherry-cli/internal/toast"
)

const DefaultSuccessMessage = "Connection Successful"

// ClientFactory builds an API client for a base URL.
type ClientFactory func(baseURL string) *client.BluecherryClient

// Gateway issues login requests and turns every outcome into a server uuid
// or false plus a toast. It keeps one client per base URL so the session
// cookie of a successful login is reused by later calls.
type Gateway struct {
	newClient ClientFactory
	toasts    toast.Notifier
	logger    zerolog.Logger

	mu      sync.Mutex
	clients map[string]*client.BluecherryClient
}

func NewGateway(factory ClientFactory, toasts toast.Notifier, logger zerolog.Logger) *Gateway {
	return &Gateway{
		newClient: factory,
		toasts:    toasts,
		logger:    logger.With().Str("component", "auth").Logger(),
		clients:   make(map[string]*client.BluecherryClient),
	}
}

// Client returns the cached client for baseURL, creating it if needed.
func (g *Gateway) Client(baseURL string) *client.BluecherryClient {
	key := strings.TrimRight(baseURL, "/")

	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.clients[key]
	if !ok {
		c = g.newClient(key)
		g.clients[key] = c
	}
	return c
}

// Authenticate makes a single login attempt with the default success message.
func (g *Gateway) Authenticate(ctx context.Context, baseURL, login, password string) (string, bool) {
	return g.AuthenticateWithMessage(ctx, baseURL, login, password, DefaultSuccessMessage)
}

// AuthenticateWithMessage is Authenticate with a caller chosen success toast.
func (g *Gateway) AuthenticateWithMessage(ctx context.Context, baseURL, login, password, successMessage string) (uuid string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error().Interface("panic", r).Str("base_url", baseURL).Msg("login panicked")
			g.toasts.Show(toast.Message{Kind: toast.Error, Title: "Connection Error", Body: "unexpected failure"})
			uuid, ok = "", false
		}
	}()

	uuid, err := g.Client(baseURL).Login(ctx, login, password)
	if err == nil {
		g.logger.Debug().Str("base_url", baseURL).Str("server_uuid", uuid).Msg("login succeeded")
		g.toasts.Show(toast.Message{Kind: toast.Success, Title: successMessage})
		return uuid, true
	}

	g.logger.Warn().Err(err).Str("base_url", baseURL).Msg("login failed")
	g.toasts.Show(failureToast(err))
	return "", false
}

func failureToast(err error) toast.Message {
	var (
		ae *client.AuthError
		ce *client.ConnectionError
		pe *client.ProtocolError
	)
	switch {
	case errors.As(err, &ae):
		return toast.Message{Kind: toast.Error, Title: "Auth Error", Body: ae.Message}
	case errors.As(err, &ce):
		return toast.Message{Kind: toast.Error, Title: "Connection Error", Body: ce.Err.Error()}
	case errors.As(err, &pe):
		return toast.Message{Kind: toast.Error, Title: "Protocol Error", Body: pe.Detail}
	}
	return toast.Message{Kind: toast.Error, Title: "Login Error", Body: err.Error()}
}
