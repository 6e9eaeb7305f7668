package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bluecherry-cli/pkg/models"
)

// GetMobileConfig reads the server's notification API location.
func (c *BluecherryClient) GetMobileConfig(ctx context.Context) (models.MobileConfig, error) {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		Get("/mobile-app-config.json")

	if err != nil {
		return models.MobileConfig{}, &ConnectionError{Op: "get mobile config", Err: err}
	}
	if err := checkStatus("get mobile config", resp); err != nil {
		return models.MobileConfig{}, err
	}

	var cfg models.MobileConfig
	if err := json.Unmarshal(resp.Body(), &cfg); err != nil {
		return models.MobileConfig{}, &ProtocolError{Op: "get mobile config", Detail: "undecodable config", Err: err}
	}
	if cfg.NotificationAPIEndpoint == "" {
		return models.MobileConfig{}, &ProtocolError{Op: "get mobile config", Detail: "notification_api_endpoint missing"}
	}
	return cfg, nil
}

// StoreToken registers a push token with the notification API.
func (c *BluecherryClient) StoreToken(ctx context.Context, endpoint string, payload models.TokenPayload) error {
	return c.postToken(ctx, "store token", endpoint, "/store-token", payload)
}

// RemoveToken unregisters the client from the notification API.
func (c *BluecherryClient) RemoveToken(ctx context.Context, endpoint string, payload models.TokenPayload) error {
	payload.Token = ""
	return c.postToken(ctx, "remove token", endpoint, "/remove-token", payload)
}

// The notification API lives on its own host, so the absolute URL overrides
// the client's base URL.
func (c *BluecherryClient) postToken(ctx context.Context, op, endpoint, path string, payload models.TokenPayload) error {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(strings.TrimRight(endpoint, "/") + path)

	if err != nil {
		return &ConnectionError{Op: op, Err: err}
	}
	if err := checkStatus(op, resp); err != nil {
		return err
	}

	var result models.TokenResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return &ProtocolError{Op: op, Detail: "undecodable response", Err: err}
	}
	if !result.Success {
		return fmt.Errorf("%s: %w: %s", op, ErrTokenRejected, result.Message)
	}
	return nil
}
