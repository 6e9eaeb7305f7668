// Package push receives notification payloads from a message transport and
// hands them to a handler.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bluecherry-cli/pkg/models"
)

// Handler consumes one decoded payload.
type Handler func(ctx context.Context, p models.NotificationPayload)

// Source delivers payloads until Stop is called.
type Source interface {
	Start(ctx context.Context, h Handler) error
	Stop()
}

var ErrEmptyPayload = errors.New("payload has no serverId or eventType")

// Decode accepts a bare payload or a push message envelope
// {"data": {...}} as sent by the push gateway.
func Decode(body []byte) (models.NotificationPayload, error) {
	var envelope struct {
		Data *models.NotificationPayload `json:"data"`
		models.NotificationPayload
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return models.NotificationPayload{}, fmt.Errorf("decode push payload: %w", err)
	}

	p := envelope.NotificationPayload
	if envelope.Data != nil {
		p = *envelope.Data
	}
	if p.ServerID == "" || p.EventType == "" {
		return p, ErrEmptyPayload
	}
	return p, nil
}
