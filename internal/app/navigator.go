package app

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"bluecherry-cli/internal/stream"
	"bluecherry-cli/pkg/models"
)

// LogNavigator records the live stream a notification would open.
type LogNavigator struct {
	Logger zerolog.Logger
}

func (n LogNavigator) ShowCamera(_ context.Context, account models.AccountRecord, deviceID string) error {
	uri, err := stream.LiveURI(account, deviceID)
	if err != nil {
		return err
	}
	n.Logger.Info().
		Str("account_id", account.ID).
		Str("device_id", deviceID).
		Str("uri", stream.Redact(uri)).
		Msg("show camera")
	return nil
}

// PrintNavigator writes the live stream address of the camera to Out.
type PrintNavigator struct {
	Out    io.Writer
	Reveal bool
}

func (n PrintNavigator) ShowCamera(_ context.Context, account models.AccountRecord, deviceID string) error {
	uri, err := stream.LiveURI(account, deviceID)
	if err != nil {
		return err
	}
	if !n.Reveal {
		uri = stream.Redact(uri)
	}
	_, err = fmt.Fprintf(n.Out, "%s  device %s  %s\n", account.Name, deviceID, uri)
	return err
}
