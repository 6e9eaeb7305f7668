package app

import (
	"context"

	"bluecherry-cli/pkg/models"
)

// Events returns the most recent entries of the active server's event feed.
func (a *App) Events(ctx context.Context, limit int) (models.EventFeed, error) {
	c, _, err := a.Client()
	if err != nil {
		return models.EventFeed{}, err
	}
	return c.GetEvents(ctx, limit)
}

// DownloadRecording saves the media of an event to path.
func (a *App) DownloadRecording(ctx context.Context, mediaID, path string) (int64, error) {
	c, _, err := a.Client()
	if err != nil {
		return 0, err
	}
	return c.DownloadRecording(ctx, mediaID, path)
}
