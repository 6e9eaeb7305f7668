package app

import (
	"context"

	"bluecherry-cli/internal/router"
	"bluecherry-cli/pkg/models"
)

// HandleNotification routes one push payload.
func (a *App) HandleNotification(ctx context.Context, p models.NotificationPayload) (router.Decision, error) {
	return a.Router.Handle(ctx, p)
}

// RefreshToken registers token with every stored profile. It returns the
// number of profiles that failed.
func (a *App) RefreshToken(ctx context.Context, token string) (int, error) {
	if _, err := a.RefreshAccountList(ctx); err != nil {
		return 0, err
	}
	return len(a.Router.RefreshToken(ctx, token)), nil
}
