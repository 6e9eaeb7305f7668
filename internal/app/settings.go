package app

import (
	"context"
	"errors"

	"bluecherry-cli/internal/router"
	"bluecherry-cli/internal/session"
	"bluecherry-cli/internal/toast"
	"bluecherry-cli/pkg/models"
)

var ErrTokenRequired = errors.New("a push token is required to enable notifications")

// Settings are the per-profile preferences. Nil fields are left unchanged.
type Settings struct {
	DateFormat    *string
	Notifications *bool
	// Token is registered with the server when notifications are enabled.
	Token string
}

// UpdateSettings saves the preferences of the active profile. Turning
// notifications on registers the push token with the server and turning them
// off removes the registration; the permission is only saved if that call
// succeeds.
func (a *App) UpdateSettings(ctx context.Context, s Settings) (models.AccountRecord, error) {
	acc, err := a.Active()
	if err != nil {
		return acc, err
	}
	rec := acc

	if s.DateFormat != nil && *s.DateFormat != "" {
		rec.DateFormat = *s.DateFormat
	}

	if s.Notifications != nil && *s.Notifications != acc.NotificationPermissionGranted {
		entry := models.AccountEntry{ID: acc.ID, Record: acc}
		if *s.Notifications {
			if s.Token == "" {
				return acc, ErrTokenRequired
			}
			err = a.Registrar.RegisterToken(ctx, entry, s.Token)
		} else {
			err = a.Registrar.UnregisterToken(ctx, entry)
		}
		if err != nil {
			a.toasts.Show(toast.Message{Kind: toast.Error, Title: "Notification System", Body: err.Error()})
			return acc, &router.NotificationDeliveryError{AccountID: acc.ID, Err: err}
		}
		rec.NotificationPermissionGranted = *s.Notifications
	}

	if err := a.Accounts.Put(ctx, acc.ID, rec); err != nil {
		return acc, a.reportStorage(err)
	}
	if _, err := a.Session.Dispatch(session.Login{Account: rec}); err != nil {
		return acc, err
	}
	if _, err := a.RefreshAccountList(ctx); err != nil {
		return rec, err
	}

	a.toasts.Show(toast.Message{Kind: toast.Success, Title: "Success!", Body: "Settings saved successfully"})
	return rec, nil
}
