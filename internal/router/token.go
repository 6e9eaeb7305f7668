package router

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"bluecherry-cli/internal/toast"
	"bluecherry-cli/pkg/models"
)

// NotificationDeliveryError records a token registration failure for one
// account.
type NotificationDeliveryError struct {
	AccountID string
	Err       error
}

func (e *NotificationDeliveryError) Error() string {
	return fmt.Sprintf("account %s: token registration failed: %v", e.AccountID, e.Err)
}

func (e *NotificationDeliveryError) Unwrap() error { return e.Err }

// RefreshToken registers token with every account in the session's account
// list. Failures never abort the others; they are reported as one aggregate
// toast and returned.
func (r *Router) RefreshToken(ctx context.Context, token string) []*NotificationDeliveryError {
	accounts := r.session.Snapshot().AccountList

	var (
		mu     sync.Mutex
		failed []*NotificationDeliveryError
	)

	g := new(errgroup.Group)
	g.SetLimit(r.cfg.RefreshConcurrency)
	for _, entry := range accounts {
		g.Go(func() error {
			if err := r.registrar.RegisterToken(ctx, entry, token); err != nil {
				mu.Lock()
				failed = append(failed, &NotificationDeliveryError{AccountID: entry.ID, Err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, f := range failed {
		r.logger.Warn().Err(f.Err).Str("account_id", f.AccountID).Msg("token registration failed")
	}
	if len(failed) > 0 {
		r.toasts.Show(toast.Message{
			Kind:  toast.Error,
			Title: "Notification System",
			Body:  fmt.Sprintf("%d account(s) could not update notification token", len(failed)),
		})
	}
	return failed
}

// ServerRegistrar implements TokenRegistrar against the real notification
// API: look up the endpoint in the server's mobile config, then store-token.
type ServerRegistrar struct {
	Client func(baseURL string) TokenClient
}

// TokenClient is the part of the API client used for token registration.
type TokenClient interface {
	GetMobileConfig(ctx context.Context) (models.MobileConfig, error)
	StoreToken(ctx context.Context, endpoint string, payload models.TokenPayload) error
	RemoveToken(ctx context.Context, endpoint string, payload models.TokenPayload) error
}

func (s ServerRegistrar) RegisterToken(ctx context.Context, account models.AccountEntry, token string) error {
	c := s.Client(account.Record.BaseURL())
	cfg, err := c.GetMobileConfig(ctx)
	if err != nil {
		return err
	}
	return c.StoreToken(ctx, cfg.NotificationAPIEndpoint, models.TokenPayload{
		ClientID: account.ID,
		ServerID: account.Record.ServerUUID,
		Token:    token,
	})
}

// UnregisterToken removes the account's registration.
func (s ServerRegistrar) UnregisterToken(ctx context.Context, account models.AccountEntry) error {
	c := s.Client(account.Record.BaseURL())
	cfg, err := c.GetMobileConfig(ctx)
	if err != nil {
		return err
	}
	return c.RemoveToken(ctx, cfg.NotificationAPIEndpoint, models.TokenPayload{
		ClientID: account.ID,
		ServerID: account.Record.ServerUUID,
	})
}
