// Package app owns the session and wires the account store, the credential
// gateway and the notification router into the flows the commands run.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"bluecherry-cli/internal/auth"
	"bluecherry-cli/internal/client"
	"bluecherry-cli/internal/router"
	"bluecherry-cli/internal/session"
	"bluecherry-cli/internal/store"
	"bluecherry-cli/internal/toast"
	"bluecherry-cli/pkg/models"
)

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrAuthFailed     = errors.New("authentication failed")
	ErrUnknownAccount = errors.New("unknown account")
	ErrUnknownDevice  = errors.New("unknown or unusable device")
)

type Options struct {
	KV store.KV
	// Client is the template for every API client; BaseURL is ignored.
	Client    client.ClientConfig
	Toasts    toast.Notifier
	Navigator router.Navigator
	Router    router.Config
	Logger    zerolog.Logger
}

type App struct {
	Session   *session.Manager
	Accounts  *store.AccountStore
	Gateway   *auth.Gateway
	Router    *router.Router
	Registrar router.ServerRegistrar

	toasts toast.Notifier
	logger zerolog.Logger
}

func New(opts Options) *App {
	if opts.Toasts == nil {
		opts.Toasts = toast.Discard{}
	}
	logger := opts.Logger.With().Str("component", "app").Logger()

	template := opts.Client
	gw := auth.NewGateway(func(baseURL string) *client.BluecherryClient {
		cfg := template
		cfg.BaseURL = baseURL
		return client.New(cfg)
	}, opts.Toasts, opts.Logger)

	a := &App{
		Session:  session.NewManager(opts.Logger),
		Accounts: store.NewAccountStore(opts.KV, opts.Logger),
		Gateway:  gw,
		Registrar: router.ServerRegistrar{
			Client: func(baseURL string) router.TokenClient { return gw.Client(baseURL) },
		},
		toasts: opts.Toasts,
		logger: logger,
	}

	nav := opts.Navigator
	if nav == nil {
		nav = LogNavigator{Logger: opts.Logger}
	}
	a.Router = router.New(a.Session, a.Accounts, gw, nav, a.Registrar, opts.Toasts, opts.Router, opts.Logger)
	return a
}

// Close releases the store backend.
func (a *App) Close() error {
	return a.Accounts.Close()
}

func (a *App) reportStorage(err error) error {
	var se *store.StorageError
	if errors.As(err, &se) {
		a.toasts.Show(toast.Message{Kind: toast.Error, Title: "Storage Error", Body: se.Error()})
	}
	return err
}

// RefreshAccountList reloads the stored profiles into the session.
func (a *App) RefreshAccountList(ctx context.Context) ([]models.AccountEntry, error) {
	list, err := a.Accounts.List(ctx)
	if err != nil {
		return nil, a.reportStorage(err)
	}
	if _, err := a.Session.Dispatch(session.UpdateAccountList{Accounts: list}); err != nil {
		return nil, err
	}
	return list, nil
}

// Bootstrap loads the profiles and resumes the previously active one. A
// failed login leaves the session logged out; it is not an error.
func (a *App) Bootstrap(ctx context.Context) error {
	list, err := a.RefreshAccountList(ctx)
	if err != nil {
		return err
	}
	if a.Session.Snapshot().LoggedIn() {
		return nil
	}

	entry, err := a.Accounts.ActiveEntry(ctx, list)
	if err != nil {
		return a.reportStorage(err)
	}
	if entry == nil {
		a.logger.Debug().Msg("no active account to resume")
		return nil
	}

	if err := a.login(ctx, entry.ID, entry.Record, auth.DefaultSuccessMessage, ""); err != nil {
		if errors.Is(err, ErrAuthFailed) {
			return nil
		}
		return err
	}
	return nil
}

// login authenticates rec, records a changed server uuid, makes id active and
// starts a new session.
func (a *App) login(ctx context.Context, id string, rec models.AccountRecord, successMessage, targetDevice string) error {
	serverUUID, ok := a.Gateway.AuthenticateWithMessage(ctx, rec.BaseURL(), rec.Login, rec.Password, successMessage)
	if !ok {
		return ErrAuthFailed
	}

	if serverUUID != "" && serverUUID != rec.ServerUUID {
		rec.ServerUUID = serverUUID
		if err := a.Accounts.Put(ctx, id, rec); err != nil {
			return a.reportStorage(err)
		}
	}
	if err := a.Accounts.SetActive(ctx, id); err != nil {
		return a.reportStorage(err)
	}

	rec.ID = id
	if _, err := a.Session.Dispatch(session.Login{Account: rec, TargetDevice: targetDevice}); err != nil {
		return err
	}
	_, err := a.RefreshAccountList(ctx)
	return err
}

// Connect adds a new server profile, logs in and makes it active.
func (a *App) Connect(ctx context.Context, rec models.AccountRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}

	serverUUID, ok := a.Gateway.Authenticate(ctx, rec.BaseURL(), rec.Login, rec.Password)
	if !ok {
		return "", ErrAuthFailed
	}

	id, err := a.Accounts.FreshID(ctx, store.DefaultFreshIDAttempts)
	if err != nil {
		return "", a.reportStorage(err)
	}
	rec.ServerUUID = serverUUID
	if err := a.Accounts.Put(ctx, id, rec); err != nil {
		return "", a.reportStorage(err)
	}
	if err := a.Accounts.SetActive(ctx, id); err != nil {
		return "", a.reportStorage(err)
	}

	rec.ID = id
	if _, err := a.Session.Dispatch(session.Login{Account: rec.Upgrade()}); err != nil {
		return "", err
	}
	if _, err := a.RefreshAccountList(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateAccount re-checks the credentials and saves the edited profile. If it
// is the active profile the session restarts with the new values.
func (a *App) UpdateAccount(ctx context.Context, id string, rec models.AccountRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	existing, err := a.Accounts.Get(ctx, id)
	if err != nil {
		return a.reportStorage(err)
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}

	serverUUID, ok := a.Gateway.AuthenticateWithMessage(ctx, rec.BaseURL(), rec.Login, rec.Password, "Credentials OK")
	if !ok {
		return ErrAuthFailed
	}
	if serverUUID != "" {
		rec.ServerUUID = serverUUID
	}
	if err := a.Accounts.Put(ctx, id, rec); err != nil {
		return a.reportStorage(err)
	}

	if active := a.Session.Snapshot().ActiveAccount; active != nil && active.ID == id {
		rec.ID = id
		if _, err := a.Session.Dispatch(session.Login{Account: rec.Upgrade()}); err != nil {
			return err
		}
	}
	_, err = a.RefreshAccountList(ctx)
	return err
}

// RemoveAccount deletes a profile; removing the active one logs out.
func (a *App) RemoveAccount(ctx context.Context, id string) (bool, error) {
	ok, err := a.Accounts.Remove(ctx, id)
	if err != nil {
		return false, a.reportStorage(err)
	}
	if !ok {
		return false, nil
	}

	if active := a.Session.Snapshot().ActiveAccount; active != nil && active.ID == id {
		if _, err := a.Session.Dispatch(session.Logout{}); err != nil {
			return true, err
		}
	}
	_, err = a.RefreshAccountList(ctx)
	return true, err
}

// SwitchAccount logs into a stored profile and makes it active.
func (a *App) SwitchAccount(ctx context.Context, id string) error {
	rec, err := a.Accounts.Get(ctx, id)
	if err != nil {
		return a.reportStorage(err)
	}
	if rec == nil {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, id)
	}
	return a.login(ctx, id, *rec, auth.DefaultSuccessMessage, "")
}

// Logout clears the active profile and resets the session.
func (a *App) Logout(ctx context.Context) (string, error) {
	prev, _, err := a.Accounts.ClearActive(ctx)
	if err != nil {
		return "", a.reportStorage(err)
	}
	if _, err := a.Session.Dispatch(session.Logout{}); err != nil {
		return prev, err
	}
	_, err = a.RefreshAccountList(ctx)
	return prev, err
}

// Active returns the active profile.
func (a *App) Active() (models.AccountRecord, error) {
	acc := a.Session.Snapshot().ActiveAccount
	if acc == nil {
		return models.AccountRecord{}, ErrNotLoggedIn
	}
	return *acc, nil
}

// Client returns the authenticated API client of the active profile.
func (a *App) Client() (*client.BluecherryClient, models.AccountRecord, error) {
	acc, err := a.Active()
	if err != nil {
		return nil, acc, err
	}
	return a.Gateway.Client(acc.BaseURL()), acc, nil
}
