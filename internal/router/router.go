// Package router turns inbound push payloads into in-app actions and keeps
// the push token registered with every configured server.
package router

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"bluecherry-cli/internal/session"
	"bluecherry-cli/internal/toast"
	"bluecherry-cli/pkg/models"
)

// Phase is the router's position in Idle -> Received -> Routed.
type Phase int

const (
	Idle Phase = iota
	Received
	Routed
)

func (p Phase) String() string {
	switch p {
	case Received:
		return "received"
	case Routed:
		return "routed"
	}
	return "idle"
}

// Outcome is what a payload was routed to.
type Outcome int

const (
	// Dropped: no visible effect.
	Dropped Outcome = iota
	// Informational: a toast only.
	Informational
	// Navigate within the current account.
	Navigate
	// SwitchAndNavigate: re-login to the payload's server first.
	SwitchAndNavigate
	// SwitchFailed: the current account was logged out but the target server
	// refused the login.
	SwitchFailed
)

func (o Outcome) String() string {
	switch o {
	case Informational:
		return "informational"
	case Navigate:
		return "navigate"
	case SwitchAndNavigate:
		return "switch_and_navigate"
	case SwitchFailed:
		return "switch_failed"
	}
	return "dropped"
}

func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Decision describes how a payload was handled.
type Decision struct {
	Outcome   Outcome `json:"outcome" yaml:"outcome"`
	AccountID string  `json:"accountId,omitempty" yaml:"accountId,omitempty"`
	DeviceID  string  `json:"deviceId,omitempty" yaml:"deviceId,omitempty"`
	EventType string  `json:"eventType,omitempty" yaml:"eventType,omitempty"`
	Reason    string  `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Accounts is the slice of the account store the router needs.
type Accounts interface {
	List(ctx context.Context) ([]models.AccountEntry, error)
	FindByServerUUID(ctx context.Context, serverUUID string) (*models.AccountEntry, error)
	SetActive(ctx context.Context, id string) error
	ClearActive(ctx context.Context) (string, bool, error)
	Put(ctx context.Context, id string, rec models.AccountRecord) error
}

// Authenticator is the credential gateway.
type Authenticator interface {
	Authenticate(ctx context.Context, baseURL, login, password string) (string, bool)
}

// Navigator opens the camera view of a device in the active account.
type Navigator interface {
	ShowCamera(ctx context.Context, account models.AccountRecord, deviceID string) error
}

// TokenRegistrar stores a push token with the notification API of a server.
type TokenRegistrar interface {
	RegisterToken(ctx context.Context, account models.AccountEntry, token string) error
}

type Config struct {
	// DedupWindow suppresses identical payloads delivered within the window.
	// Zero disables suppression.
	DedupWindow time.Duration
	// RefreshConcurrency bounds parallel token registrations.
	RefreshConcurrency int
}

type Router struct {
	session   *session.Manager
	accounts  Accounts
	auth      Authenticator
	navigator Navigator
	registrar TokenRegistrar
	toasts    toast.Notifier
	cfg       Config
	logger    zerolog.Logger

	seen *lru.Cache[string, time.Time]

	// handled one payload at a time
	mu    sync.Mutex
	phase Phase
}

func New(
	mgr *session.Manager,
	accounts Accounts,
	auth Authenticator,
	navigator Navigator,
	registrar TokenRegistrar,
	toasts toast.Notifier,
	cfg Config,
	logger zerolog.Logger,
) *Router {
	if cfg.RefreshConcurrency <= 0 {
		cfg.RefreshConcurrency = 4
	}
	seen, _ := lru.New[string, time.Time](256)
	return &Router{
		session:   mgr,
		accounts:  accounts,
		auth:      auth,
		navigator: navigator,
		registrar: registrar,
		toasts:    toasts,
		cfg:       cfg,
		logger:    logger.With().Str("component", "router").Logger(),
		seen:      seen,
	}
}

// Phase reports the current phase.
func (r *Router) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Handle routes a single payload. Errors are reported for logging only; the
// user-visible outcome is always carried by the Decision and toasts.
func (r *Router) Handle(ctx context.Context, p models.NotificationPayload) (Decision, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.phase = Received
	defer func() { r.phase = Idle }()

	d, err := r.route(ctx, p)
	r.phase = Routed

	ev := r.logger.Info()
	if err != nil {
		ev = r.logger.Warn().Err(err)
	}
	ev.Str("outcome", d.Outcome.String()).
		Str("server_id", p.ServerID).
		Str("device_id", p.DeviceID).
		Str("event_type", p.EventType).
		Msg("notification routed")
	return d, err
}

func (r *Router) route(ctx context.Context, p models.NotificationPayload) (Decision, error) {
	d := Decision{DeviceID: p.DeviceID, EventType: p.EventType}

	if r.duplicate(p) {
		d.Reason = "duplicate"
		return d, nil
	}

	state := r.session.Snapshot()
	if state.ActiveAccount != nil && state.ActiveAccount.ServerUUID != "" && state.ActiveAccount.ServerUUID == p.ServerID {
		d.AccountID = state.ActiveAccount.ID
		return r.deliver(ctx, d, *state.ActiveAccount, p, Navigate)
	}

	entry, err := r.accounts.FindByServerUUID(ctx, p.ServerID)
	if err != nil {
		d.Reason = "account lookup failed"
		return d, err
	}
	if entry == nil {
		d.Reason = "no account for server"
		return d, nil
	}
	d.AccountID = entry.ID

	return r.switchAccount(ctx, d, *entry, p)
}

// deliver shows the payload in account: a recognized event opens the camera
// and anything else is only a toast.
func (r *Router) deliver(ctx context.Context, d Decision, account models.AccountRecord, p models.NotificationPayload, navigated Outcome) (Decision, error) {
	label, recognized := models.EventTypeLabel(p.EventType)
	if !recognized {
		r.toasts.Show(toast.Message{Kind: toast.Info, Title: p.EventType})
		d.Outcome = Informational
		d.Reason = "unrecognized event type"
		return d, nil
	}

	r.toasts.Show(toast.Message{Kind: toast.Info, Title: label, Body: p.DeviceName})
	d.Outcome = navigated
	if err := r.navigator.ShowCamera(ctx, account, p.DeviceID); err != nil {
		if navigated == Navigate {
			d.Outcome = Informational
		}
		d.Reason = "navigation failed"
		return d, err
	}
	return d, nil
}

func (r *Router) switchAccount(ctx context.Context, d Decision, entry models.AccountEntry, p models.NotificationPayload) (Decision, error) {
	if _, _, err := r.accounts.ClearActive(ctx); err != nil {
		r.toasts.Show(toast.Message{Kind: toast.Error, Title: "Storage Error", Body: err.Error()})
		d.Reason = "logout failed"
		return d, err
	}
	if _, err := r.session.Dispatch(session.Logout{}); err != nil {
		return d, err
	}
	r.reloadAccountList(ctx)

	rec := entry.Record
	serverUUID, ok := r.auth.Authenticate(ctx, rec.BaseURL(), rec.Login, rec.Password)
	if !ok {
		d.Outcome = SwitchFailed
		d.Reason = "re-authentication failed"
		return d, nil
	}

	if serverUUID != "" && serverUUID != rec.ServerUUID {
		rec.ServerUUID = serverUUID
		if err := r.accounts.Put(ctx, entry.ID, rec); err != nil {
			r.logger.Warn().Err(err).Str("account_id", entry.ID).Msg("could not save server uuid")
		}
	}
	if err := r.accounts.SetActive(ctx, entry.ID); err != nil {
		r.toasts.Show(toast.Message{Kind: toast.Error, Title: "Storage Error", Body: err.Error()})
		d.Outcome = SwitchFailed
		d.Reason = "could not persist active account"
		return d, err
	}

	target := ""
	if _, recognized := models.EventTypeLabel(p.EventType); recognized {
		target = p.DeviceID
	}
	rec.ID = entry.ID
	if _, err := r.session.Dispatch(session.Login{Account: rec, TargetDevice: target}); err != nil {
		d.Outcome = SwitchFailed
		return d, err
	}
	r.reloadAccountList(ctx)

	return r.deliver(ctx, d, rec, p, SwitchAndNavigate)
}

// reloadAccountList republishes the stored profiles; Login and Logout reset
// the list in the session.
func (r *Router) reloadAccountList(ctx context.Context) {
	list, err := r.accounts.List(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Msg("could not reload account list")
		return
	}
	if _, err := r.session.Dispatch(session.UpdateAccountList{Accounts: list}); err != nil {
		r.logger.Warn().Err(err).Msg("could not publish account list")
	}
}

func (r *Router) duplicate(p models.NotificationPayload) bool {
	if r.cfg.DedupWindow <= 0 {
		return false
	}
	key := fmt.Sprintf("%s|%s|%s", p.ServerID, p.DeviceID, p.EventType)
	now := time.Now()
	if at, ok := r.seen.Get(key); ok && now.Sub(at) < r.cfg.DedupWindow {
		return true
	}
	r.seen.Add(key, now)
	return false
}
