package router

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluecherry-cli/internal/session"
	"bluecherry-cli/internal/store"
	"bluecherry-cli/internal/toast"
	"bluecherry-cli/pkg/models"
)

type fakeAuth struct {
	uuid  string
	ok    bool
	calls []string
}

func (f *fakeAuth) Authenticate(_ context.Context, baseURL, _, _ string) (string, bool) {
	f.calls = append(f.calls, baseURL)
	return f.uuid, f.ok
}

type shown struct {
	accountID, deviceID string
}

type fakeNavigator struct {
	shown []shown
}

func (f *fakeNavigator) ShowCamera(_ context.Context, acc models.AccountRecord, deviceID string) error {
	f.shown = append(f.shown, shown{acc.ID, deviceID})
	return nil
}

type fakeRegistrar struct {
	mu     sync.Mutex
	fail   map[string]bool
	tokens map[string]string
}

func (f *fakeRegistrar) RegisterToken(_ context.Context, acc models.AccountEntry, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[acc.ID] {
		return errors.New("endpoint down")
	}
	if f.tokens == nil {
		f.tokens = map[string]string{}
	}
	f.tokens[acc.ID] = token
	return nil
}

type fixture struct {
	router   *Router
	session  *session.Manager
	accounts *store.AccountStore
	auth     *fakeAuth
	nav      *fakeNavigator
	reg      *fakeRegistrar
	toasts   *toast.Recorder
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	kv, err := store.NewBoltKV(filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	f := &fixture{
		session:  session.NewManager(zerolog.Nop()),
		accounts: store.NewAccountStore(kv, zerolog.Nop()),
		auth:     &fakeAuth{},
		nav:      &fakeNavigator{},
		reg:      &fakeRegistrar{},
		toasts:   &toast.Recorder{},
	}
	f.router = New(f.session, f.accounts, f.auth, f.nav, f.reg, f.toasts, cfg, zerolog.Nop())
	return f
}

func (f *fixture) addAccount(t *testing.T, id, serverUUID string) models.AccountRecord {
	t.Helper()
	rec := models.NewAccountRecord(id+".nvr.local", "server "+id)
	rec.ServerUUID = serverUUID
	require.NoError(t, f.accounts.Put(context.Background(), id, rec))
	rec.ID = id
	return rec
}

func (f *fixture) login(t *testing.T, rec models.AccountRecord) {
	t.Helper()
	require.NoError(t, f.accounts.SetActive(context.Background(), rec.ID))
	_, err := f.session.Dispatch(session.Login{Account: rec})
	require.NoError(t, err)
}

func TestMotionEventForActiveServerNavigates(t *testing.T) {
	f := newFixture(t, Config{})
	f.login(t, f.addAccount(t, "1", "srv-a"))

	d, err := f.router.Handle(context.Background(), models.NotificationPayload{
		ServerID: "srv-a", DeviceID: "12", DeviceName: "Gate", EventType: models.EventTypeMotion,
	})
	require.NoError(t, err)
	assert.Equal(t, Navigate, d.Outcome)
	assert.Equal(t, []shown{{"1", "12"}}, f.nav.shown)

	msg, _ := f.toasts.Last()
	assert.Equal(t, "Motion Event", msg.Title)
	assert.Equal(t, "Gate", msg.Body)
	assert.Equal(t, Idle, f.router.Phase())
}

func TestUnknownEventTypeIsInformationalOnly(t *testing.T) {
	f := newFixture(t, Config{})
	f.login(t, f.addAccount(t, "1", "srv-a"))

	d, err := f.router.Handle(context.Background(), models.NotificationPayload{
		ServerID: "srv-a", DeviceID: "12", EventType: "unknown_type",
	})
	require.NoError(t, err)
	assert.Equal(t, Informational, d.Outcome)
	assert.Empty(t, f.nav.shown)

	msg, ok := f.toasts.Last()
	require.True(t, ok)
	assert.Equal(t, toast.Info, msg.Kind)
	assert.Equal(t, "unknown_type", msg.Title)
}

func TestForeignServerSwitchesAccount(t *testing.T) {
	f := newFixture(t, Config{})
	f.login(t, f.addAccount(t, "1", "srv-a"))
	f.addAccount(t, "2", "srv-b")
	f.auth.uuid, f.auth.ok = "srv-b", true

	d, err := f.router.Handle(context.Background(), models.NotificationPayload{
		ServerID: "srv-b", DeviceID: "5", EventType: models.EventTypeDeviceState,
	})
	require.NoError(t, err)
	assert.Equal(t, SwitchAndNavigate, d.Outcome)
	assert.Equal(t, "2", d.AccountID)
	assert.Equal(t, []string{"https://2.nvr.local:7001"}, f.auth.calls)
	assert.Equal(t, []shown{{"2", "5"}}, f.nav.shown)

	s := f.session.Snapshot()
	require.NotNil(t, s.ActiveAccount)
	assert.Equal(t, "2", s.ActiveAccount.ID)
	assert.Equal(t, "5", s.TargetDevice)
	assert.Len(t, s.AccountList, 2)

	active, err := f.accounts.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2", active)
}

func TestForeignServerLoginFailureLeavesLoggedOut(t *testing.T) {
	f := newFixture(t, Config{})
	f.login(t, f.addAccount(t, "1", "srv-a"))
	f.addAccount(t, "2", "srv-b")

	d, err := f.router.Handle(context.Background(), models.NotificationPayload{
		ServerID: "srv-b", DeviceID: "5", EventType: models.EventTypeMotion,
	})
	require.NoError(t, err)
	assert.Equal(t, SwitchFailed, d.Outcome)
	assert.Nil(t, f.session.Snapshot().ActiveAccount)
	assert.Len(t, f.session.Snapshot().AccountList, 2)
	assert.Empty(t, f.nav.shown)
}

func TestUnknownServerIsDropped(t *testing.T) {
	f := newFixture(t, Config{})
	rec := f.addAccount(t, "1", "srv-a")
	f.login(t, rec)

	d, err := f.router.Handle(context.Background(), models.NotificationPayload{
		ServerID: "srv-x", DeviceID: "5", EventType: models.EventTypeMotion,
	})
	require.NoError(t, err)
	assert.Equal(t, Dropped, d.Outcome)
	assert.Empty(t, f.toasts.Messages())
	assert.Empty(t, f.auth.calls)
	assert.Equal(t, "1", f.session.Snapshot().ActiveAccount.ID)
}

func TestUnrecognizedTypeFromUnknownServerIsDropped(t *testing.T) {
	f := newFixture(t, Config{})
	f.login(t, f.addAccount(t, "1", "srv-a"))

	d, err := f.router.Handle(context.Background(), models.NotificationPayload{
		ServerID: "srv-x", DeviceID: "5", EventType: "unknown_type",
	})
	require.NoError(t, err)
	assert.Equal(t, Dropped, d.Outcome)
	assert.Empty(t, f.toasts.Messages())
	assert.Empty(t, f.nav.shown)
	assert.Empty(t, f.auth.calls)
	assert.Equal(t, "1", f.session.Snapshot().ActiveAccount.ID)
}

func TestUnrecognizedTypeFromStoredServerSwitchesThenInforms(t *testing.T) {
	f := newFixture(t, Config{})
	f.login(t, f.addAccount(t, "1", "srv-a"))
	f.addAccount(t, "2", "srv-b")
	f.auth.uuid, f.auth.ok = "srv-b", true

	d, err := f.router.Handle(context.Background(), models.NotificationPayload{
		ServerID: "srv-b", DeviceID: "5", EventType: "unknown_type",
	})
	require.NoError(t, err)
	assert.Equal(t, Informational, d.Outcome)
	assert.Equal(t, "2", d.AccountID)
	assert.Empty(t, f.nav.shown)

	s := f.session.Snapshot()
	require.NotNil(t, s.ActiveAccount)
	assert.Equal(t, "2", s.ActiveAccount.ID)
	assert.Empty(t, s.TargetDevice)

	msg, ok := f.toasts.Last()
	require.True(t, ok)
	assert.Equal(t, "unknown_type", msg.Title)
}

func TestDuplicatesAreSuppressed(t *testing.T) {
	f := newFixture(t, Config{DedupWindow: time.Minute})
	f.login(t, f.addAccount(t, "1", "srv-a"))

	p := models.NotificationPayload{ServerID: "srv-a", DeviceID: "1", EventType: models.EventTypeMotion}
	d, _ := f.router.Handle(context.Background(), p)
	assert.Equal(t, Navigate, d.Outcome)

	d, _ = f.router.Handle(context.Background(), p)
	assert.Equal(t, Dropped, d.Outcome)
	assert.Equal(t, "duplicate", d.Reason)
	assert.Len(t, f.nav.shown, 1)
}

func TestRefreshTokenAggregatesFailures(t *testing.T) {
	f := newFixture(t, Config{RefreshConcurrency: 2})
	f.reg.fail = map[string]bool{"2": true, "3": true}

	_, err := f.session.Dispatch(session.UpdateAccountList{Accounts: []models.AccountEntry{
		{ID: "1"}, {ID: "2"}, {ID: "3"}, {ID: "4"},
	}})
	require.NoError(t, err)

	failed := f.router.RefreshToken(context.Background(), "tok")
	assert.Len(t, failed, 2)
	assert.Equal(t, map[string]string{"1": "tok", "4": "tok"}, f.reg.tokens)

	msgs := f.toasts.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "2 account(s) could not update notification token", msgs[0].Body)

	var nde *NotificationDeliveryError
	assert.ErrorAs(t, failed[0], &nde)
}

func TestRefreshTokenAllSucceedIsSilent(t *testing.T) {
	f := newFixture(t, Config{})
	_, _ = f.session.Dispatch(session.UpdateAccountList{Accounts: []models.AccountEntry{{ID: "1"}}})

	assert.Empty(t, f.router.RefreshToken(context.Background(), "tok"))
	assert.Empty(t, f.toasts.Messages())
}
