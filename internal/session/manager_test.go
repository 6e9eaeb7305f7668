package session

import (
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluecherry-cli/pkg/models"
)

func TestManagerDispatchAndSnapshot(t *testing.T) {
	m := NewManager(zerolog.Nop())
	assert.Equal(t, Initial(), m.Snapshot())

	acc := models.AccountRecord{ID: "1", Name: "Home"}
	_, err := m.Dispatch(Login{Account: acc})
	require.NoError(t, err)

	snap := m.Snapshot()
	require.NotNil(t, snap.ActiveAccount)
	snap.ActiveAccount.Name = "mutated"
	assert.Equal(t, "Home", m.Snapshot().ActiveAccount.Name)
}

func TestManagerGenerationAndStaleResults(t *testing.T) {
	m := NewManager(zerolog.Nop())
	_, err := m.Dispatch(Login{Account: models.AccountRecord{ID: "1"}})
	require.NoError(t, err)

	gen := m.Generation()
	_, err = m.Dispatch(UpdateAccountList{Accounts: []models.AccountEntry{{ID: "1"}}})
	require.NoError(t, err)
	assert.Equal(t, gen, m.Generation(), "list updates keep the session")

	// A switch happens while a device fetch is in flight.
	_, err = m.Dispatch(Login{Account: models.AccountRecord{ID: "2"}})
	require.NoError(t, err)

	_, err = m.DispatchAt(gen, UpdateDeviceList{Devices: []models.Device{{ID: "old"}}})
	assert.ErrorIs(t, err, ErrStale)
	assert.Empty(t, m.Snapshot().DeviceList)

	_, err = m.DispatchAt(m.Generation(), UpdateDeviceList{Devices: []models.Device{{ID: "new"}}})
	require.NoError(t, err)
	assert.Equal(t, "new", m.Snapshot().DeviceList[0].ID)
}

func TestManagerRejectsUnknownAction(t *testing.T) {
	m := NewManager(zerolog.Nop())
	_, err := m.Dispatch(nil)
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Equal(t, uint64(0), m.Generation())
}

func TestManagerSubscribe(t *testing.T) {
	m := NewManager(zerolog.Nop())

	var seen []State
	unsubscribe := m.Subscribe(func(s State) { seen = append(seen, s) })

	_, _ = m.Dispatch(Login{Account: models.AccountRecord{ID: "1"}})
	_, _ = m.Dispatch(nil)
	unsubscribe()
	_, _ = m.Dispatch(Logout{})

	require.Len(t, seen, 1)
	assert.Equal(t, "1", seen[0].ActiveAccount.ID)
}

func TestManagerConcurrentDispatch(t *testing.T) {
	m := NewManager(zerolog.Nop())
	_, _ = m.Dispatch(Login{Account: models.AccountRecord{ID: "1"}})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = m.Dispatch(UpdateDeviceList{Devices: []models.Device{{ID: "d"}}})
		}()
		go func() {
			defer wg.Done()
			_, _ = m.Dispatch(UpdateAccountList{Accounts: []models.AccountEntry{{ID: "a"}}})
		}()
	}
	wg.Wait()

	s := m.Snapshot()
	assert.Equal(t, "1", s.ActiveAccount.ID)
	assert.Len(t, s.DeviceList, 1)
	assert.Len(t, s.AccountList, 1)
}
