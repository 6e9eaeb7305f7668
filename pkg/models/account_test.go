package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpgradeFromUnversionedRecord(t *testing.T) {
	var rec AccountRecord
	require.NoError(t, json.Unmarshal([]byte(`{"address":"nvr.local","port":"7001","login":"admin","password":"pw","name":"Home"}`), &rec))

	up := rec.Upgrade()
	assert.Equal(t, CurrentSchemaVersion, up.SchemaVersion)
	assert.Equal(t, DefaultDateFormat, up.DateFormat)
	assert.Empty(t, up.ServerUUID)
	assert.False(t, up.NotificationPermissionGranted)
}

func TestUpgradeKeepsExistingValues(t *testing.T) {
	rec := AccountRecord{
		Address:                       "nvr.local",
		DateFormat:                    "YYYY-MM-DD HH:mm",
		ServerUUID:                    "abc",
		NotificationPermissionGranted: true,
	}
	up := rec.Upgrade()
	assert.Equal(t, "YYYY-MM-DD HH:mm", up.DateFormat)
	assert.Equal(t, "abc", up.ServerUUID)
	assert.True(t, up.NotificationPermissionGranted)
}

func TestValidate(t *testing.T) {
	rec := NewAccountRecord("nvr.local", "Home")
	assert.NoError(t, rec.Validate())

	bad := rec
	bad.Address = ""
	assert.ErrorIs(t, bad.Validate(), ErrMissingAddress)

	bad = rec
	bad.RTSPPort = "seventy"
	assert.Error(t, bad.Validate())

	bad = rec
	bad.Port = "70000"
	assert.Error(t, bad.Validate())
}

func TestBaseURLAndStreamHost(t *testing.T) {
	rec := AccountRecord{Address: "nvr.local", Port: "7001"}
	assert.Equal(t, "https://nvr.local:7001", rec.BaseURL())
	assert.Equal(t, "nvr.local", rec.StreamHost())

	rec.Port = ""
	rec.RTSPAddress = "rtsp.local"
	assert.Equal(t, "https://nvr.local", rec.BaseURL())
	assert.Equal(t, "rtsp.local", rec.StreamHost())
}
