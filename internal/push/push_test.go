package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluecherry-cli/pkg/models"
)

func TestDecodeBarePayload(t *testing.T) {
	p, err := Decode([]byte(`{"serverId":"s","deviceId":"3","eventType":"motion_event","deviceName":"Gate"}`))
	require.NoError(t, err)
	assert.Equal(t, models.NotificationPayload{ServerID: "s", DeviceID: "3", DeviceName: "Gate", EventType: "motion_event"}, p)
}

func TestDecodeEnvelope(t *testing.T) {
	p, err := Decode([]byte(`{"notification":{"title":"x"},"data":{"serverId":"s","deviceId":"3","eventType":"device_state"}}`))
	require.NoError(t, err)
	assert.Equal(t, "device_state", p.EventType)
	assert.Equal(t, "3", p.DeviceID)
}

func TestDecodeRejectsEmptyAndGarbage(t *testing.T) {
	_, err := Decode([]byte(`{"deviceId":"3"}`))
	assert.ErrorIs(t, err, ErrEmptyPayload)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}
