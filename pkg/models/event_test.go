package models

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <updated>2024-05-01T10:00:00Z</updated>
  <entry>
    <id>https://nvr.local:7001/events/?id=42</id>
    <title type="text">Front Door: motion</title>
    <published>2024-05-01T09:59:00Z</published>
    <category scheme="http://www.bluecherrydvr.com/atom.html" term="3/warn/motion_event"/>
    <content media_id="17" media_size="1024">https://nvr.local:7001/media/request.php?id=17</content>
  </entry>
  <entry>
    <id>https://nvr.local:7001/events/?id=43</id>
    <title>Lobby: signal lost</title>
    <published>not-a-time</published>
  </entry>
</feed>`

func TestEventFeedParsing(t *testing.T) {
	var feed EventFeedResponse
	require.NoError(t, xml.Unmarshal([]byte(sampleFeed), &feed))
	require.Len(t, feed.Entries, 2)

	first := feed.Entries[0].ToEvent()
	assert.Equal(t, "42", first.ID)
	assert.Equal(t, "17", first.MediaID)
	assert.Equal(t, int64(1024), first.MediaSize)
	assert.Equal(t, "3/warn/motion_event", first.Category)
	assert.True(t, first.HasMedia())
	assert.Equal(t, 2024, first.Published.Year())

	second := feed.Entries[1].ToEvent()
	assert.Equal(t, "43", second.ID)
	assert.False(t, second.HasMedia())
	assert.True(t, second.Published.IsZero())
}

func TestEventMediaIDAttributeFallback(t *testing.T) {
	doc := `<entry>
  <id>https://nvr.local:7001/events/?id=44</id>
  <content media_id="18" media_size="2048">https://nvr.local:7001/media/request.php</content>
</entry>`
	var entry EventXML
	require.NoError(t, xml.Unmarshal([]byte(doc), &entry))

	evt := entry.ToEvent()
	assert.Equal(t, "44", evt.ID)
	assert.Equal(t, "18", evt.MediaID)
	assert.True(t, evt.HasMedia())
}

func TestExtractID(t *testing.T) {
	assert.Equal(t, "123", ExtractID("https://x/media/request.php?id=123&x=1"))
	assert.Equal(t, "", ExtractID("https://x/media/request.php?id=abc"))
	assert.Equal(t, "", ExtractID(""))
}

func TestDeviceXMLIDFallback(t *testing.T) {
	doc := `<devices>
  <device id="5"><device_name>Gate</device_name><status>OK</status></device>
  <device><id>6</id><device_name>Yard</device_name><status>disabled</status></device>
</devices>`
	var list DeviceListResponse
	require.NoError(t, xml.Unmarshal([]byte(doc), &list))
	require.Len(t, list.Devices, 2)

	devices := []Device{list.Devices[0].ToDevice(), list.Devices[1].ToDevice()}
	assert.Equal(t, "5", devices[0].ID)
	assert.Equal(t, "6", devices[1].ID)
	assert.Equal(t, []Device{{ID: "5", DisplayName: "Gate", Status: "OK"}}, UsableDevices(devices))
}
