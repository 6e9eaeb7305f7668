package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bluecherry-cli/internal/client"
)

const feed = `<feed xmlns="http://www.w3.org/2005/Atom">
<updated>2026-10-18T10:00:00Z</updated>
<entry><id>https://nvr/events/?id=10</id><title>motion</title></entry>
<entry><id>https://nvr/events/?id=11</id><title>motion</title></entry>
</feed>`

func newServer(t *testing.T, logins *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ajax/loginapp.php", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(logins, 1)
		http.SetCookie(w, &http.Cookie{Name: "PHPSESSID", Value: "s", Path: "/"})
		w.Write([]byte(`{"success":true,"server_uuid":"u"}`))
	})
	authed := func(w http.ResponseWriter, r *http.Request) bool {
		if _, err := r.Cookie("PHPSESSID"); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return false
		}
		return true
	}
	mux.HandleFunc("/devices.php", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		w.Write([]byte(`<devices>` +
			`<device id="1"><device_name>Door</device_name><status>OK</status></device>` +
			`<device id="2"><device_name>Yard</device_name><status>signal lost</status></device>` +
			`</devices>`))
	})
	mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
		if !authed(w, r) {
			return
		}
		w.Write([]byte(feed))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCollectReloginsOnAuthError(t *testing.T) {
	var logins int32
	srv := newServer(t, &logins)

	c := &Collector{
		Client:   client.New(client.ClientConfig{BaseURL: srv.URL}),
		Login:    "admin",
		Password: "pw",
		Logger:   zerolog.Nop(),
		now:      func() time.Time { return time.Date(2026, 10, 18, 10, 1, 0, 0, time.UTC) },
	}

	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	expected := `
# HELP bluecherry_devices_total Total devices grouped by status.
# TYPE bluecherry_devices_total gauge
bluecherry_devices_total{status="OK"} 1
bluecherry_devices_total{status="SIGNAL LOST"} 1
# HELP bluecherry_device_up Device status is OK.
# TYPE bluecherry_device_up gauge
bluecherry_device_up{id="1",name="Door"} 1
bluecherry_device_up{id="2",name="Yard"} 0
# HELP bluecherry_events_in_feed Number of entries in the event feed.
# TYPE bluecherry_events_in_feed gauge
bluecherry_events_in_feed 2
# HELP bluecherry_feed_age_seconds Seconds since the event feed was last updated.
# TYPE bluecherry_feed_age_seconds gauge
bluecherry_feed_age_seconds 60
# HELP bluecherry_up Was the last scrape successful.
# TYPE bluecherry_up gauge
bluecherry_up 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"bluecherry_devices_total", "bluecherry_device_up", "bluecherry_events_in_feed",
		"bluecherry_feed_age_seconds", "bluecherry_up")
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&logins))
}

func TestCollectServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := &Collector{
		Client: client.New(client.ClientConfig{BaseURL: url}),
		Logger: zerolog.Nop(),
	}
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(c))

	expected := `
# HELP bluecherry_up Was the last scrape successful.
# TYPE bluecherry_up gauge
bluecherry_up 0
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "bluecherry_up"))
}
