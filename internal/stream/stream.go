// Package stream builds the playback addresses of a server profile.
package stream

import (
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/bluenviron/gortsplib/v5/pkg/base"

	"bluecherry-cli/pkg/models"
)

var ErrNoDevice = errors.New("device id is required")

// LiveURI returns rtsp://[login[:password]@]host[:port]/live/{deviceID}.
// The RTSP host falls back to the management address.
func LiveURI(acc models.AccountRecord, deviceID string) (string, error) {
	if deviceID == "" {
		return "", ErrNoDevice
	}

	host := acc.StreamHost()
	if host == "" {
		return "", models.ErrMissingAddress
	}
	if acc.RTSPPort != "" {
		host = net.JoinHostPort(host, acc.RTSPPort)
	}

	u := url.URL{
		Scheme: "rtsp",
		Host:   host,
		Path:   "/live/" + deviceID,
	}
	switch {
	case acc.Login != "" && acc.Password != "":
		u.User = url.UserPassword(acc.Login, acc.Password)
	case acc.Login != "":
		u.User = url.User(acc.Login)
	}

	raw := u.String()
	if _, err := base.ParseURL(raw); err != nil {
		return "", fmt.Errorf("invalid stream address %q: %w", u.Redacted(), err)
	}
	return raw, nil
}

// RecordingURI is the HTTPS address of an event clip. Credentials are not
// embedded; the request needs the authenticated session cookie.
func RecordingURI(acc models.AccountRecord, mediaID string) (string, error) {
	if mediaID == "" {
		return "", errors.New("media id is required")
	}
	if acc.Address == "" {
		return "", models.ErrMissingAddress
	}
	return acc.BaseURL() + "/media/request.php?id=" + url.QueryEscape(mediaID), nil
}

// Redact hides the password of a stream address for display.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}
