package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
)

// ErrTokenRejected is returned when the notification API answers success=false.
var ErrTokenRejected = errors.New("notification token rejected")

// ConnectionError is a transport failure: DNS, TLS, refused, timeout.
type ConnectionError struct {
	Op  string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: connection error: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// AuthError means the server refused the credentials or the session expired.
type AuthError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: auth error (%d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: auth error: %s", e.Op, e.Message)
}

// ProtocolError means the response did not have the expected shape. It
// usually points at an incompatible server version.
type ProtocolError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: protocol error: %s: %v", e.Op, e.Detail, e.Err)
	}
	return fmt.Sprintf("%s: protocol error: %s", e.Op, e.Detail)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// IsAuthError reports whether a retry after a fresh login may succeed.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func checkStatus(op string, resp *resty.Response) error {
	code := resp.StatusCode()
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return &AuthError{Op: op, StatusCode: code, Message: snippet(resp.String())}
	case code >= 300 && code < 400:
		// The server bounces expired sessions to its login page.
		return &AuthError{Op: op, StatusCode: code, Message: "session expired, redirected to " + resp.Header().Get("Location")}
	case resp.IsError():
		return &ProtocolError{Op: op, Detail: fmt.Sprintf("unexpected status %d: %s", code, snippet(resp.String()))}
	}
	return nil
}

func snippet(body string) string {
	body = strings.TrimSpace(body)
	if len(body) > 200 {
		return body[:200] + "..."
	}
	return body
}
