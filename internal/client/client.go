package client

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"bluecherry-cli/pkg/models"
)

type BluecherryClient struct {
	HTTP   *resty.Client
	Config ClientConfig
}

type ClientConfig struct {
	BaseURL string
	// Bluecherry servers ship with self-signed certificates.
	InsecureTLS bool
	Timeout     time.Duration
}

func New(cfg ClientConfig) *BluecherryClient {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	// resty keeps a cookie jar per client; the PHP session cookie set by
	// login is replayed on every later request.
	r := resty.New()
	r.SetBaseURL(cfg.BaseURL)
	r.SetHeader("User-Agent", "bluecherry-cli")

	if cfg.InsecureTLS {
		r.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	if cfg.Timeout > 0 {
		r.SetTimeout(cfg.Timeout)
	}

	// Surface redirects instead of following them to the HTML login page.
	r.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))

	return &BluecherryClient{
		HTTP:   r,
		Config: cfg,
	}
}

// Login posts the credentials and returns the server uuid. The session
// cookie stays in the client's jar.
func (c *BluecherryClient) Login(ctx context.Context, login, password string) (string, error) {
	resp, err := c.HTTP.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"login":       login,
			"password":    password,
			"from_client": "true",
		}).
		Post("/ajax/loginapp.php")

	if err != nil {
		return "", &ConnectionError{Op: "login", Err: err}
	}
	if err := checkStatus("login", resp); err != nil {
		return "", err
	}

	var result models.LoginResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", &ProtocolError{Op: "login", Detail: "undecodable login response", Err: err}
	}

	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "login rejected"
		}
		return "", &AuthError{Op: "login", Message: msg}
	}

	return result.ServerUUID, nil
}
