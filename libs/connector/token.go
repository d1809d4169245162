package connector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"resty.dev/v3"
)

const (
	loginAuthority    = "https://login.microsoftonline.com"
	botFrameworkScope = "https://api.botframework.com/.default"
	tokenRefreshSkew  = 5 * time.Minute
)

// TokenSource supplies the bearer token for outbound connector calls. An
// empty token means the call is sent unauthenticated.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// NoToken is used when authentication is bypassed for local debugging.
type NoToken struct{}

func (NoToken) Token(context.Context) (string, error) { return "", nil }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// AppCredentials obtains app tokens with the OAuth2 client credentials grant
// and caches them until shortly before expiry.
type AppCredentials struct {
	appID    string
	password string
	tokenURL string
	http     *resty.Client

	mu      sync.Mutex
	token   string
	expires time.Time
}

// NewAppCredentials targets the tenant's token endpoint; an empty tenant uses
// the multi-tenant botframework.com authority.
func NewAppCredentials(appID, password, tenantID string, http *resty.Client) *AppCredentials {
	if tenantID == "" {
		tenantID = "botframework.com"
	}
	if http == nil {
		http = resty.New()
	}
	return &AppCredentials{
		appID:    appID,
		password: password,
		tokenURL: fmt.Sprintf("%s/%s/oauth2/v2.0/token", loginAuthority, tenantID),
		http:     http,
	}
}

// WithTokenURL overrides the token endpoint.
func (a *AppCredentials) WithTokenURL(u string) *AppCredentials {
	a.tokenURL = u
	return a
}

func (a *AppCredentials) Token(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.expires.Add(-tokenRefreshSkew)) {
		return a.token, nil
	}

	var tr tokenResponse
	resp, err := a.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     a.appID,
			"client_secret": a.password,
			"scope":         botFrameworkScope,
		}).
		SetResult(&tr).
		Post(a.tokenURL)
	if err != nil {
		return "", errors.Wrap(err, "request app token")
	}
	if resp.IsError() || tr.AccessToken == "" {
		return "", errors.Errorf("app token request failed: %s", resp.Status())
	}

	a.token = tr.AccessToken
	a.expires = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return a.token, nil
}
