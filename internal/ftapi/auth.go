package ftapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ftalerts/internal/config"
)

// token is a cached OAuth access token with a small safety margin before
// expiry.
type token struct {
	accessToken string
	expiresAt   time.Time
}

func (t token) valid() bool {
	return t.accessToken != "" && time.Now().Before(t.expiresAt.Add(-30*time.Second))
}

// SecretSource resolves the OAuth client secret lazily, so the keychain is
// only consulted when a real token is actually needed.
type SecretSource func() (string, error)

// AuthClient obtains client-credentials tokens for the partner API.
type AuthClient struct {
	cfg    config.Config
	secret SecretSource
	hc     *http.Client
	cached token
}

func NewAuthClient(cfg config.Config, secret SecretSource) *AuthClient {
	return &AuthClient{
		cfg:    cfg,
		secret: secret,
		hc:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *AuthClient) GetToken(ctx context.Context) (string, error) {
	if a.cfg.API.Simulate {
		return "SIMULATED_TOKEN", nil
	}
	if a.cached.valid() {
		return a.cached.accessToken, nil
	}
	if a.cfg.API.ClientID == "" {
		return "", fmt.Errorf("missing api.client_id / FT_CLIENT_ID for real API calls")
	}
	secret, err := a.secret()
	if err != nil {
		return "", err
	}

	tok, err := a.fetchToken(ctx, secret)
	if err != nil {
		return "", err
	}
	a.cached = tok
	return tok.accessToken, nil
}

func (a *AuthClient) fetchToken(ctx context.Context, secret string) (token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", a.cfg.API.ClientID)
	form.Set("client_secret", secret)
	if a.cfg.API.Scope != "" {
		form.Set("scope", a.cfg.API.Scope)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.API.AuthURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return token{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Some auth endpoints want the credentials as Basic auth too.
	req.SetBasicAuth(a.cfg.API.ClientID, secret)

	res, err := a.hc.Do(req)
	if err != nil {
		return token{}, fmt.Errorf("oauth token request: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return token{}, fmt.Errorf("oauth token status %d", res.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return token{}, fmt.Errorf("oauth token read: %w", err)
	}

	var obj struct {
		AccessToken string  `json:"access_token"`
		ExpiresIn   float64 `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		return token{}, fmt.Errorf("oauth token parse: %w", err)
	}
	if obj.AccessToken == "" {
		return token{}, fmt.Errorf("no access_token in OAuth response")
	}
	ttl := obj.ExpiresIn
	if ttl <= 0 {
		ttl = 3600
	}
	return token{
		accessToken: obj.AccessToken,
		expiresAt:   time.Now().Add(time.Duration(ttl) * time.Second),
	}, nil
}
