// Package authclient is the REST client for the hosted auth provider. The
// provider owns credential checks and token issuance; this package only
// forwards requests and decodes token bundles.
package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mockmate/webapp/internal/model/auth"
)

// Client calls the auth provider's token endpoints.
type Client struct {
	baseURL string
	anonKey string
	client  *http.Client
}

// New builds a provider client. anonKey is the public API key sent with
// every request.
func New(baseURL, anonKey string) *Client {
	return &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshPayload struct {
	RefreshToken string `json:"refresh_token"`
}

type sessionResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	RefreshToken string    `json:"refresh_token"`
	User         auth.User `json:"user"`
}

type errorResponse struct {
	Message          string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e errorResponse) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Error != "":
		return e.Error
	}
	return ""
}

// SignUp registers a new account and returns the session the provider
// issued for it.
func (c *Client) SignUp(ctx context.Context, email, password string) (auth.Session, error) {
	return c.tokenRequest(ctx, "/auth/v1/signup", credentials{Email: email, Password: password})
}

// SignIn exchanges email/password credentials for a session.
func (c *Client) SignIn(ctx context.Context, email, password string) (auth.Session, error) {
	return c.tokenRequest(ctx, "/auth/v1/token?grant_type=password", credentials{Email: email, Password: password})
}

// Refresh exchanges a refresh token for a fresh session.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (auth.Session, error) {
	return c.tokenRequest(ctx, "/auth/v1/token?grant_type=refresh_token", refreshPayload{RefreshToken: refreshToken})
}

// SignOut revokes the session behind the given access token. Revocation
// failures are reported but the caller drops its local session regardless.
func (c *Client) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("auth provider logout: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("auth provider logout returned status %d", resp.StatusCode)
	}
	return nil
}

// User fetches the identity behind an access token, for callers that need a
// provider-side liveness check rather than the locally cached session.
func (c *Client) User(ctx context.Context, accessToken string) (auth.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return auth.User{}, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return auth.User{}, fmt.Errorf("auth provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var provider errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&provider)
		if msg := provider.text(); msg != "" {
			return auth.User{}, fmt.Errorf("auth provider: %s", msg)
		}
		return auth.User{}, fmt.Errorf("auth provider returned status %d", resp.StatusCode)
	}

	var user auth.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return auth.User{}, fmt.Errorf("decode user: %w", err)
	}
	return user, nil
}

func (c *Client) tokenRequest(ctx context.Context, path string, payload any) (auth.Session, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return auth.Session{}, fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return auth.Session{}, fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return auth.Session{}, fmt.Errorf("auth provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var provider errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&provider)
		if msg := provider.text(); msg != "" {
			return auth.Session{}, fmt.Errorf("auth provider: %s", msg)
		}
		return auth.Session{}, fmt.Errorf("auth provider returned status %d", resp.StatusCode)
	}

	var decoded sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return auth.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if decoded.AccessToken == "" {
		return auth.Session{}, fmt.Errorf("auth provider returned no access token")
	}

	return auth.Session{
		AccessToken:  decoded.AccessToken,
		RefreshToken: decoded.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(decoded.ExpiresIn) * time.Second),
		User:         decoded.User,
	}, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.anonKey)
}
