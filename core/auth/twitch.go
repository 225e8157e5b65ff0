package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	twitchAuthorizeURL = "https://id.twitch.tv/oauth2/authorize"
	twitchTokenURL     = "https://id.twitch.tv/oauth2/token"
	twitchUsersURL     = "https://api.twitch.tv/helix/users"
)

// TwitchAuthenticator resolves a Twitch OAuth login to a display name. That
// is the only thing the identity provider is used for.
type TwitchAuthenticator struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
}

// NewTwitchAuthenticator creates the authenticator. Empty credentials
// disable it.
func NewTwitchAuthenticator(clientID, clientSecret string) *TwitchAuthenticator {
	return &TwitchAuthenticator{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Enabled reports whether Twitch OAuth is configured.
func (a *TwitchAuthenticator) Enabled() bool {
	return a.clientID != "" && a.clientSecret != ""
}

// AuthorizeURL builds the redirect target starting the OAuth flow.
func (a *TwitchAuthenticator) AuthorizeURL(redirectURI string) string {
	params := url.Values{
		"client_id":     {a.clientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {"user:read:email"},
	}
	return twitchAuthorizeURL + "?" + params.Encode()
}

// ResolveLogin exchanges an authorization code and returns the account's
// display name.
func (a *TwitchAuthenticator) ResolveLogin(ctx context.Context, code, redirectURI string) (string, error) {
	body := url.Values{
		"client_id":     {a.clientID},
		"client_secret": {a.clientSecret},
		"code":          {code},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {redirectURI},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twitchTokenURL, strings.NewReader(body.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("token exchange status %d", resp.StatusCode)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}

	userReq, err := http.NewRequestWithContext(ctx, http.MethodGet, twitchUsersURL, nil)
	if err != nil {
		return "", fmt.Errorf("create user request: %w", err)
	}
	userReq.Header.Set("Client-Id", a.clientID)
	userReq.Header.Set("Authorization", "Bearer "+token.AccessToken)

	userResp, err := a.httpClient.Do(userReq)
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}
	defer userResp.Body.Close()
	if userResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch user status %d", userResp.StatusCode)
	}

	var users struct {
		Data []struct {
			DisplayName string `json:"display_name"`
			Login       string `json:"login"`
		} `json:"data"`
	}
	if err := json.NewDecoder(userResp.Body).Decode(&users); err != nil {
		return "", fmt.Errorf("decode user response: %w", err)
	}
	if len(users.Data) == 0 {
		return "", fmt.Errorf("no twitch user in response")
	}

	name := users.Data[0].DisplayName
	if name == "" {
		name = users.Data[0].Login
	}
	if name == "" {
		return "", fmt.Errorf("twitch user has no name")
	}
	return name, nil
}
