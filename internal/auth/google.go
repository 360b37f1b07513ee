package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Provider exchanges a federated authorisation code for a verified email
type Provider interface {
	Name() string
	Exchange(ctx context.Context, code, redirectURI string) (string, error)
}

// GoogleConfig holds the OAuth client settings
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	TokenURL     string
	UserInfoURL  string
}

type googleTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// GoogleProvider runs the authorisation code flow against Google
type GoogleProvider struct {
	cfg    GoogleConfig
	client *http.Client
}

// NewGoogleProvider creates a Google provider. A nil client gets a 10s timeout.
func NewGoogleProvider(cfg GoogleConfig, client *http.Client) *GoogleProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoogleProvider{cfg: cfg, client: client}
}

// Name returns the provider key used in routes
func (g *GoogleProvider) Name() string { return "google" }

// Exchange trades the code for an access token, then reads the account email
func (g *GoogleProvider) Exchange(ctx context.Context, code, redirectURI string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("authorization code is required")
	}
	accessToken, err := g.exchangeCode(ctx, code, redirectURI)
	if err != nil {
		return "", err
	}
	user, err := g.userInfo(ctx, accessToken)
	if err != nil {
		return "", err
	}
	if user.Email == "" || !user.VerifiedEmail {
		return "", fmt.Errorf("Google account has no verified email")
	}
	return strings.ToLower(user.Email), nil
}

func (g *GoogleProvider) exchangeCode(ctx context.Context, code, redirectURI string) (string, error) {
	data := url.Values{}
	data.Set("client_id", g.cfg.ClientID)
	data.Set("client_secret", g.cfg.ClientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.TokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to exchange code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("Google token exchange failed: %s", strings.TrimSpace(string(body)))
	}

	var tokenResp googleTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("empty token response from Google")
	}
	return tokenResp.AccessToken, nil
}

func (g *GoogleProvider) userInfo(ctx context.Context, accessToken string) (*googleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.UserInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("Google user info request failed: %s", strings.TrimSpace(string(body)))
	}

	var user googleUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &user, nil
}
