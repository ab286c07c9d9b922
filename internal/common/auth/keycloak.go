// internal/common/auth/keycloak.go
//
// Package auth verifies portal sessions against Keycloak. Workers that
// act on behalf of a signed-in user introspect the session token before
// touching consultation data.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"consultation-workers/internal/common/errors"
	"consultation-workers/internal/common/logger"
)

type KeycloakClient struct {
	baseURL      string
	realm        string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	logger       logger.Logger
}

// TokenInfo holds the introspection endpoint's response.
type TokenInfo struct {
	Active    bool   `json:"active"`
	Scope     string `json:"scope,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	Username  string `json:"username,omitempty"`
	TokenType string `json:"token_type,omitempty"`
	Exp       int64  `json:"exp,omitempty"`
	Sub       string `json:"sub,omitempty"`
}

func NewKeycloakClient(baseURL, realm, clientID, clientSecret string, log logger.Logger) *KeycloakClient {
	return &KeycloakClient{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		realm:        realm,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		logger:       log.WithFields(map[string]interface{}{"component": "keycloak"}),
	}
}

// Introspect checks a session token against Keycloak. Inactive tokens
// come back as an unauthorized error, transport failures as a fetch
// failure so callers can retry.
func (k *KeycloakClient) Introspect(ctx context.Context, token string) (*TokenInfo, error) {
	introspectURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token/introspect", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("token", token)
	data.Set("token_type_hint", "access_token")
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, introspectURL, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.NewStatusFetchFailedError(fmt.Errorf("create introspection request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewStatusFetchFailedError(fmt.Errorf("send introspection request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewStatusFetchFailedError(fmt.Errorf("introspection returned status %d", resp.StatusCode))
	}

	var info TokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.NewStatusFetchFailedError(fmt.Errorf("decode introspection response: %w", err))
	}

	if !info.Active {
		k.logger.Debug("session token rejected", map[string]interface{}{
			"subject": info.Sub,
		})
		return nil, errors.NewUnauthorizedError("session token is expired or revoked")
	}
	return &info, nil
}

// Verify implements the session check used by status queries. Only the
// active/inactive outcome matters there.
func (k *KeycloakClient) Verify(ctx context.Context, token string) error {
	_, err := k.Introspect(ctx, token)
	return err
}

// Logout revokes the session's refresh token.
func (k *KeycloakClient) Logout(ctx context.Context, refreshToken string) error {
	logoutURL := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/logout", k.baseURL, k.realm)

	data := url.Values{}
	data.Set("client_id", k.clientID)
	data.Set("client_secret", k.clientSecret)
	data.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, logoutURL, strings.NewReader(data.Encode()))
	if err != nil {
		return errors.NewStatusFetchFailedError(fmt.Errorf("create logout request: %w", err))
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.httpClient.Do(req)
	if err != nil {
		return errors.NewStatusFetchFailedError(fmt.Errorf("send logout request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return errors.NewStatusFetchFailedError(fmt.Errorf("logout returned status %d", resp.StatusCode))
	}
	return nil
}
