package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/common"
)

// defaultTokenURL is the Microsoft identity platform v2 token endpoint,
// with the tenant id substituted at session construction.
//
//nolint:gosec // G101: not credentials, OAuth endpoint URL
const defaultTokenURL = "https://login.microsoftonline.com/%s/oauth2/v2.0/token"

// Token is one access/refresh token pair.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

// TokenStore persists tokens across processes. Interactive acquisition
// (device code, auth code) lives outside this package; the store is how
// an externally acquired token reaches the session.
type TokenStore interface {
	Load(ctx context.Context) (*Token, error)
	Save(ctx context.Context, token *Token) error
}

// Session holds the current token pair for the process lifetime. It is
// shared by all concurrent tool invocations; refresh is last-write-wins,
// which is safe because either resulting token remains valid until its
// own expiry.
type Session struct {
	mu    sync.Mutex
	token Token

	tenantID     string
	clientID     string
	clientSecret string
	tokenURL     string

	store      TokenStore
	httpClient *http.Client
	logger     *common.Logger
}

// NewSession creates a token session for the given tenant and client.
// If a store is provided, any previously persisted token is loaded.
func NewSession(tenantID, clientID, clientSecret string, store TokenStore, logger *common.Logger) *Session {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	if tenantID == "" {
		tenantID = "common"
	}

	s := &Session{
		tenantID:     tenantID,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     fmt.Sprintf(defaultTokenURL, tenantID),
		store:        store,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		logger:       logger,
	}

	if store != nil {
		if tok, err := store.Load(context.Background()); err == nil {
			s.token = *tok
		}
	}

	return s
}

// SetTokenURL overrides the token endpoint. Used by tests.
func (s *Session) SetTokenURL(u string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokenURL = u
}

// SetToken installs a token pair directly.
func (s *Session) SetToken(token Token) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	s.persist(&token)
}

// AccessToken returns the current access token, or ErrNoToken when the
// session has never been authenticated.
func (s *Session) AccessToken() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token.AccessToken == "" {
		return "", ErrNoToken
	}
	return s.token.AccessToken, nil
}

// HasRefreshToken reports whether a refresh is possible.
func (s *Session) HasRefreshToken() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token.RefreshToken != ""
}

// tokenResponse is the identity platform token endpoint response.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Refresh exchanges the held refresh token for a new access token and
// installs the result. Microsoft may rotate the refresh token; when it
// does not, the previous one is kept.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	refreshToken := s.token.RefreshToken
	tokenURL := s.tokenURL
	s.mu.Unlock()

	if refreshToken == "" {
		return ErrNoRefreshToken
	}

	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", s.clientID)
	if s.clientSecret != "" {
		data.Set("client_secret", s.clientSecret)
	}
	data.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("token refresh request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token refresh failed with status %d", resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}

	newToken := Token{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
	}
	if newToken.RefreshToken == "" {
		newToken.RefreshToken = refreshToken
	}
	if tr.ExpiresIn > 0 {
		newToken.Expiry = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}

	s.mu.Lock()
	s.token = newToken
	s.mu.Unlock()

	s.logger.Debug().Msg("access token refreshed")
	s.persist(&newToken)
	return nil
}

// persist writes the token to the store, best-effort.
func (s *Session) persist(token *Token) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(context.Background(), token); err != nil {
		s.logger.Warn().Str("error", err.Error()).Msg("failed to persist token")
	}
}
