package graph

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/common"
)

// newTokenServer serves the refresh grant, returning the given access
// token. Responses with rotate=true also rotate the refresh token.
func newTokenServer(t *testing.T, accessToken string, rotate bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		w.Header().Set("Content-Type", "application/json")
		body := `{"access_token":"` + accessToken + `","expires_in":3600`
		if rotate {
			body += `,"refresh_token":"rotated-refresh"`
		}
		body += `}`
		w.Write([]byte(body))
	}))
}

func newTestSession(t *testing.T, token Token) *Session {
	t.Helper()
	s := NewSession("common", "client-id", "", nil, common.NewSilentLogger())
	s.SetToken(token)
	return s
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth string
	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":"me"}`))
	}))
	defer graphSrv.Close()

	session := newTestSession(t, Token{AccessToken: "tok-1"})
	client := NewClient(graphSrv.URL, session, common.NewSilentLogger())

	result, err := client.Execute(context.Background(), RequestShape{Method: "GET", Path: "/me"})
	require.NoError(t, err)
	assert.Equal(t, 200, result.Status)
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestClientNoTokenFailsBeforeRequest(t *testing.T) {
	session := NewSession("common", "client-id", "", nil, common.NewSilentLogger())
	client := NewClient("https://unused.invalid", session, common.NewSilentLogger())

	_, err := client.Execute(context.Background(), RequestShape{Method: "GET", Path: "/me"})
	assert.ErrorIs(t, err, ErrNoToken)
}

func TestClientRefreshesOnceOn401(t *testing.T) {
	tokenSrv := newTokenServer(t, "tok-new", false)
	defer tokenSrv.Close()

	var calls atomic.Int32
	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-new" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		calls.Add(1)
		w.Write([]byte(`{"id":"me"}`))
	}))
	defer graphSrv.Close()

	session := newTestSession(t, Token{AccessToken: "tok-old", RefreshToken: "refresh-1"})
	session.SetTokenURL(tokenSrv.URL)
	client := NewClient(graphSrv.URL, session, common.NewSilentLogger())

	result, err := client.Execute(context.Background(), RequestShape{Method: "GET", Path: "/me"})
	require.NoError(t, err)
	assert.Equal(t, 200, result.Status)
	assert.Equal(t, int32(1), calls.Load())

	// The refreshed token is installed for subsequent calls.
	tok, err := session.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-new", tok)
}

func TestClientSecond401IsAuthExpired(t *testing.T) {
	tokenSrv := newTokenServer(t, "tok-still-bad", false)
	defer tokenSrv.Close()

	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer graphSrv.Close()

	session := newTestSession(t, Token{AccessToken: "tok-old", RefreshToken: "refresh-1"})
	session.SetTokenURL(tokenSrv.URL)
	client := NewClient(graphSrv.URL, session, common.NewSilentLogger())

	_, err := client.Execute(context.Background(), RequestShape{Method: "GET", Path: "/me"})
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestClient401WithoutRefreshTokenIsAuthExpired(t *testing.T) {
	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer graphSrv.Close()

	session := newTestSession(t, Token{AccessToken: "tok-old"})
	client := NewClient(graphSrv.URL, session, common.NewSilentLogger())

	_, err := client.Execute(context.Background(), RequestShape{Method: "GET", Path: "/me"})
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestClient403ScopeError(t *testing.T) {
	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":"ErrorAccessDenied","message":"Insufficient scope for this operation"}}`))
	}))
	defer graphSrv.Close()

	session := newTestSession(t, Token{AccessToken: "tok-1"})
	client := NewClient(graphSrv.URL, session, common.NewSilentLogger())

	_, err := client.Execute(context.Background(), RequestShape{Method: "GET", Path: "/users"})
	var scopeErr *ScopeError
	require.ErrorAs(t, err, &scopeErr)
	assert.Equal(t, 403, scopeErr.Status)
	assert.Contains(t, err.Error(), "org mode")
}

func TestClient403WithoutScopeHintIsUpstreamError(t *testing.T) {
	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":"ErrorAccessDenied","message":"Access is denied"}}`))
	}))
	defer graphSrv.Close()

	session := newTestSession(t, Token{AccessToken: "tok-1"})
	client := NewClient(graphSrv.URL, session, common.NewSilentLogger())

	_, err := client.Execute(context.Background(), RequestShape{Method: "GET", Path: "/users"})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 403, upstream.Status)
}

func TestClientServerErrorIsUpstreamError(t *testing.T) {
	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("boom"))
	}))
	defer graphSrv.Close()

	session := newTestSession(t, Token{AccessToken: "tok-1"})
	client := NewClient(graphSrv.URL, session, common.NewSilentLogger())

	_, err := client.Execute(context.Background(), RequestShape{Method: "GET", Path: "/me"})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, 500, upstream.Status)
	assert.Equal(t, "boom", upstream.Body)
}

func TestClientSendsBodyWithContentType(t *testing.T) {
	var gotContentType, gotBody string
	graphSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		buf := make([]byte, r.ContentLength)
		r.Body.Read(buf)
		gotBody = string(buf)
		w.WriteHeader(http.StatusCreated)
	}))
	defer graphSrv.Close()

	session := newTestSession(t, Token{AccessToken: "tok-1"})
	client := NewClient(graphSrv.URL, session, common.NewSilentLogger())

	_, err := client.Execute(context.Background(), RequestShape{
		Method: "POST", Path: "/me/events", Body: `{"subject":"standup"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"subject":"standup"}`, gotBody)
}

func TestSessionRefreshKeepsOldRefreshToken(t *testing.T) {
	tokenSrv := newTokenServer(t, "tok-new", false)
	defer tokenSrv.Close()

	session := newTestSession(t, Token{AccessToken: "tok-old", RefreshToken: "refresh-1"})
	session.SetTokenURL(tokenSrv.URL)

	require.NoError(t, session.Refresh(context.Background()))
	assert.True(t, session.HasRefreshToken())

	tok, err := session.AccessToken()
	require.NoError(t, err)
	assert.Equal(t, "tok-new", tok)
}

func TestSessionRefreshWithoutRefreshToken(t *testing.T) {
	session := newTestSession(t, Token{AccessToken: "tok-old"})
	assert.ErrorIs(t, session.Refresh(context.Background()), ErrNoRefreshToken)
}
