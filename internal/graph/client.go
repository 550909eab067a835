package graph

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clye-gmbh/ms-365-mcp-server/internal/common"
)

// DefaultBaseURL is the Microsoft Graph v1.0 API root.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// Executor dispatches a bound request shape against the Graph API.
// Client is the production implementation; tests substitute fakes.
type Executor interface {
	Execute(ctx context.Context, shape RequestShape) (*RawResult, error)
}

// RawResult is the unprocessed outcome of one Graph request.
type RawResult struct {
	Status int
	Header http.Header
	Body   []byte
}

// Client executes bound requests against the Graph API, attaching bearer
// credentials and recovering once from token expiry per call.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *Session
	logger     *common.Logger
}

// NewClient creates a Graph client. An empty baseURL selects the v1.0
// production endpoint.
func NewClient(baseURL string, session *Session, logger *common.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 60 * time.Second},
		session:    session,
		logger:     logger,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Execute dispatches the shape with the current access token. On a 401 it
// refreshes the token and retries exactly once; a second 401 surfaces as
// ErrAuthExpired. 403 responses naming a scope problem become ScopeError.
// All other non-2xx statuses become UpstreamError. Transport failures and
// token lifecycle failures return an error with a nil result; callers can
// rely on result being non-nil whenever err is nil.
func (c *Client) Execute(ctx context.Context, shape RequestShape) (*RawResult, error) {
	result, err := c.once(ctx, shape)
	if err != nil {
		return nil, err
	}

	if result.Status == http.StatusUnauthorized {
		if !c.session.HasRefreshToken() {
			return nil, ErrAuthExpired
		}
		c.logger.Debug().Str("path", shape.Path).Msg("access token rejected, refreshing")
		if err := c.session.Refresh(ctx); err != nil {
			if errors.Is(err, ErrNoRefreshToken) {
				return nil, ErrAuthExpired
			}
			return nil, fmt.Errorf("token refresh: %w", err)
		}
		result, err = c.once(ctx, shape)
		if err != nil {
			return nil, err
		}
		if result.Status == http.StatusUnauthorized {
			return nil, ErrAuthExpired
		}
	}

	if result.Status == http.StatusForbidden && bodyIndicatesMissingScope(string(result.Body)) {
		return nil, &ScopeError{Status: result.Status, Body: string(result.Body)}
	}
	if result.Status < 200 || result.Status >= 300 {
		return nil, &UpstreamError{
			Status: result.Status,
			Reason: http.StatusText(result.Status),
			Body:   string(result.Body),
		}
	}

	return result, nil
}

// once performs a single HTTP round trip with the current token.
func (c *Client) once(ctx context.Context, shape RequestShape) (*RawResult, error) {
	token, err := c.session.AccessToken()
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if shape.Body != "" {
		body = strings.NewReader(shape.Body)
	}

	req, err := http.NewRequestWithContext(ctx, shape.Method, shape.RequestURL(c.baseURL), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if shape.Body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for name, values := range shape.Header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read graph response: %w", err)
	}

	c.logger.Debug().
		Str("method", shape.Method).
		Str("path", shape.Path).
		Int("status", resp.StatusCode).
		Int("bytes", len(data)).
		Msg("graph request completed")

	return &RawResult{Status: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
