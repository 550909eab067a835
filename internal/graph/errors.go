package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the token lifecycle.
var (
	// ErrAuthExpired indicates the access token was rejected and could
	// not be recovered by a refresh. The user must log in again.
	ErrAuthExpired = errors.New("graph: authorization expired, please log in again")

	// ErrNoRefreshToken indicates a refresh was required but no refresh
	// token is held by the session.
	ErrNoRefreshToken = errors.New("graph: no refresh token available")

	// ErrNoToken indicates no token is stored yet.
	ErrNoToken = errors.New("graph: no token stored")
)

// UpstreamError carries a non-2xx Graph response: status code, reason
// phrase, and body text.
type UpstreamError struct {
	Status int
	Reason string
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("graph: request failed with %d %s: %s", e.Status, e.Reason, e.Body)
}

// ScopeError is a 403 whose body indicates a missing permission scope.
// It carries a distinguished message instructing the caller to re-run
// with broader authorization.
type ScopeError struct {
	Status int
	Body   string
}

func (e *ScopeError) Error() string {
	return "graph: permission denied due to missing scope; re-run the server " +
		"in org mode (--org-mode) or grant the required Graph API scopes, " +
		"then log in again"
}

// bodyIndicatesMissingScope reports whether a 403 error body names a
// scope/permission problem rather than a plain authorization failure.
func bodyIndicatesMissingScope(body string) bool {
	return strings.Contains(strings.ToLower(body), "scope")
}
