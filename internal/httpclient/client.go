package httpclient

import (
	"net/http"
	"time"

	"github.com/ternarybob/share-mcp/internal/common"
)

// NewDefaultHTTPClient creates a simple HTTP client with a timeout.
// A zero timeout means no client-side limit.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
	}
}

// NewHTTPClientWithBasicAuth creates an HTTP client that attaches HTTP Basic
// credentials to every request it sends.
func NewHTTPClientWithBasicAuth(user, password string, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &basicAuthTransport{
			user:     user,
			password: password,
			base:     http.DefaultTransport,
		},
	}
}

// NewHTTPClientFromConfig returns an authenticated client when both
// credentials are configured, else a plain one.
func NewHTTPClientFromConfig(config *common.Config) *http.Client {
	if config.HasBasicAuth() {
		return NewHTTPClientWithBasicAuth(config.Share.AuthUser, config.Share.AuthPassword, config.Share.Timeout)
	}
	return NewDefaultHTTPClient(config.Share.Timeout)
}

// basicAuthTransport sets the Authorization header on a clone of each request
type basicAuthTransport struct {
	user     string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.SetBasicAuth(t.user, t.password)
	return t.base.RoundTrip(clone)
}
