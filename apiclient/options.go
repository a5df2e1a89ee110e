package apiclient

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/codesechub/hubclient/storage"
)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
// Useful for testing with httptest servers or injecting custom transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
// Defaults to 30 seconds.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithStorage sets the persisted store the client reads the access token
// from and purges credentials in when the server returns 401.
func WithStorage(s storage.Storage) Option {
	return func(c *Client) {
		c.storage = s
	}
}

// WithTokenFunc overrides how the bearer token is resolved per request.
// By default the token is read from storage under storage.KeyAccessToken.
func WithTokenFunc(fn func(ctx context.Context) string) Option {
	return func(c *Client) {
		c.tokenFunc = fn
	}
}

// WithNavigate sets the navigation callback invoked on 401 responses to
// force the application to the login screen.
func WithNavigate(fn func(path string)) Option {
	return func(c *Client) {
		c.navigate = fn
	}
}

// WithUnauthorizedHook sets an extra callback invoked after a 401 purge,
// before navigation. The session store registers itself here so its
// in-memory state is dropped together with the persisted tokens.
func WithUnauthorizedHook(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// WithLogger sets the request/response logger.
// Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}
