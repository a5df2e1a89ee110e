// Package apiclient implements the shared HTTP client underneath all domain
// API modules. It injects authentication and tracing headers on the way out,
// unwraps the platform's status envelope on the way in, and normalizes every
// failure path into a single RequestError shape.
//
// The client is the only component allowed to touch persisted credentials
// outside the session store: a 401 response purges the stored tokens and
// forces navigation to the login screen.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codesechub/hubclient/logger"
	"github.com/codesechub/hubclient/requestid"
	"github.com/codesechub/hubclient/storage"
)

// defaultTimeout aborts stuck requests; such failures surface as ErrNetwork.
const defaultTimeout = 30 * time.Second

// envelope is the wrapper around every API response.
type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Multipart marks an outbound body as a prepared multipart/binary payload.
// The client sends it as-is and uses ContentType instead of application/json.
type Multipart struct {
	Body        io.Reader
	ContentType string
}

// Client is the shared HTTP client. All domain API modules route their
// requests through it.
type Client struct {
	httpClient     *http.Client
	storage        storage.Storage
	tokenFunc      func(ctx context.Context) string
	navigate       func(path string)
	onUnauthorized func()
	log            *slog.Logger
	baseURL        string
}

// New creates a client for the given API base URL (e.g. "https://host/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        logger.NewNope(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request performs an HTTP request against the API and returns the unwrapped
// payload from the success envelope. Every failure is a *RequestError.
func (c *Client) Request(ctx context.Context, method, path string, body any, params url.Values) (json.RawMessage, error) {
	reqID := requestid.New()
	ctx = requestid.WithContext(ctx, reqID)

	req, err := c.buildRequest(ctx, method, path, body, params, reqID)
	if err != nil {
		c.log.ErrorContext(ctx, "failed to build api request",
			slog.String("method", method), slog.String("path", path), slog.String("error", err.Error()))
		return nil, newConfigError()
	}

	c.log.DebugContext(ctx, "api request",
		slog.String("method", method), slog.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "api request failed",
			slog.String("method", method), slog.String("path", path), slog.String("error", err.Error()))
		return nil, newNetworkError()
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newNetworkError()
	}

	c.log.DebugContext(ctx, "api response",
		slog.String("method", method), slog.String("path", path), slog.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.handleHTTPError(ctx, resp.StatusCode, raw)
	}

	// Some endpoints (e.g. DELETE) respond with an empty body on success.
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Status != "success" {
		return nil, newBusinessError(env.Message, raw)
	}
	return env.Data, nil
}

// buildRequest constructs the outbound request with auth and tracing headers.
func (c *Client) buildRequest(ctx context.Context, method, path string, body any, params url.Values, reqID string) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if len(params) > 0 {
		u.RawQuery = params.Encode()
	}

	var (
		reader      io.Reader
		contentType = "application/json"
	)
	switch b := body.(type) {
	case nil:
	case *Multipart:
		reader = b.Body
		contentType = b.ContentType
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-CSRF-Protection", "1")
	req.Header.Set("X-Content-Type-Options", "nosniff")
	req.Header.Set("X-Request-ID", reqID)

	if token := c.accessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// accessToken resolves the bearer token for the current request.
func (c *Client) accessToken(ctx context.Context) string {
	if c.tokenFunc != nil {
		return c.tokenFunc(ctx)
	}
	if c.storage == nil {
		return ""
	}
	token, err := c.storage.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		return ""
	}
	return token
}

// handleHTTPError maps a non-2xx response to a RequestError. A 401 purges
// the persisted credentials and forces navigation to the login screen.
func (c *Client) handleHTTPError(ctx context.Context, status int, raw []byte) error {
	var env envelope
	_ = json.Unmarshal(raw, &env)

	c.log.ErrorContext(ctx, "api http error",
		slog.Int("status", status), slog.String("message", env.Message))

	if status == http.StatusUnauthorized {
		c.purgeCredentials(ctx)
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		if c.navigate != nil {
			c.navigate("/login")
		}
	}
	return newHTTPError(status, env.Message, raw)
}

// purgeCredentials drops the stored tokens after a 401.
func (c *Client) purgeCredentials(ctx context.Context) {
	if c.storage == nil {
		return
	}
	if err := c.storage.Delete(ctx, storage.KeyAccessToken); err != nil {
		c.log.ErrorContext(ctx, "failed to purge access token", slog.String("error", err.Error()))
	}
	if err := c.storage.Delete(ctx, storage.KeyRefreshToken); err != nil {
		c.log.ErrorContext(ctx, "failed to purge refresh token", slog.String("error", err.Error()))
	}
}

// Get performs a GET request and decodes the payload into T.
func Get[T any](ctx context.Context, c *Client, path string, params url.Values) (T, error) {
	return call[T](ctx, c, http.MethodGet, path, nil, params)
}

// Post performs a POST request and decodes the payload into T.
func Post[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return call[T](ctx, c, http.MethodPost, path, body, nil)
}

// Put performs a PUT request and decodes the payload into T.
func Put[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	return call[T](ctx, c, http.MethodPut, path, body, nil)
}

// Delete performs a DELETE request, discarding any payload.
func Delete(ctx context.Context, c *Client, path string) error {
	_, err := c.Request(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// call runs the request and unmarshals the unwrapped payload into T.
// An empty or null payload yields T's zero value.
func call[T any](ctx context.Context, c *Client, method, path string, body any, params url.Values) (T, error) {
	var v T

	data, err := c.Request(ctx, method, path, body, params)
	if err != nil {
		return v, err
	}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("apiclient: decode payload: %w", err)
	}
	return v, nil
}
