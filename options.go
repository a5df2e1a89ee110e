package hubclient

import (
	"log/slog"
	"net/http"

	"github.com/codesechub/hubclient/router"
	"github.com/codesechub/hubclient/storage"
)

type options struct {
	log        *slog.Logger
	storage    storage.Storage
	httpClient *http.Client
	routes     []router.Route
	progress   router.Progress
	titleFunc  func(title string)
}

// Option configures the client.
type Option func(*options)

// WithLogger replaces the configuration-driven logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithStorage replaces the configuration-driven storage backend. The
// caller owns its lifecycle; Close will not touch it.
func WithStorage(st storage.Storage) Option {
	return func(o *options) {
		o.storage = st
	}
}

// WithHTTPClient sets a custom HTTP client for all API traffic.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithRoutes replaces the built-in route table.
func WithRoutes(routes []router.Route) Option {
	return func(o *options) {
		o.routes = routes
	}
}

// WithProgress wires a navigation progress indicator.
func WithProgress(p router.Progress) Option {
	return func(o *options) {
		o.progress = p
	}
}

// WithTitleFunc wires the screen-title setter.
func WithTitleFunc(fn func(title string)) Option {
	return func(o *options) {
		o.titleFunc = fn
	}
}
