// Package router resolves navigation paths against the application's route
// table, enforcing the authentication guard and recording the visit history
// of protected screens. It is the navigation layer views go through instead
// of calling stores directly.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/codesechub/hubclient/logger"
	"github.com/codesechub/hubclient/storage"
)

const (
	// titleSuffix is appended to every routed screen title.
	titleSuffix = "CodeSecHub"

	// maxRedirects caps redirect chains so a miswired table cannot spin.
	maxRedirects = 10
)

var (
	// ErrNoRoute means the path matched nothing and no fallback route exists.
	ErrNoRoute = errors.New("router: no matching route")

	// ErrRedirectLoop means the table's redirects never reach a screen.
	ErrRedirectLoop = errors.New("router: redirect loop")
)

// Authorizer reports whether the current session may enter guarded routes.
// The session store satisfies it.
type Authorizer interface {
	IsAuthenticated() bool
}

// Progress is the navigation progress indicator, started before a path is
// resolved and finished once navigation settles.
type Progress interface {
	Start()
	Done()
}

// Match is the outcome of a navigation: the route that won, the concrete
// path, and any parameters bound from it.
type Match struct {
	Route    Route
	Path     string
	FullPath string
	Params   map[string]string
	Query    url.Values
}

// Router resolves paths and keeps the current location.
type Router struct {
	routes   []Route
	auth     Authorizer
	storage  storage.Storage
	progress Progress
	setTitle func(title string)
	log      *slog.Logger
	now      func() time.Time

	mu      sync.Mutex
	current *Match
}

// Option configures the Router.
type Option func(*Router)

// WithAuthorizer wires the authentication guard. Without one, every
// guarded route redirects to the login screen.
func WithAuthorizer(auth Authorizer) Option {
	return func(r *Router) {
		r.auth = auth
	}
}

// WithStorage enables visit-history recording in the given storage.
func WithStorage(st storage.Storage) Option {
	return func(r *Router) {
		r.storage = st
	}
}

// WithProgress wires a navigation progress indicator.
func WithProgress(p Progress) Option {
	return func(r *Router) {
		r.progress = p
	}
}

// WithTitleFunc wires the document-title setter. It receives the full
// title, suffix included.
func WithTitleFunc(fn func(title string)) Option {
	return func(r *Router) {
		r.setTitle = fn
	}
}

// WithLogger sets the router logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// WithClock overrides the wall clock used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// New creates a router over the given route table.
func New(routes []Route, opts ...Option) *Router {
	r := &Router{
		routes: routes,
		log:    logger.NewNope(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Navigate resolves fullPath (path plus optional query), runs the guard,
// and commits the winning match as the current location.
//
// An unmatched path falls back to the /404 route. A guarded route without
// an authenticated session resolves to /login with the original full path
// in the redirect query parameter, so login can send the user back.
func (r *Router) Navigate(ctx context.Context, fullPath string) (Match, error) {
	if r.progress != nil {
		r.progress.Start()
		defer r.progress.Done()
	}

	match, err := r.resolve(fullPath)
	if err != nil {
		r.log.ErrorContext(ctx, "navigation failed",
			slog.String("path", fullPath), slog.String("error", err.Error()))
		return Match{}, err
	}

	if match.Route.RequiresAuth && !r.authenticated() {
		target := "/login?redirect=" + url.QueryEscape(match.FullPath)
		r.log.InfoContext(ctx, "navigation guarded, redirecting to login",
			slog.String("path", match.FullPath))
		match, err = r.resolve(target)
		if err != nil {
			return Match{}, err
		}
	}

	if r.setTitle != nil && match.Route.Title != "" {
		r.setTitle(fmt.Sprintf("%s - %s", match.Route.Title, titleSuffix))
	}

	r.mu.Lock()
	committed := match
	r.current = &committed
	r.mu.Unlock()

	r.log.DebugContext(ctx, "navigated",
		slog.String("path", match.Path), slog.String("route", match.Route.Name))

	if match.Route.RequiresAuth {
		r.recordVisit(ctx, match)
	}
	return match, nil
}

// Current returns the committed location, if any navigation has happened.
func (r *Router) Current() (Match, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Match{}, false
	}
	return *r.current, true
}

// Resolve matches a path without committing it or running the guard.
func (r *Router) Resolve(fullPath string) (Match, error) {
	return r.resolve(fullPath)
}

func (r *Router) authenticated() bool {
	return r.auth != nil && r.auth.IsAuthenticated()
}

// resolve matches the path against the table, following redirects and
// falling back to /404 when nothing matches.
func (r *Router) resolve(fullPath string) (Match, error) {
	path := fullPath
	var query url.Values
	if i := strings.IndexByte(fullPath, '?'); i >= 0 {
		path = fullPath[:i]
		q, err := url.ParseQuery(fullPath[i+1:])
		if err != nil {
			return Match{}, fmt.Errorf("router: parse query: %w", err)
		}
		query = q
	}

	for range maxRedirects {
		route, params, ok := r.match(path)
		if !ok {
			if path == "/404" {
				return Match{}, ErrNoRoute
			}
			path, query, fullPath = "/404", nil, "/404"
			continue
		}
		if route.Redirect != "" {
			path, fullPath = route.Redirect, route.Redirect
			continue
		}
		return Match{
			Route:    route,
			Path:     path,
			FullPath: fullPath,
			Params:   params,
			Query:    query,
		}, nil
	}
	return Match{}, ErrRedirectLoop
}

// match finds the best route for a path. Static segments beat parameter
// segments, and the catch-all loses to everything; among equals the first
// table entry wins.
func (r *Router) match(path string) (Route, map[string]string, bool) {
	segments := splitPath(path)

	var (
		best       Route
		bestParams map[string]string
		bestScore  = -1
	)
	for _, route := range r.routes {
		params, score, ok := matchRoute(route, segments)
		if ok && score > bestScore {
			best, bestParams, bestScore = route, params, score
		}
	}
	if bestScore < 0 {
		return Route{}, nil, false
	}
	return best, bestParams, true
}

// matchRoute matches path segments against a route pattern. The score is
// the number of statically matched segments; the catch-all scores zero.
func matchRoute(route Route, segments []string) (map[string]string, int, bool) {
	if route.Path == CatchAll {
		return nil, 0, true
	}

	pattern := splitPath(route.Path)
	if len(pattern) != len(segments) {
		return nil, 0, false
	}

	var params map[string]string
	score := 1
	for i, p := range pattern {
		if name, ok := strings.CutPrefix(p, ":"); ok {
			if params == nil {
				params = make(map[string]string)
			}
			params[name] = segments[i]
			continue
		}
		if p != segments[i] {
			return nil, 0, false
		}
		score++
	}
	return params, score, true
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
