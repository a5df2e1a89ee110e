package hubclient

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/codesechub/hubclient/api"
	"github.com/codesechub/hubclient/apiclient"
	"github.com/codesechub/hubclient/config"
	"github.com/codesechub/hubclient/logger"
	"github.com/codesechub/hubclient/router"
	"github.com/codesechub/hubclient/session"
	"github.com/codesechub/hubclient/storage"
	"github.com/codesechub/hubclient/store"
)

// Client aggregates the SDK: typed API modules, the session store, the
// domain stores, and the router, all wired over one HTTP client and one
// storage backend.
type Client struct {
	Auth      *api.Auth
	Blog      *api.Blog
	Forum     *api.Forum
	Resources *api.Resources

	Session *session.Store
	Router  *router.Router

	BlogStore     *store.BlogStore
	ForumStore    *store.ForumStore
	ResourceStore *store.ResourceStore
	UserStore     *store.UserStore

	log     *slog.Logger
	storage storage.Storage
	closers []func() error
}

// New builds a fully wired client from the configuration.
//
// The storage backend follows the configuration unless overridden:
// Redis when REDIS_URL is set, a JSON file when STORAGE_PATH is set,
// in-memory otherwise. Call Init before the first guarded navigation and
// Close when done.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	log := o.log
	if log == nil {
		if cfg.Debug {
			log = logger.NewDebug(logger.WithRequestID())
		} else {
			log = logger.NewWithSentry(cfg.Sentry, logger.WithRequestID())
		}
	}

	c := &Client{log: log}

	st := o.storage
	if st == nil {
		backend, closer, err := newStorage(cfg)
		if err != nil {
			return nil, err
		}
		st = backend
		if closer != nil {
			c.closers = append(c.closers, closer)
		}
	}
	c.storage = st

	// Both callbacks close over c: the router and session they reach for
	// are assigned further down, after the HTTP client exists.
	navigate := func(path string) {
		if c.Router == nil {
			return
		}
		if _, err := c.Router.Navigate(context.Background(), path); err != nil {
			log.Error("forced navigation failed", slog.String("path", path), slog.String("error", err.Error()))
		}
	}
	onUnauthorized := func() {
		if c.Session != nil {
			c.Session.Forget()
		}
	}

	clientOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.RequestTimeout),
		apiclient.WithStorage(st),
		apiclient.WithLogger(log),
		apiclient.WithNavigate(navigate),
		apiclient.WithUnauthorizedHook(onUnauthorized),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(o.httpClient))
	}
	httpClient := apiclient.New(cfg.APIBaseURL, clientOpts...)

	c.Auth = api.NewAuth(httpClient)
	c.Blog = api.NewBlog(httpClient)
	c.Forum = api.NewForum(httpClient)
	c.Resources = api.NewResources(httpClient)

	c.Session = session.NewStore(c.Auth, st,
		session.WithLogger(log),
		session.WithNavigate(navigate),
	)

	routes := o.routes
	if routes == nil {
		routes = router.DefaultRoutes()
	}
	routerOpts := []router.Option{
		router.WithAuthorizer(c.Session),
		router.WithStorage(st),
		router.WithLogger(log),
	}
	if o.progress != nil {
		routerOpts = append(routerOpts, router.WithProgress(o.progress))
	}
	if o.titleFunc != nil {
		routerOpts = append(routerOpts, router.WithTitleFunc(o.titleFunc))
	}
	c.Router = router.New(routes, routerOpts...)

	c.BlogStore = store.NewBlogStore(c.Blog)
	c.ForumStore = store.NewForumStore(c.Forum)
	c.ResourceStore = store.NewResourceStore(c.Resources)
	c.UserStore = store.NewUserStore(c.Auth)

	return c, nil
}

// Init restores the persisted session, if any. Call it once, before the
// first guarded navigation or authenticated request.
func (c *Client) Init(ctx context.Context) {
	c.Session.InitFromStorage(ctx)
}

// Reset drops every cached store value. The session and persisted storage
// are untouched; use Session.Logout to end the session.
func (c *Client) Reset() {
	c.BlogStore.Reset()
	c.ForumStore.Reset()
	c.ResourceStore.Reset()
	c.UserStore.Reset()
}

// Close releases resources held by the storage backend.
func (c *Client) Close() error {
	var firstErr error
	for _, closer := range c.closers {
		if err := closer(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// newStorage builds the configured storage backend and, when the backend
// holds a connection, its closer.
func newStorage(cfg config.Config) (storage.Storage, func() error, error) {
	switch {
	case cfg.RedisURL != "":
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("hubclient: parse redis url: %w", err)
		}
		client := redis.NewClient(redisOpts)
		return storage.NewRedis(client, storage.WithPrefix(cfg.RedisPrefix)), client.Close, nil

	case cfg.StoragePath != "":
		fileStore, err := storage.NewFile(cfg.StoragePath)
		if err != nil {
			return nil, nil, fmt.Errorf("hubclient: open storage file: %w", err)
		}
		return fileStore, nil, nil

	default:
		return storage.NewMemory(), nil, nil
	}
}
