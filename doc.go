// Package hubclient is the Go client SDK for the CodeSecHub platform: the
// blog, forum, and resource APIs, an authenticated session with automatic
// token refresh, cached domain stores, and a navigation layer with an
// authentication guard.
//
// # Quick Start
//
// Load the configuration from the environment, build a client, and restore
// any persisted session before navigating:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	hub, err := hubclient.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer hub.Close()
//
//	ctx := context.Background()
//	hub.Init(ctx)
//
//	if _, err := hub.Session.Login(ctx, api.Credentials{
//	    Username: "alice",
//	    Password: "secret",
//	}); err != nil {
//	    log.Fatal(err)
//	}
//
//	articles, err := hub.BlogStore.FetchArticles(ctx, api.ArticleListParams{Page: 1})
//
// # Sessions
//
// The session store owns the token pair. Expired access tokens are refreshed
// transparently through [session.Store.EnsureFreshToken]; five consecutive
// failed logins lock the account client-side for thirty minutes. A 401 from
// any endpoint purges the stored credentials and forces navigation to the
// login screen.
//
// # Stores
//
// Domain stores cache what they fetch and patch their caches after
// successful writes, so consumers rendering lists need not re-fetch after
// creating, editing, or deleting an item.
//
// # Navigation
//
// The router resolves paths against the platform's route table, redirects
// guarded routes to /login with a redirect-back parameter, and records
// visits to guarded screens in the persisted visit history.
package hubclient
