package hubclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesechub/hubclient"
	"github.com/codesechub/hubclient/api"
	"github.com/codesechub/hubclient/config"
	"github.com/codesechub/hubclient/storage"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1,
		"exp":     exp.Unix(),
	})
	signed, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func writeData(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"status": "success", "data": v}))
}

// platformStub serves the handful of endpoints the facade tests touch.
type platformStub struct {
	accessToken string
	rejectAll   atomic.Bool
}

func (p *platformStub) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/users/login/", func(w http.ResponseWriter, r *http.Request) {
		writeData(t, w, api.AuthResponse{
			Access:  p.accessToken,
			Refresh: "refresh-1",
			User:    api.UserProfile{ID: 1, Username: "alice", Role: "writer"},
		})
	})
	mux.HandleFunc("GET /api/users/profile/", func(w http.ResponseWriter, r *http.Request) {
		if p.rejectAll.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]any{"status": "error", "message": "token invalid"})
			return
		}
		writeData(t, w, api.UserProfile{ID: 1, Username: "alice", Role: "writer"})
	})
	mux.HandleFunc("GET /api/blog/articles/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer "+p.accessToken, r.Header.Get("Authorization"))
		writeData(t, w, api.ListResponse[api.Article]{
			Count:   1,
			Results: []api.Article{{ID: 1, Title: "hello", Slug: "hello"}},
		})
	})
	return mux
}

func newClient(t *testing.T, baseURL string) (*hubclient.Client, *storage.Memory) {
	t.Helper()
	st := storage.NewMemory()
	c, err := hubclient.New(config.Config{
		APIBaseURL:     baseURL + "/api",
		RequestTimeout: 5 * time.Second,
	}, hubclient.WithStorage(st))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, c.Close()) })
	return c, st
}

func TestClientLoginAndFetch(t *testing.T) {
	t.Parallel()

	stub := &platformStub{accessToken: signedToken(t, time.Now().Add(time.Hour))}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	c, st := newClient(t, srv.URL)
	c.Init(t.Context())

	_, err := c.Session.Login(t.Context(), api.Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)
	require.True(t, c.Session.IsAuthenticated())

	// The API client picks the stored token up without extra wiring.
	stored, err := st.Get(t.Context(), storage.KeyAccessToken)
	require.NoError(t, err)
	assert.Equal(t, stub.accessToken, stored)

	articles, err := c.BlogStore.FetchArticles(t.Context(), api.ArticleListParams{Page: 1})
	require.NoError(t, err)
	require.Len(t, articles, 1)

	m, err := c.Router.Navigate(t.Context(), "/settings")
	require.NoError(t, err)
	assert.Equal(t, "Settings", m.Route.Name)

	history, err := c.Router.VisitHistory(t.Context())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "/settings", history[0].Path)
}

func TestClientUnauthorizedPurgesEverything(t *testing.T) {
	t.Parallel()

	stub := &platformStub{accessToken: signedToken(t, time.Now().Add(time.Hour))}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	c, st := newClient(t, srv.URL)
	c.Init(t.Context())

	_, err := c.Session.Login(t.Context(), api.Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	stub.rejectAll.Store(true)
	_, err = c.UserStore.FetchProfile(t.Context())
	require.Error(t, err)

	assert.False(t, c.Session.IsAuthenticated())
	_, err = st.Get(t.Context(), storage.KeyAccessToken)
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = st.Get(t.Context(), storage.KeyRefreshToken)
	require.ErrorIs(t, err, storage.ErrNotFound)

	current, ok := c.Router.Current()
	require.True(t, ok, "a 401 must force navigation")
	assert.Equal(t, "Login", current.Route.Name)
}

func TestClientGuardedNavigationWithoutSession(t *testing.T) {
	t.Parallel()

	c, _ := newClient(t, "http://localhost:1")
	c.Init(t.Context())

	m, err := c.Router.Navigate(t.Context(), "/blog/create")
	require.NoError(t, err)
	assert.Equal(t, "Login", m.Route.Name)
	assert.Equal(t, "/blog/create", m.Query.Get("redirect"))
}

func TestClientReset(t *testing.T) {
	t.Parallel()

	stub := &platformStub{accessToken: signedToken(t, time.Now().Add(time.Hour))}
	srv := httptest.NewServer(stub.handler(t))
	defer srv.Close()

	c, _ := newClient(t, srv.URL)
	_, err := c.Session.Login(t.Context(), api.Credentials{Username: "alice", Password: "secret"})
	require.NoError(t, err)

	_, err = c.BlogStore.FetchArticles(t.Context(), api.ArticleListParams{})
	require.NoError(t, err)
	require.NotEmpty(t, c.BlogStore.Items())

	c.Reset()
	assert.Empty(t, c.BlogStore.Items())
	assert.True(t, c.Session.IsAuthenticated(), "reset must not end the session")
}

func TestNewStorageBackends(t *testing.T) {
	t.Parallel()

	t.Run("file backend", func(t *testing.T) {
		t.Parallel()
		c, err := hubclient.New(config.Config{
			APIBaseURL:     "http://localhost:8000/api",
			RequestTimeout: time.Second,
			StoragePath:    t.TempDir() + "/session.json",
		})
		require.NoError(t, err)
		require.NoError(t, c.Close())
	})

	t.Run("bad redis url", func(t *testing.T) {
		t.Parallel()
		_, err := hubclient.New(config.Config{
			APIBaseURL:     "http://localhost:8000/api",
			RequestTimeout: time.Second,
			RedisURL:       "not-a-redis-url",
		})
		require.Error(t, err)
	})
}
