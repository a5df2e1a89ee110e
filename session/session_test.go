package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesechub/hubclient/api"
	"github.com/codesechub/hubclient/apiclient"
	"github.com/codesechub/hubclient/session"
	"github.com/codesechub/hubclient/storage"
)

// fakeClock is a controllable wall clock.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// authBackend is a scripted auth server counting hits per endpoint.
type authBackend struct {
	loginFails   atomic.Bool
	loginHits    atomic.Int64
	refreshHits  atomic.Int64
	logoutHits   atomic.Int64
	logoutFails  atomic.Bool
	refreshFails atomic.Bool
	rotate       atomic.Bool

	accessToken  string
	refreshToken string
}

func (b *authBackend) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/users/login/", func(w http.ResponseWriter, r *http.Request) {
		b.loginHits.Add(1)
		if b.loginFails.Load() {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"status":"error","message":"invalid credentials"}`))
			return
		}
		b.writeAuthResponse(t, w)
	})

	mux.HandleFunc("/users/register/", func(w http.ResponseWriter, r *http.Request) {
		b.writeAuthResponse(t, w)
	})

	mux.HandleFunc("/users/refresh/", func(w http.ResponseWriter, r *http.Request) {
		b.refreshHits.Add(1)
		if b.refreshFails.Load() {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"status":"error","message":"invalid refresh token"}`))
			return
		}
		data := map[string]string{"access": b.accessToken}
		if b.rotate.Load() {
			data["refresh"] = b.refreshToken
		}
		writeEnvelope(t, w, data)
	})

	mux.HandleFunc("/users/logout/", func(w http.ResponseWriter, r *http.Request) {
		b.logoutHits.Add(1)
		if b.logoutFails.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		writeEnvelope(t, w, nil)
	})

	return mux
}

func (b *authBackend) writeAuthResponse(t *testing.T, w http.ResponseWriter) {
	t.Helper()
	writeEnvelope(t, w, map[string]any{
		"access":  b.accessToken,
		"refresh": b.refreshToken,
		"user": map[string]any{
			"id":       1,
			"username": "alice",
			"email":    "alice@example.com",
			"role":     "writer",
		},
	})
}

func writeEnvelope(t *testing.T, w http.ResponseWriter, data any) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{
		"status": "success",
		"data":   data,
	}))
}

// newTestStore wires a session store against the scripted backend.
func newTestStore(t *testing.T, backend *authBackend, clk *fakeClock, opts ...session.Option) (*session.Store, *storage.Memory) {
	t.Helper()

	srv := httptest.NewServer(backend.handler(t))
	t.Cleanup(srv.Close)

	st := storage.NewMemory()
	client := apiclient.New(srv.URL, apiclient.WithStorage(st))
	opts = append([]session.Option{session.WithClock(clk.Now)}, opts...)
	return session.NewStore(api.NewAuth(client), st, opts...), st
}

func TestLogin(t *testing.T) {
	t.Parallel()

	t.Run("success stores tokens and profile", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{
			accessToken:  signedToken(t, clk.Now().Add(time.Hour)),
			refreshToken: "refresh-1",
		}
		s, st := newTestStore(t, backend, clk)

		resp, err := s.Login(ctx, api.Credentials{Username: "alice", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "alice", resp.User.Username)

		assert.True(t, s.IsAuthenticated())
		assert.Equal(t, backend.accessToken, s.AccessToken())
		assert.Equal(t, clk.Now(), s.LastLoginAt())

		stored, err := st.Get(ctx, storage.KeyAccessToken)
		require.NoError(t, err)
		assert.Equal(t, backend.accessToken, stored)
		stored, err = st.Get(ctx, storage.KeyRefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "refresh-1", stored)

		user, err := storage.GetJSON[api.UserProfile](ctx, st, storage.KeyUser)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("failure increments attempt counter and re-raises", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{}
		backend.loginFails.Store(true)
		s, _ := newTestStore(t, backend, clk)

		_, err := s.Login(ctx, api.Credentials{Username: "alice", Password: "bad"})
		require.ErrorIs(t, err, apiclient.ErrHTTP)
		assert.Equal(t, 1, s.FailedAttempts())
		assert.True(t, s.LockedUntil().IsZero())
	})
}

func TestLoginLockout(t *testing.T) {
	t.Parallel()

	t.Run("fifth failure arms a 30 minute lockout", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{}
		backend.loginFails.Store(true)
		s, _ := newTestStore(t, backend, clk)

		creds := api.Credentials{Username: "alice", Password: "bad"}
		for range 5 {
			_, err := s.Login(ctx, creds)
			require.Error(t, err)
			require.NotErrorIs(t, err, session.ErrLocked)
		}
		assert.Equal(t, 5, s.FailedAttempts())
		assert.Equal(t, clk.Now().Add(30*time.Minute), s.LockedUntil())
		assert.EqualValues(t, 5, backend.loginHits.Load())

		// Sixth attempt is rejected locally: no network call.
		_, err := s.Login(ctx, creds)
		require.ErrorIs(t, err, session.ErrLocked)

		var lockErr *session.LockoutError
		require.ErrorAs(t, err, &lockErr)
		assert.Equal(t, 30, lockErr.Minutes)
		assert.EqualValues(t, 5, backend.loginHits.Load())
	})

	t.Run("remaining minutes rounded up", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{}
		backend.loginFails.Store(true)
		s, _ := newTestStore(t, backend, clk)

		creds := api.Credentials{Username: "alice", Password: "bad"}
		for range 5 {
			s.Login(ctx, creds)
		}

		clk.Advance(29*time.Minute + 30*time.Second)
		_, err := s.Login(ctx, creds)
		var lockErr *session.LockoutError
		require.ErrorAs(t, err, &lockErr)
		assert.Equal(t, 1, lockErr.Minutes)
	})

	t.Run("expired lockout lets attempts through again", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{}
		backend.loginFails.Store(true)
		s, _ := newTestStore(t, backend, clk)

		creds := api.Credentials{Username: "alice", Password: "bad"}
		for range 5 {
			s.Login(ctx, creds)
		}
		clk.Advance(31 * time.Minute)

		backend.loginFails.Store(false)
		backend.accessToken = signedToken(t, clk.Now().Add(time.Hour))

		_, err := s.Login(ctx, creds)
		require.NoError(t, err)
		assert.EqualValues(t, 6, backend.loginHits.Load())
		assert.Equal(t, 0, s.FailedAttempts())
		assert.True(t, s.LockedUntil().IsZero())
	})
}

func TestRegister(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := newFakeClock()
	backend := &authBackend{
		accessToken:  signedToken(t, clk.Now().Add(time.Hour)),
		refreshToken: "refresh-1",
	}
	s, st := newTestStore(t, backend, clk)

	_, err := s.Register(ctx, api.Registration{
		Username:        "alice",
		Email:           "alice@example.com",
		Password:        "pw",
		PasswordConfirm: "pw",
	})
	require.NoError(t, err)

	// Registration behaves like an implicit login.
	assert.True(t, s.IsAuthenticated())
	_, err = st.Get(ctx, storage.KeyAccessToken)
	assert.NoError(t, err)
	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	t.Run("clears state and navigates even when remote call fails", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{
			accessToken:  signedToken(t, clk.Now().Add(time.Hour)),
			refreshToken: "refresh-1",
		}
		backend.logoutFails.Store(true)

		var navigatedTo string
		s, st := newTestStore(t, backend, clk, session.WithNavigate(func(p string) { navigatedTo = p }))

		_, err := s.Login(ctx, api.Credentials{Username: "alice", Password: "pw"})
		require.NoError(t, err)

		s.Logout(ctx)

		assert.False(t, s.IsAuthenticated())
		assert.Empty(t, s.AccessToken())
		_, ok := s.User()
		assert.False(t, ok)

		for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser} {
			_, err := st.Get(ctx, key)
			assert.ErrorIs(t, err, storage.ErrNotFound, "key %s should be cleared", key)
		}
		assert.Equal(t, "/login", navigatedTo)
		assert.EqualValues(t, 1, backend.logoutHits.Load())
	})
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	t.Run("replaces access token", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{
			accessToken:  signedToken(t, clk.Now().Add(time.Hour)),
			refreshToken: "refresh-1",
		}
		s, st := newTestStore(t, backend, clk)

		_, err := s.Login(ctx, api.Credentials{Username: "alice", Password: "pw"})
		require.NoError(t, err)

		rotated := signedToken(t, clk.Now().Add(2*time.Hour))
		backend.accessToken = rotated

		require.NoError(t, s.Refresh(ctx))
		assert.Equal(t, rotated, s.AccessToken())

		stored, err := st.Get(ctx, storage.KeyAccessToken)
		require.NoError(t, err)
		assert.Equal(t, rotated, stored)

		// Server did not rotate the refresh token: the old one is kept.
		stored, err = st.Get(ctx, storage.KeyRefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "refresh-1", stored)
	})

	t.Run("adopts rotated refresh token", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{
			accessToken:  signedToken(t, clk.Now().Add(time.Hour)),
			refreshToken: "refresh-1",
		}
		s, st := newTestStore(t, backend, clk)

		_, err := s.Login(ctx, api.Credentials{Username: "alice", Password: "pw"})
		require.NoError(t, err)

		backend.refreshToken = "refresh-2"
		backend.rotate.Store(true)

		require.NoError(t, s.Refresh(ctx))
		stored, err := st.Get(ctx, storage.KeyRefreshToken)
		require.NoError(t, err)
		assert.Equal(t, "refresh-2", stored)
	})

	t.Run("failure logs the session out", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{
			accessToken:  signedToken(t, clk.Now().Add(time.Hour)),
			refreshToken: "refresh-1",
		}
		var navigatedTo string
		s, st := newTestStore(t, backend, clk, session.WithNavigate(func(p string) { navigatedTo = p }))

		_, err := s.Login(ctx, api.Credentials{Username: "alice", Password: "pw"})
		require.NoError(t, err)

		backend.refreshFails.Store(true)
		require.Error(t, s.Refresh(ctx))

		assert.False(t, s.IsAuthenticated())
		_, err = st.Get(ctx, storage.KeyAccessToken)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.Equal(t, "/login", navigatedTo)
	})

	t.Run("without refresh token logs out immediately", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{}
		var navigatedTo string
		s, _ := newTestStore(t, backend, clk, session.WithNavigate(func(p string) { navigatedTo = p }))

		err := s.Refresh(ctx)
		require.ErrorIs(t, err, session.ErrNoRefreshToken)
		assert.EqualValues(t, 0, backend.refreshHits.Load())
		assert.Equal(t, "/login", navigatedTo)
	})
}

func TestEnsureFreshToken(t *testing.T) {
	t.Parallel()

	t.Run("valid token reports true without side effects", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{
			accessToken:  signedToken(t, clk.Now().Add(time.Hour)),
			refreshToken: "refresh-1",
		}
		s, _ := newTestStore(t, backend, clk)
		_, err := s.Login(ctx, api.Credentials{Username: "alice", Password: "pw"})
		require.NoError(t, err)

		assert.True(t, s.EnsureFreshToken(ctx))
		assert.EqualValues(t, 0, backend.refreshHits.Load())
	})

	t.Run("expired token triggers refresh", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{
			accessToken:  signedToken(t, clk.Now().Add(time.Minute)),
			refreshToken: "refresh-1",
		}
		s, _ := newTestStore(t, backend, clk)
		_, err := s.Login(ctx, api.Credentials{Username: "alice", Password: "pw"})
		require.NoError(t, err)

		clk.Advance(2 * time.Minute)
		require.False(t, s.IsAuthenticated())

		backend.accessToken = signedToken(t, clk.Now().Add(time.Hour))
		assert.True(t, s.EnsureFreshToken(ctx))
		assert.EqualValues(t, 1, backend.refreshHits.Load())
		assert.True(t, s.IsAuthenticated())
	})

	t.Run("no tokens reports false without refresh", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{}
		s, _ := newTestStore(t, backend, clk)

		assert.False(t, s.EnsureFreshToken(ctx))
		assert.EqualValues(t, 0, backend.refreshHits.Load())
	})

	t.Run("concurrent callers share one refresh", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		backend := &authBackend{
			accessToken:  signedToken(t, clk.Now().Add(time.Minute)),
			refreshToken: "refresh-1",
		}
		s, _ := newTestStore(t, backend, clk)
		_, err := s.Login(ctx, api.Credentials{Username: "alice", Password: "pw"})
		require.NoError(t, err)

		clk.Advance(2 * time.Minute)
		backend.accessToken = signedToken(t, clk.Now().Add(time.Hour))

		var wg sync.WaitGroup
		results := make([]bool, 8)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = s.EnsureFreshToken(ctx)
			}()
		}
		wg.Wait()

		for _, ok := range results {
			assert.True(t, ok)
		}
		assert.LessOrEqual(t, backend.refreshHits.Load(), int64(2))
	})
}

func TestInitFromStorage(t *testing.T) {
	t.Parallel()

	t.Run("restores tokens and profile", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		st := storage.NewMemory()
		token := signedToken(t, clk.Now().Add(time.Hour))
		require.NoError(t, st.Set(ctx, storage.KeyAccessToken, token))
		require.NoError(t, st.Set(ctx, storage.KeyRefreshToken, "refresh-1"))
		require.NoError(t, storage.SetJSON(ctx, st, storage.KeyUser, api.UserProfile{Username: "alice", Role: "admin"}))

		s := session.NewStore(api.NewAuth(apiclient.New("http://localhost:0")), st, session.WithClock(clk.Now))
		s.InitFromStorage(ctx)

		assert.True(t, s.IsAuthenticated())
		user, ok := s.User()
		require.True(t, ok)
		assert.Equal(t, "alice", user.Username)
		assert.True(t, s.IsAdmin())
	})

	t.Run("tolerates garbled profile", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		st := storage.NewMemory()
		require.NoError(t, st.Set(ctx, storage.KeyUser, "{broken json"))

		s := session.NewStore(api.NewAuth(apiclient.New("http://localhost:0")), st, session.WithClock(clk.Now))
		s.InitFromStorage(ctx)

		_, ok := s.User()
		assert.False(t, ok)
	})

	t.Run("tolerates partial state", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		clk := newFakeClock()
		st := storage.NewMemory()
		// A crash between the two token writes leaves only the access token.
		require.NoError(t, st.Set(ctx, storage.KeyAccessToken, "garbled-token"))

		s := session.NewStore(api.NewAuth(apiclient.New("http://localhost:0")), st, session.WithClock(clk.Now))
		s.InitFromStorage(ctx)

		// Garbled token reads as expired, not as an error.
		assert.False(t, s.IsAuthenticated())
	})
}

func TestRoles(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role     string
		perms    []string
		isAdmin  bool
		isWriter bool
	}{
		{role: "admin", isAdmin: true, isWriter: true, perms: []string{"admin", "write"}},
		{role: "editor", isWriter: true, perms: []string{"write"}},
		{role: "writer", isWriter: true, perms: []string{"write"}},
		{role: "moderator", perms: []string{"moderate"}},
		{role: "member", perms: nil},
	}

	for _, tc := range cases {
		t.Run(tc.role, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			st := storage.NewMemory()
			require.NoError(t, storage.SetJSON(ctx, st, storage.KeyUser, api.UserProfile{Username: "u", Role: tc.role}))

			s := session.NewStore(api.NewAuth(apiclient.New("http://localhost:0")), st)
			s.InitFromStorage(ctx)

			assert.Equal(t, tc.isAdmin, s.IsAdmin())
			assert.Equal(t, tc.isWriter, s.IsWriter())
			assert.Equal(t, tc.perms, s.Permissions())
		})
	}
}

func TestUnauthorizedPurge(t *testing.T) {
	t.Parallel()

	// Full 401 scenario: a valid session, then the server rejects a call
	// with 401. Tokens are purged, memory dropped, navigation forced.
	ctx := context.Background()
	clk := newFakeClock()

	var reject atomic.Bool
	backend := &authBackend{
		accessToken:  signedToken(t, clk.Now().Add(time.Hour)),
		refreshToken: "refresh-1",
	}
	inner := backend.handler(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reject.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"status":"error","message":"token revoked"}`))
			return
		}
		inner.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	st := storage.NewMemory()
	var navigatedTo string
	var s *session.Store
	client := apiclient.New(srv.URL,
		apiclient.WithStorage(st),
		apiclient.WithNavigate(func(p string) { navigatedTo = p }),
		apiclient.WithUnauthorizedHook(func() { s.Forget() }),
	)
	auth := api.NewAuth(client)
	s = session.NewStore(auth, st, session.WithClock(clk.Now))

	_, err := s.Login(ctx, api.Credentials{Username: "alice", Password: "pw"})
	require.NoError(t, err)
	require.True(t, s.IsAuthenticated())

	reject.Store(true)
	_, err = auth.Profile(ctx)
	require.ErrorIs(t, err, apiclient.ErrHTTP)

	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.AccessToken())
	_, err = st.Get(ctx, storage.KeyAccessToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = st.Get(ctx, storage.KeyRefreshToken)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, "/login", navigatedTo)
}
