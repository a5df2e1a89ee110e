// Package session owns the authenticated session: the token pair, the
// cached user profile, and the login-attempt lockout. It is the only
// component that writes credentials to persisted storage; the HTTP client
// reads the access token and purges it on 401, nothing else touches it.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/codesechub/hubclient/api"
	"github.com/codesechub/hubclient/logger"
	"github.com/codesechub/hubclient/storage"
)

const (
	// maxLoginAttempts is the number of consecutive failures that
	// triggers a lockout.
	maxLoginAttempts = 5

	// lockoutDuration is how long login stays blocked after the limit.
	lockoutDuration = 30 * time.Minute
)

// Store holds the current session state and implements the
// login/registration/logout/refresh flows.
type Store struct {
	auth     *api.Auth
	storage  storage.Storage
	navigate func(path string)
	log      *slog.Logger
	now      func() time.Time

	mu             sync.Mutex
	accessToken    string
	refreshToken   string
	user           *api.UserProfile
	lastLoginAt    time.Time
	failedAttempts int
	lockedUntil    time.Time

	refreshGroup singleflight.Group
}

// Option configures the Store.
type Option func(*Store)

// WithLogger sets the session logger. Defaults to a no-op logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// WithNavigate sets the navigation callback used by logout.
func WithNavigate(fn func(path string)) Option {
	return func(s *Store) {
		s.navigate = fn
	}
}

// WithClock overrides the wall clock. Used in tests to control token
// expiry and lockout timing.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore creates a session store over the auth API and persisted storage.
func NewStore(auth *api.Auth, st storage.Storage, opts ...Option) *Store {
	s := &Store{
		auth:    auth,
		storage: st,
		log:     logger.NewNope(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// InitFromStorage restores tokens and the cached profile from persisted
// storage. A garbled profile is dropped, not surfaced: the session simply
// starts without one. Call this once before any guarded navigation.
func (s *Store) InitFromStorage(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token, err := s.storage.Get(ctx, storage.KeyAccessToken); err == nil {
		s.accessToken = token
	}
	if token, err := s.storage.Get(ctx, storage.KeyRefreshToken); err == nil {
		s.refreshToken = token
	}

	user, err := storage.GetJSON[api.UserProfile](ctx, s.storage, storage.KeyUser)
	switch {
	case err == nil:
		s.user = &user
	case errors.Is(err, storage.ErrUnmarshal):
		s.log.WarnContext(ctx, "stored user profile is garbled, dropping it")
	}
}

// Login authenticates with the given credentials.
//
// While a lockout is active the call fails immediately with a
// *LockoutError and no request is sent. A successful login stores the
// token pair and profile and resets the failure counter; a failed one
// increments it, arming a 30-minute lockout from the 5th consecutive
// failure on, and re-raises the original error.
func (s *Store) Login(ctx context.Context, creds api.Credentials) (api.AuthResponse, error) {
	s.mu.Lock()
	now := s.now()
	if !s.lockedUntil.IsZero() && now.Before(s.lockedUntil) {
		lockedUntil := s.lockedUntil
		s.mu.Unlock()
		return api.AuthResponse{}, newLockoutError(lockedUntil, now)
	}
	s.mu.Unlock()

	// The request runs outside the lock: a 401 triggers the client's
	// unauthorized hook, which needs the lock for Forget.
	resp, err := s.auth.Login(ctx, creds)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.failedAttempts++
		if s.failedAttempts >= maxLoginAttempts {
			s.lockedUntil = s.now().Add(lockoutDuration)
			s.log.WarnContext(ctx, "login lockout armed",
				slog.Int("failed_attempts", s.failedAttempts),
				slog.Time("locked_until", s.lockedUntil))
		}
		return api.AuthResponse{}, err
	}

	s.adopt(ctx, resp)
	s.lastLoginAt = s.now()
	s.failedAttempts = 0
	s.lockedUntil = time.Time{}

	s.log.InfoContext(ctx, "login succeeded", slog.String("username", resp.User.Username))
	return resp, nil
}

// Register creates an account. On success it behaves like an implicit
// login: tokens and profile are stored. Failures do not count toward the
// login lockout.
func (s *Store) Register(ctx context.Context, reg api.Registration) (api.AuthResponse, error) {
	resp, err := s.auth.Register(ctx, reg)
	if err != nil {
		return api.AuthResponse{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.adopt(ctx, resp)
	s.log.InfoContext(ctx, "registration succeeded", slog.String("username", resp.User.Username))
	return resp, nil
}

// Logout invalidates the session remotely on a best-effort basis (a failed
// call is logged, never surfaced), then always clears in-memory and
// persisted state and navigates to the login screen.
func (s *Store) Logout(ctx context.Context) {
	if err := s.auth.Logout(ctx); err != nil {
		s.log.ErrorContext(ctx, "remote logout failed", slog.String("error", err.Error()))
	}

	s.mu.Lock()
	s.clearLocked(ctx)
	s.mu.Unlock()

	if s.navigate != nil {
		s.navigate("/login")
	}
}

// Refresh exchanges the refresh token for a new access token (and a new
// refresh token when the server rotates them). Without a refresh token, or
// on any exchange failure, the session is logged out. Concurrent callers
// share a single in-flight exchange.
func (s *Store) Refresh(ctx context.Context) error {
	_, err, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		return nil, s.refresh(ctx)
	})
	return err
}

func (s *Store) refresh(ctx context.Context) error {
	s.mu.Lock()
	refreshToken := s.refreshToken
	s.mu.Unlock()

	if refreshToken == "" {
		s.Logout(ctx)
		return ErrNoRefreshToken
	}

	resp, err := s.auth.Refresh(ctx, refreshToken)
	if err != nil {
		s.log.ErrorContext(ctx, "token refresh failed", slog.String("error", err.Error()))
		s.Logout(ctx)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.accessToken = resp.Access
	s.persist(ctx, storage.KeyAccessToken, resp.Access)
	if resp.Refresh != "" {
		s.refreshToken = resp.Refresh
		s.persist(ctx, storage.KeyRefreshToken, resp.Refresh)
	}
	return nil
}

// EnsureFreshToken reports whether the session is usable, refreshing
// first when the access token is missing or expired and a refresh token
// is available. Without a refresh token it reports current validity and
// has no side effects.
func (s *Store) EnsureFreshToken(ctx context.Context) bool {
	if s.IsAuthenticated() {
		return true
	}

	s.mu.Lock()
	hasRefresh := s.refreshToken != ""
	s.mu.Unlock()

	if !hasRefresh {
		return false
	}
	if err := s.Refresh(ctx); err != nil {
		return false
	}
	return s.IsAuthenticated()
}

// IsAuthenticated reports whether an access token is held and not expired.
// Expiry comes from the token's own exp claim; a missing or garbled token
// counts as expired.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken != "" && !TokenExpired(s.accessToken, s.now())
}

// AccessToken returns the current access token, or an empty string.
func (s *Store) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken
}

// User returns the cached profile of the authenticated user.
func (s *Store) User() (api.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return api.UserProfile{}, false
	}
	return *s.user, true
}

// LastLoginAt returns when the current session was established.
func (s *Store) LastLoginAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLoginAt
}

// FailedAttempts returns the consecutive failed login count.
func (s *Store) FailedAttempts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failedAttempts
}

// LockedUntil returns when the active lockout expires; the zero time
// means no lockout is armed.
func (s *Store) LockedUntil() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockedUntil
}

// Forget drops the in-memory session state without touching persisted
// storage or the server. The HTTP client calls this from its 401 hook,
// where it has already purged the persisted tokens itself.
func (s *Store) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.lastLoginAt = time.Time{}
}

// adopt installs the token pair and profile from a successful auth
// response, in memory and in persisted storage. Caller must hold the mutex.
func (s *Store) adopt(ctx context.Context, resp api.AuthResponse) {
	s.accessToken = resp.Access
	s.refreshToken = resp.Refresh
	user := resp.User
	s.user = &user

	s.persist(ctx, storage.KeyAccessToken, resp.Access)
	s.persist(ctx, storage.KeyRefreshToken, resp.Refresh)
	if err := storage.SetJSON(ctx, s.storage, storage.KeyUser, resp.User); err != nil {
		s.log.ErrorContext(ctx, "failed to persist user profile", slog.String("error", err.Error()))
	}
}

// clearLocked wipes in-memory and persisted session state.
// Caller must hold the mutex.
func (s *Store) clearLocked(ctx context.Context) {
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.lastLoginAt = time.Time{}

	for _, key := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser} {
		if err := s.storage.Delete(ctx, key); err != nil {
			s.log.ErrorContext(ctx, "failed to clear session key",
				slog.String("key", key), slog.String("error", err.Error()))
		}
	}
}

// persist writes a single storage key, logging failures.
func (s *Store) persist(ctx context.Context, key, value string) {
	if err := s.storage.Set(ctx, key, value); err != nil {
		s.log.ErrorContext(ctx, "failed to persist session key",
			slog.String("key", key), slog.String("error", err.Error()))
	}
}
