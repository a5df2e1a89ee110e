package store

import (
	"context"
	"sync"

	"github.com/codesechub/hubclient/api"
)

// UserStore caches the authenticated user's profile for views that edit
// it. The session keeps its own copy for authorization checks; this one
// only backs the profile screen.
type UserStore struct {
	client *api.Auth

	mu      sync.Mutex
	profile *api.UserProfile
	loading bool
	errMsg  string
}

// NewUserStore creates the user store over the auth API.
func NewUserStore(client *api.Auth) *UserStore {
	return &UserStore{client: client}
}

// FetchProfile loads the profile into the cache.
func (s *UserStore) FetchProfile(ctx context.Context) (api.UserProfile, error) {
	s.begin()
	profile, err := s.client.Profile(ctx)
	if err != nil {
		s.fail(err)
		return api.UserProfile{}, err
	}
	s.set(profile)
	return profile, nil
}

// UpdateProfile applies a partial edit and caches the returned profile.
func (s *UserStore) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (api.UserProfile, error) {
	s.begin()
	profile, err := s.client.UpdateProfile(ctx, update)
	if err != nil {
		s.fail(err)
		return api.UserProfile{}, err
	}
	s.set(profile)
	return profile, nil
}

// Profile returns the cached profile, if loaded.
func (s *UserStore) Profile() (api.UserProfile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return api.UserProfile{}, false
	}
	return *s.profile, true
}

// Loading reports whether an action is in flight.
func (s *UserStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// ErrorMessage returns the message from the last failed action, or an
// empty string.
func (s *UserStore) ErrorMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Reset drops the cached profile and flags.
func (s *UserStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	s.loading = false
	s.errMsg = ""
}

func (s *UserStore) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	s.errMsg = ""
}

func (s *UserStore) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.errMsg = err.Error()
}

func (s *UserStore) set(profile api.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = &profile
	s.loading = false
}
