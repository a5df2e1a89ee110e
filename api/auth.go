package api

import (
	"context"

	"github.com/codesechub/hubclient/apiclient"
)

// Credentials are the login request body.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the sign-up request body. PasswordConfirm must repeat
// Password; the server validates the match.
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password2"`
	Role            string `json:"role,omitempty"`
}

// UserProfile is the account profile as served by the user endpoints.
type UserProfile struct {
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Role       string   `json:"role"`
	Bio        string   `json:"bio"`
	GithubURL  string   `json:"github_url"`
	Skills     []string `json:"skills"`
	ID         int      `json:"id"`
	Reputation int      `json:"reputation"`
	IsActive   bool     `json:"is_active"`
}

// ProfileUpdate is a partial profile edit; zero fields are omitted.
type ProfileUpdate struct {
	Email     string   `json:"email,omitempty"`
	Bio       string   `json:"bio,omitempty"`
	GithubURL string   `json:"github_url,omitempty"`
	Skills    []string `json:"skills,omitempty"`
}

// AuthResponse is returned by login and registration: a token pair plus the
// authenticated user's profile.
type AuthResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    UserProfile `json:"user"`
}

// RefreshResponse carries the new access token and, if the server rotates
// refresh tokens, a replacement refresh token.
type RefreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

// Auth wraps the user/session endpoints.
type Auth struct {
	client *apiclient.Client
}

// NewAuth creates the auth API module.
func NewAuth(client *apiclient.Client) *Auth {
	return &Auth{client: client}
}

// Login exchanges credentials for a token pair and profile.
func (a *Auth) Login(ctx context.Context, creds Credentials) (AuthResponse, error) {
	return apiclient.Post[AuthResponse](ctx, a.client, "/users/login/", creds)
}

// Register creates an account and returns a token pair and profile,
// behaving like an implicit login.
func (a *Auth) Register(ctx context.Context, reg Registration) (AuthResponse, error) {
	return apiclient.Post[AuthResponse](ctx, a.client, "/users/register/", reg)
}

// Refresh exchanges a refresh token for a new access token.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (RefreshResponse, error) {
	body := map[string]string{"refresh": refreshToken}
	return apiclient.Post[RefreshResponse](ctx, a.client, "/users/refresh/", body)
}

// Logout invalidates the session server-side.
func (a *Auth) Logout(ctx context.Context) error {
	_, err := apiclient.Post[struct{}](ctx, a.client, "/users/logout/", nil)
	return err
}

// Profile fetches the authenticated user's profile.
func (a *Auth) Profile(ctx context.Context) (UserProfile, error) {
	return apiclient.Get[UserProfile](ctx, a.client, "/users/profile/", nil)
}

// UpdateProfile applies a partial edit and returns the updated profile.
func (a *Auth) UpdateProfile(ctx context.Context, update ProfileUpdate) (UserProfile, error) {
	return apiclient.Put[UserProfile](ctx, a.client, "/users/profile/", update)
}
