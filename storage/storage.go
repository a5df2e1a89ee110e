// Package storage provides the persisted key-value store backing the SDK:
// session tokens, the serialized user profile, and the router's visit
// history all live here. Values are plain strings; structured values are
// serialized as JSON via the generic helpers.
package storage

import (
	"context"
	"encoding/json"
	"errors"
)

// Well-known storage keys shared by the session store and the router.
const (
	KeyAccessToken  = "auth_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
	KeyVisitHistory = "visit_history"
)

// Sentinel errors for storage operations.
var (
	// ErrNotFound is returned when a key does not exist.
	ErrNotFound = errors.New("storage: key not found")

	// ErrMarshal is returned when value serialization fails.
	ErrMarshal = errors.New("storage: failed to marshal value")

	// ErrUnmarshal is returned when value deserialization fails.
	ErrUnmarshal = errors.New("storage: failed to unmarshal value")
)

// Storage is a persistent string key-value store.
//
// Writes to distinct keys are independent: there is no transaction spanning
// multiple keys, so readers must tolerate partial state (e.g., an access
// token without its refresh token after a crash mid-login).
type Storage interface {
	// Get retrieves a value by key.
	// Returns ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value under the given key, overwriting any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes all keys.
	Clear(ctx context.Context) error
}

// GetJSON reads a key and unmarshals its JSON value into T.
func GetJSON[T any](ctx context.Context, s Storage, key string) (T, error) {
	var v T
	raw, err := s.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// SetJSON marshals v as JSON and stores it under the given key.
func SetJSON[T any](ctx context.Context, s Storage, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Join(ErrMarshal, err)
	}
	return s.Set(ctx, key, string(data))
}
