package session

import (
	"errors"
	"fmt"
	"time"
)

// Session errors.
var (
	// ErrLocked is returned when login is attempted while the account is
	// temporarily locked after repeated failures.
	ErrLocked = errors.New("session: account locked")

	// ErrNoRefreshToken is returned when a refresh is requested but no
	// refresh token is held.
	ErrNoRefreshToken = errors.New("session: no refresh token")
)

// LockoutError reports an active login lockout. It unwraps to ErrLocked.
type LockoutError struct {
	Until   time.Time
	Minutes int // remaining lockout time, rounded up
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("account locked, retry in %d minutes", e.Minutes)
}

func (e *LockoutError) Unwrap() error {
	return ErrLocked
}

func newLockoutError(until time.Time, now time.Time) *LockoutError {
	remaining := until.Sub(now)
	minutes := int((remaining + time.Minute - 1) / time.Minute)
	return &LockoutError{Until: until, Minutes: minutes}
}
