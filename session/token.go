package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpired reports whether the JWT's exp claim is in the past.
// The signature is NOT verified: expiry is a client-side freshness check,
// the server remains the authority on token validity. A token that cannot
// be decoded, or that carries no exp claim, is treated as expired.
func TokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.Before(now)
}
