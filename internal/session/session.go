// Package session issues and verifies the signed session tokens carried
// in the service's session cookie.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the name of the cookie that carries the session token.
const CookieName = "session"

// TTL is how long an issued session stays valid. There is no refresh
// mechanism; expiry forces a full trip through the OAuth flow again.
const TTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid session token")

// Claims is the signed session payload. On the wire it encodes exactly
// {username, exp}.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issue signs a session token for username, valid for ttl from now.
func Issue(username string, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	})

	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a session token and returns the username
// claim. Tokens with a bad signature, the wrong signing method, or an
// elapsed expiry are rejected.
func Verify(tokenString string, secret []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("failed to verify session token: %w", err)
	}

	if !token.Valid {
		return "", ErrInvalidToken
	}

	return claims.Username, nil
}
