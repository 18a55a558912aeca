package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource supplies the merchant bearer token for backend calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a token handed to the terminal at login. Its expiry is read
// from the JWT claims without verifying the signature; the backend verifies.
type StaticToken struct {
	Value string
	Now   func() time.Time
}

func (t StaticToken) Token(context.Context) (string, error) {
	if t.Value == "" {
		return "", &HTTPError{Status: http.StatusUnauthorized, Reason: "merchant token missing"}
	}
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(t.Value, claims); err != nil {
		// Opaque tokens are passed through untouched.
		return t.Value, nil
	}
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	if claims.ExpiresAt != nil && !now().Before(claims.ExpiresAt.Time) {
		return "", &HTTPError{
			Status: http.StatusUnauthorized,
			Reason: fmt.Sprintf("merchant token expired at %s", claims.ExpiresAt.Time.UTC().Format(time.RFC3339)),
		}
	}
	return t.Value, nil
}
