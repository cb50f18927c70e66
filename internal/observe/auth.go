// Package observe exposes chanx-driver's running state to the outside
// world: a Prometheus /metrics endpoint and a JWT-gated WebSocket feed
// of live channel stats, adapted from go-server/internal/auth/jwt.go
// and go-server/pkg/websocket/hub.go.
package observe

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims identifies who opened a stats stream, carried for audit
// logging rather than fine-grained authorization: every holder of a
// valid token sees the same read-only stats.
type Claims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the HS256 tokens that gate
// /stream connections.
type TokenManager struct {
	secretKey []byte
	ttl       time.Duration
}

// NewTokenManager builds a TokenManager signing with secretKey and
// issuing tokens valid for ttl.
func NewTokenManager(secretKey string, ttl time.Duration) *TokenManager {
	return &TokenManager{secretKey: []byte(secretKey), ttl: ttl}
}

// Issue mints a token identifying subject.
func (m *TokenManager) Issue(subject string) (string, error) {
	claims := &Claims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "chanx-driver",
			Subject:   subject,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secretKey)
}

// Verify validates tokenString and returns its claims.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}

// extractToken pulls a bearer token from the query string first (the
// only option a browser WebSocket client has for custom auth), then
// falls back to the Authorization header for plain HTTP callers.
func extractToken(r *http.Request) (string, error) {
	if tok := r.URL.Query().Get("token"); tok != "" {
		return tok, nil
	}
	authHeader := r.Header.Get("Authorization")
	const bearerPrefix = "Bearer "
	if strings.HasPrefix(authHeader, bearerPrefix) {
		return strings.TrimPrefix(authHeader, bearerPrefix), nil
	}
	return "", errors.New("no token found in query or Authorization header")
}

// authenticate verifies the request carries a valid token, returning
// its claims on success.
func (m *TokenManager) authenticate(r *http.Request) (*Claims, error) {
	tok, err := extractToken(r)
	if err != nil {
		return nil, err
	}
	return m.Verify(tok)
}
