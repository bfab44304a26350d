package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"ship-track/internal/domain/actor"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var (
	ErrNoAuthHeader        = errors.New("authorization header missing")
	ErrInvalidSigningAlgo  = errors.New("unexpected signing method")
	ErrCapabilityForbidden = errors.New("capability not allowed")
)

// Manager handles JWT creation and validation.
type Manager struct {
	secret    []byte
	accessTTL time.Duration
}

// NewManager creates a token manager.
func NewManager(secret string, accessTTL time.Duration) *Manager {
	s := strings.TrimSpace(secret)
	if s == "" {
		panic("jwt: empty secret key")
	}
	return &Manager{secret: []byte(s), accessTTL: accessTTL}
}

// IssueActorToken returns a signed access token for an actor.
func (m *Manager) IssueActorToken(actorID string, capability actor.Capability) (string, *Claims, error) {
	if !capability.Valid() {
		return "", nil, fmt.Errorf("invalid capability: %s", capability)
	}

	claims := NewActorClaims(actorID, capability, m.accessTTL)
	tkn := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	signed, err := tkn.SignedString(m.secret)

	return signed, claims, err
}

// FromAuthorization reads "Authorization: Bearer <token>", falling back to
// the query parameter some WebSocket clients have to use.
func FromAuthorization(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer "), nil
	}

	if authParam := r.URL.Query().Get("token"); authParam != "" {
		return strings.TrimPrefix(authParam, "Bearer "), nil
	}

	return "", ErrNoAuthHeader
}

// ParseAndValidate verifies signature and standard claims.
func (m *Manager) ParseAndValidate(tokenString string) (*Claims, error) {
	parser := jwtlib.NewParser(jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(t *jwtlib.Token) (any, error) {
		if t.Method != jwtlib.SigningMethodHS256 {
			return nil, ErrInvalidSigningAlgo
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// CapabilityOf resolves the capability of a raw connection token. Invalid or
// missing tokens resolve to UNAUTHENTICATED rather than an error so callers
// can decide how much of the stream the connection may see.
func (m *Manager) CapabilityOf(tokenString string) actor.Capability {
	if strings.TrimSpace(tokenString) == "" {
		return actor.CapabilityUnauthenticated
	}
	claims, err := m.ParseAndValidate(tokenString)
	if err != nil || !claims.Capability.Valid() {
		return actor.CapabilityUnauthenticated
	}
	return claims.Capability
}

// CapabilityAllowed asserts the claims' capability is one of the allowed.
func CapabilityAllowed(cl *Claims, allowed ...actor.Capability) error {
	if slices.Contains(allowed, cl.Capability) {
		return nil
	}
	return ErrCapabilityForbidden
}

// Context wiring (used by middleware)
type ctxKey string

const claimsCtxKey ctxKey = "jwtClaims"

// InjectClaims adds JWT claims to the context.
func InjectClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsCtxKey, c)
}

// FromContext extracts JWT claims from the context.
func FromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsCtxKey).(*Claims)
	return c, ok
}
