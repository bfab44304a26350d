package jwt

import (
	"time"

	"ship-track/internal/domain/actor"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Claims defines our canonical JWT claims payload. The capability claim is
// the only authorization input this service trusts.
type Claims struct {
	Capability actor.Capability `json:"capability"` // ADMIN | PUBLIC
	jwtlib.RegisteredClaims
}

var _ jwtlib.Claims = (*Claims)(nil)

// NewActorClaims constructs claims for an operator or public tracker.
func NewActorClaims(actorID string, capability actor.Capability, ttl time.Duration) *Claims {
	now := time.Now().UTC()
	return &Claims{
		Capability: capability,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   actorID,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
}
