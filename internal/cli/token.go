package cli

import (
	"fmt"
	"time"

	"ship-track/internal/domain/actor"
	"ship-track/internal/general/jwt"
)

// GenerateActorToken mints a short-lived JWT for an actor.
// It uses jwt.Manager and returns the raw token plus the claims.
//
// Typical use (dev-only):
//
//	token, _, err := cli.GenerateActorToken(secret,
//	    "ops-console-01", "ADMIN")
//
// Keep this package dev/internal only. Do not call it from production code paths.
func GenerateActorToken(secret string, actorID string, capabilityStr string) (string, jwt.Claims, error) {
	// parse and validate the capability
	capability, err := actor.ParseCapability(capabilityStr)
	if err != nil {
		return "", jwt.Claims{}, fmt.Errorf("invalid capability %q: %w", capabilityStr, err)
	}

	// set up a new JWT manager
	mgr := jwt.NewManager(secret, 2*time.Hour)

	// generate the JWT token given the actor ID and its capability
	token, claims, err := mgr.IssueActorToken(actorID, capability)
	if err != nil {
		return "", jwt.Claims{}, fmt.Errorf("issue token: %w", err)
	}

	return token, *claims, nil
}
