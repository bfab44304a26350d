package actor

import (
	"errors"
	"strings"
)

// Capability is the access level carried by a connection token.
type Capability string

const (
	CapabilityAdmin           Capability = "ADMIN"
	CapabilityPublic          Capability = "PUBLIC"
	CapabilityUnauthenticated Capability = "UNAUTHENTICATED"
)

var ErrInvalidCapability = errors.New("invalid capability")

// ParseCapability normalizes and validates a capability string.
func ParseCapability(in string) (Capability, error) {
	capability := Capability(strings.ToUpper(strings.TrimSpace(in)))
	switch capability {
	case CapabilityAdmin, CapabilityPublic:
		return capability, nil
	default:
		return CapabilityUnauthenticated, ErrInvalidCapability
	}
}

// Valid reports whether the capability may be minted into a token.
func (capability Capability) Valid() bool {
	return capability == CapabilityAdmin || capability == CapabilityPublic
}

// String returns the string representation of the Capability.
func (capability Capability) String() string {
	return string(capability)
}

// CanMutate reports whether the capability may issue mutating movement calls.
func (capability Capability) CanMutate() bool {
	return capability == CapabilityAdmin
}
