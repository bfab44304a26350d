package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ship-track/internal/domain/actor"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager("test-secret-key", time.Hour)
}

func TestCapabilityOfResolvesTokenCapability(t *testing.T) {
	mgr := newTestManager(t)

	adminToken, _, err := mgr.IssueActorToken("ops-1", actor.CapabilityAdmin)
	require.NoError(t, err)
	publicToken, _, err := mgr.IssueActorToken("viewer-1", actor.CapabilityPublic)
	require.NoError(t, err)

	assert.Equal(t, actor.CapabilityAdmin, mgr.CapabilityOf(adminToken))
	assert.Equal(t, actor.CapabilityPublic, mgr.CapabilityOf(publicToken))
}

func TestCapabilityOfBadTokensResolveUnauthenticated(t *testing.T) {
	mgr := newTestManager(t)

	assert.Equal(t, actor.CapabilityUnauthenticated, mgr.CapabilityOf(""))
	assert.Equal(t, actor.CapabilityUnauthenticated, mgr.CapabilityOf("  "))
	assert.Equal(t, actor.CapabilityUnauthenticated, mgr.CapabilityOf("not-a-jwt"))

	// token signed with a different secret
	other := NewManager("some-other-secret", time.Hour)
	forged, _, err := other.IssueActorToken("ops-1", actor.CapabilityAdmin)
	require.NoError(t, err)
	assert.Equal(t, actor.CapabilityUnauthenticated, mgr.CapabilityOf(forged))
}
