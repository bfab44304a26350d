package movement

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ship-track/internal/domain/shipment"
)

func TestCreateAndGet(t *testing.T) {
	store := NewStore()

	state, err := store.Create("ship-1", "ops-1")
	require.NoError(t, err)
	assert.True(t, state.IsMoving)

	got, err := store.Get("ship-1")
	require.NoError(t, err)
	assert.Equal(t, "ship-1", got.ShipmentID)

	// one live state per shipment
	_, err = store.Create("ship-1", "ops-1")
	require.ErrorIs(t, err, ErrStateExists)
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestGetUnknownShipment(t *testing.T) {
	store := NewStore()
	_, err := store.Get("ghost")
	require.ErrorIs(t, err, ErrStateNotFound)
}

func TestInterceptAndClear(t *testing.T) {
	store := NewStore()
	_, err := store.Create("ship-1", "ops-1")
	require.NoError(t, err)

	state, err := store.Intercept("ship-1", "ops-2", "customs hold")
	require.NoError(t, err)
	assert.False(t, state.IsMoving)
	assert.Equal(t, "ops-2", state.PausedBy)
	assert.Equal(t, "customs hold", state.Reason)

	// intercepting a paused shipment is a precondition failure
	_, err = store.Intercept("ship-1", "ops-2", "again")
	require.ErrorIs(t, err, ErrNotMoving)
	require.ErrorIs(t, err, ErrPreconditionFailed)

	// and the state is left unchanged by the rejection
	got, err := store.Get("ship-1")
	require.NoError(t, err)
	assert.False(t, got.IsMoving)
	assert.Equal(t, "customs hold", got.Reason)

	state, err = store.Clear("ship-1", "ops-3", "released")
	require.NoError(t, err)
	assert.True(t, state.IsMoving)

	_, err = store.Clear("ship-1", "ops-3", "again")
	require.ErrorIs(t, err, ErrAlreadyMoving)
}

func TestInterceptUnknownShipment(t *testing.T) {
	store := NewStore()
	_, err := store.Intercept("ghost", "ops-1", "")
	require.ErrorIs(t, err, ErrStateNotFound)
	_, err = store.Clear("ghost", "ops-1", "")
	require.ErrorIs(t, err, ErrStateNotFound)
}

func TestTrailRecordsTransitions(t *testing.T) {
	store := NewStore()
	_, err := store.Create("ship-1", "ops-1")
	require.NoError(t, err)
	_, err = store.Intercept("ship-1", "ops-2", "weather")
	require.NoError(t, err)
	require.NoError(t, store.RecordAction("ship-1", "ops-2", shipment.ActionReposition, ""))
	_, err = store.Clear("ship-1", "ops-2", "")
	require.NoError(t, err)

	trail := store.Trail("ship-1")
	require.Len(t, trail, 4)
	assert.Equal(t, shipment.ActionStart, trail[0].Action)
	assert.Equal(t, shipment.ActionIntercept, trail[1].Action)
	assert.Equal(t, shipment.ActionReposition, trail[2].Action)
	assert.Equal(t, shipment.ActionClear, trail[3].Action)
}

func TestRecordActionUnknownShipment(t *testing.T) {
	store := NewStore()
	err := store.RecordAction("ghost", "ops-1", shipment.ActionReroute, "")
	require.ErrorIs(t, err, ErrStateNotFound)
}

func TestRemoveKeepsTrail(t *testing.T) {
	store := NewStore()
	_, err := store.Create("ship-1", "ops-1")
	require.NoError(t, err)

	store.Remove("ship-1")
	_, err = store.Get("ship-1")
	require.ErrorIs(t, err, ErrStateNotFound)
	assert.Len(t, store.Trail("ship-1"), 1)
}

// Exercised with -race: readers clone the live state while intercept/clear
// toggle it.
func TestConcurrentGetDuringInterceptClear(t *testing.T) {
	store := NewStore()
	_, err := store.Create("ship-1", "ops-0")
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			got, err := store.Get("ship-1")
			if assert.NoError(t, err) {
				assert.Equal(t, "ship-1", got.ShipmentID)
			}
		}
	}()

	for i := 0; i < 200; i++ {
		_, err := store.Intercept("ship-1", "ops-1", "hold")
		require.NoError(t, err)
		_, err = store.Clear("ship-1", "ops-1", "released")
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()
}

func TestBlankActorRejectedWithoutTrailRow(t *testing.T) {
	store := NewStore()
	_, err := store.Create("ship-1", "ops-1")
	require.NoError(t, err)

	_, err = store.Intercept("ship-1", "  ", "hold")
	require.ErrorIs(t, err, shipment.ErrEmptyActorID)
	err = store.RecordAction("ship-1", "", shipment.ActionReposition, "")
	require.ErrorIs(t, err, shipment.ErrEmptyActorID)

	// only the Create row; rejected calls leave no trace
	assert.Len(t, store.Trail("ship-1"), 1)
	got, err := store.Get("ship-1")
	require.NoError(t, err)
	assert.True(t, got.IsMoving)
}

func TestConcurrentInterceptsOnlyOneWins(t *testing.T) {
	store := NewStore()
	_, err := store.Create("ship-1", "ops-0")
	require.NoError(t, err)

	const n = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Intercept("ship-1", "ops-racer", "race"); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	got, err := store.Get("ship-1")
	require.NoError(t, err)
	assert.False(t, got.IsMoving)
}
