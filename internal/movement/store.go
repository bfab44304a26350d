package movement

import (
	"sync"
	"time"

	"ship-track/internal/domain/shipment"
)

// Store is the single source of truth for per-shipment movement state, with
// an append-only in-memory audit trail of transitions. Every mutating call
// for a given shipment runs under that shipment's own mutex, so two
// concurrent intercept/clear calls can never interleave into an inconsistent
// state; different shipments never contend on preconditions. Every access to
// a live MovementState object, reads and writes alike, additionally happens
// under the store mutex, so Get can clone while a mutation is in flight.
//
// The store is deliberately network-free: callers apply the in-memory
// transition first, release the shipment lock, then persist and publish.
type Store struct {
	mu     sync.Mutex
	states map[string]*shipment.MovementState
	trails map[string][]shipment.AuditEntry
	locks  map[string]*sync.Mutex
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		states: make(map[string]*shipment.MovementState),
		trails: make(map[string][]shipment.AuditEntry),
		locks:  make(map[string]*sync.Mutex),
	}
}

// lockFor returns the serialization point for one shipment, creating it on
// first use.
func (st *Store) lockFor(shipmentID string) *sync.Mutex {
	st.mu.Lock()
	defer st.mu.Unlock()
	mu, ok := st.locks[shipmentID]
	if !ok {
		mu = &sync.Mutex{}
		st.locks[shipmentID] = mu
	}
	return mu
}

// Create installs the MovementState a fresh trip starts with. Rejected when
// a live state already exists.
func (st *Store) Create(shipmentID, actorID string) (*shipment.MovementState, error) {
	mu := st.lockFor(shipmentID)
	mu.Lock()
	defer mu.Unlock()

	st.mu.Lock()
	_, exists := st.states[shipmentID]
	st.mu.Unlock()
	if exists {
		return nil, ErrStateExists
	}

	entry, err := shipment.NewAuditEntry(shipmentID, actorID, shipment.ActionStart, "")
	if err != nil {
		return nil, err
	}
	state, err := shipment.NewMovementState(shipmentID)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	st.states[shipmentID] = state
	clone := state.Clone()
	st.mu.Unlock()

	st.record(shipmentID, entry)
	return clone, nil
}

// Get returns a copy of the live state.
func (st *Store) Get(shipmentID string) (*shipment.MovementState, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	state, ok := st.states[shipmentID]
	if !ok {
		return nil, ErrStateNotFound
	}
	return state.Clone(), nil
}

// Intercept pauses a moving shipment. Precondition: isMoving=true.
func (st *Store) Intercept(shipmentID, actorID, reason string) (*shipment.MovementState, error) {
	mu := st.lockFor(shipmentID)
	mu.Lock()
	defer mu.Unlock()

	entry, err := shipment.NewAuditEntry(shipmentID, actorID, shipment.ActionIntercept, reason)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	state, ok := st.states[shipmentID]
	if !ok {
		st.mu.Unlock()
		return nil, ErrStateNotFound
	}
	if !state.IsMoving {
		st.mu.Unlock()
		return nil, ErrNotMoving
	}
	if err := state.Pause(actorID, reason, time.Now().UTC()); err != nil {
		st.mu.Unlock()
		return nil, err
	}
	clone := state.Clone()
	st.mu.Unlock()

	st.record(shipmentID, entry)
	return clone, nil
}

// Clear resumes an intercepted shipment. Precondition: isMoving=false.
func (st *Store) Clear(shipmentID, actorID, reason string) (*shipment.MovementState, error) {
	mu := st.lockFor(shipmentID)
	mu.Lock()
	defer mu.Unlock()

	entry, err := shipment.NewAuditEntry(shipmentID, actorID, shipment.ActionClear, reason)
	if err != nil {
		return nil, err
	}

	st.mu.Lock()
	state, ok := st.states[shipmentID]
	if !ok {
		st.mu.Unlock()
		return nil, ErrStateNotFound
	}
	if state.IsMoving {
		st.mu.Unlock()
		return nil, ErrAlreadyMoving
	}
	state.Resume(time.Now().UTC())
	clone := state.Clone()
	st.mu.Unlock()

	st.record(shipmentID, entry)
	return clone, nil
}

// RecordAction appends a trail entry for transitions that do not toggle
// isMoving (reposition, reroute).
func (st *Store) RecordAction(shipmentID, actorID string, action shipment.Action, reason string) error {
	entry, err := shipment.NewAuditEntry(shipmentID, actorID, action, reason)
	if err != nil {
		return err
	}
	st.mu.Lock()
	_, ok := st.states[shipmentID]
	st.mu.Unlock()
	if !ok {
		return ErrStateNotFound
	}
	st.record(shipmentID, entry)
	return nil
}

// Remove discards the state once a shipment goes terminal; the trail is kept.
func (st *Store) Remove(shipmentID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.states, shipmentID)
	delete(st.locks, shipmentID)
}

// Trail returns a copy of the shipment's audit trail, oldest first.
func (st *Store) Trail(shipmentID string) []shipment.AuditEntry {
	st.mu.Lock()
	defer st.mu.Unlock()
	trail := st.trails[shipmentID]
	out := make([]shipment.AuditEntry, len(trail))
	copy(out, trail)
	return out
}

// record appends a pre-validated entry to the shipment's trail. Entries are
// constructed and validated before the state mutation they describe, so a
// successful mutating call always leaves exactly one trail row.
func (st *Store) record(shipmentID string, entry *shipment.AuditEntry) {
	st.mu.Lock()
	st.trails[shipmentID] = append(st.trails[shipmentID], *entry)
	st.mu.Unlock()
}
