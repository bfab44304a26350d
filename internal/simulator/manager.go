package simulator

import (
	"context"
	"errors"
	"sync"
	"time"

	"ship-track/internal/general/logger"
)

var (
	ErrAlreadyRunning = errors.New("simulator already running for shipment")
	ErrNotRunning     = errors.New("no simulator running for shipment")
)

// Manager owns one worker per active shipment. Different shipments are fully
// independent; each one's evaluation and control mutations are serialized by
// its own simulator, never by a shared lock.
type Manager struct {
	mu      sync.Mutex
	workers map[string]*worker
	sims    map[string]*Simulator

	sink      PositionSink
	onArrival ArrivalHandler
	interval  time.Duration
	logger    *logger.Logger
}

// NewManager wires the registry. onArrival may be set later via OnArrival
// (the control service is constructed after the manager).
func NewManager(sink PositionSink, interval time.Duration, log *logger.Logger) *Manager {
	return &Manager{
		workers:  make(map[string]*worker),
		sims:     make(map[string]*Simulator),
		sink:     sink,
		interval: interval,
		logger:   log,
	}
}

// OnArrival installs the arrival callback used by all workers started after
// this call.
func (m *Manager) OnArrival(fn ArrivalHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onArrival = fn
}

// Start registers sim and spawns its tick loop.
func (m *Manager) Start(ctx context.Context, sim *Simulator) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := sim.ShipmentID()
	if _, ok := m.workers[id]; ok {
		return ErrAlreadyRunning
	}

	w := newWorker(sim, m.sink, m.arrivalFunc(id), m.interval, m.logger)
	m.workers[id] = w
	m.sims[id] = sim

	go w.run(ctx)

	m.logger.Info(ctx, "simulator_started", "Simulator worker started", map[string]any{
		"shipment_id": id, "tick_interval": m.interval.String(),
	})
	return nil
}

// arrivalFunc wraps the configured callback and removes the finished worker
// from the registry so the shipment can never tick again.
func (m *Manager) arrivalFunc(shipmentID string) ArrivalHandler {
	return func(id string, snap Snapshot) {
		m.mu.Lock()
		cb := m.onArrival
		delete(m.workers, shipmentID)
		delete(m.sims, shipmentID)
		m.mu.Unlock()

		if cb != nil {
			cb(id, snap)
		}
	}
}

// Get returns the live simulator for a shipment.
func (m *Manager) Get(shipmentID string) (*Simulator, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sim, ok := m.sims[shipmentID]
	return sim, ok
}

// Stop halts and forgets one shipment's worker (terminal status, cancel).
func (m *Manager) Stop(shipmentID string) error {
	m.mu.Lock()
	w, ok := m.workers[shipmentID]
	delete(m.workers, shipmentID)
	delete(m.sims, shipmentID)
	m.mu.Unlock()

	if !ok {
		return ErrNotRunning
	}
	w.halt()
	return nil
}

// StopAll halts every worker; used during graceful shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	workers := make([]*worker, 0, len(m.workers))
	for id, w := range m.workers {
		workers = append(workers, w)
		delete(m.workers, id)
		delete(m.sims, id)
	}
	m.mu.Unlock()

	for _, w := range workers {
		w.halt()
	}
}
