package gateway

import (
	"sync"

	"ship-track/internal/general/logger"
)

// Registry owns the room lifecycle: rooms are created lazily on first
// subscription and garbage-collected when the last member leaves. There is
// no ambient global state; the registry is owned by the Gateway.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	logger *logger.Logger
}

func newRegistry(log *logger.Logger) *Registry {
	return &Registry{rooms: make(map[string]*Room), logger: log}
}

// getOrCreate returns the shipment's room, creating it on first use.
func (reg *Registry) getOrCreate(shipmentID string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[shipmentID]
	if !ok {
		room = newRoom(shipmentID, reg.logger)
		reg.rooms[shipmentID] = room
	}
	return room
}

// get returns the room if it exists.
func (reg *Registry) get(shipmentID string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[shipmentID]
	return room, ok
}

// removeIfEmpty garbage-collects a drained room.
func (reg *Registry) removeIfEmpty(shipmentID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if room, ok := reg.rooms[shipmentID]; ok && room.size() == 0 {
		delete(reg.rooms, shipmentID)
	}
}
