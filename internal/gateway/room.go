package gateway

import (
	"context"
	"sync"

	"ship-track/internal/general/logger"
)

// Room is the runtime fan-out group for one shipment. Membership is the set
// of live subscriber connections; publishing is serialized by the room mutex
// so every member observes events in the order they were published.
type Room struct {
	shipmentID string
	logger     *logger.Logger

	mu      sync.Mutex
	members map[*Subscriber]struct{}
	closed  bool // closed-for-writes once the shipment goes terminal
}

func newRoom(shipmentID string, log *logger.Logger) *Room {
	return &Room{
		shipmentID: shipmentID,
		logger:     log,
		members:    make(map[*Subscriber]struct{}),
	}
}

// add registers a subscriber. Joining a closed room is allowed: late
// trackers may still watch the terminal snapshot drain out.
func (r *Room) add(sub *Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[sub] = struct{}{}
}

// remove unregisters a subscriber and reports how many members remain.
func (r *Room) remove(sub *Subscriber) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, sub)
	return len(r.members)
}

// size returns current membership.
func (r *Room) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// markClosed stops further broadcasts; membership may still drain to zero.
func (r *Room) markClosed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// broadcast fans an event out to every member. adminEv, when non-nil, is the
// unredacted variant delivered to admin members only. Members whose bounded
// queue overflows are dropped on the spot; nobody else is affected.
func (r *Room) broadcast(publicEv, adminEv any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	for sub := range r.members {
		ev := publicEv
		if adminEv != nil && sub.Capability().CanMutate() {
			ev = adminEv
		}
		if !sub.enqueue(ev) {
			delete(r.members, sub)
			sub.Close()
			r.logger.Info(context.Background(), "slow_subscriber_dropped",
				"Subscriber queue overflowed; connection dropped", map[string]any{
					"shipment_id": r.shipmentID,
					"capability":  sub.Capability().String(),
				})
		}
	}
}
