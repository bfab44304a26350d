package gateway

import (
	"sync"

	"ship-track/internal/domain/actor"
)

// Conn is the transport half of a subscriber. *websocket.Conn satisfies it
// directly; tests plug in an in-process fake.
type Conn interface {
	WriteJSON(v any) error
	Close() error
}

// Subscriber is one observer connection. Events are enqueued into a bounded
// queue and drained by a single writer goroutine, so a slow socket can never
// stall the room that feeds it.
type Subscriber struct {
	conn       Conn
	actorID    string
	capability actor.Capability

	queue chan any
	once  sync.Once
	done  chan struct{}
}

// NewSubscriber wraps a connection with its capability and write pump.
func NewSubscriber(conn Conn, actorID string, capability actor.Capability, queueSize int) *Subscriber {
	if queueSize <= 0 {
		queueSize = 64
	}
	s := &Subscriber{
		conn:       conn,
		actorID:    actorID,
		capability: capability,
		queue:      make(chan any, queueSize),
		done:       make(chan struct{}),
	}
	go s.pump()
	return s
}

// Capability returns the access level of this connection.
func (s *Subscriber) Capability() actor.Capability { return s.capability }

// ActorID returns the token subject (empty for anonymous trackers).
func (s *Subscriber) ActorID() string { return s.actorID }

// enqueue offers an event without blocking. false means the bounded queue
// overflowed: the subscriber is too slow and must be dropped.
func (s *Subscriber) enqueue(ev any) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.queue <- ev:
		return true
	default:
		return false
	}
}

// pump is the single writer for the underlying connection.
func (s *Subscriber) pump() {
	for {
		select {
		case ev := <-s.queue:
			if err := s.conn.WriteJSON(ev); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// Close stops the pump and closes the transport. Idempotent.
func (s *Subscriber) Close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// Closed reports whether the subscriber has been shut down.
func (s *Subscriber) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
