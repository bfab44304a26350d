package simulator

import (
	"context"
	"time"

	"ship-track/internal/general/logger"
)

// PositionSink receives position snapshots produced by the tick loop. The
// broadcast gateway implements it; the loop itself never touches a network
// connection.
type PositionSink interface {
	PublishPosition(shipmentID string, snap Snapshot)
}

// ArrivalHandler is invoked exactly once when a shipment reaches its
// destination. The control layer uses it to flip the shipment status to
// DELIVERED and announce the terminal event.
type ArrivalHandler func(shipmentID string, snap Snapshot)

// worker owns one shipment's tick loop. Ticks are periodic, non-blocking
// evaluations; fan-out happens downstream of the sink, never inline with the
// clock.
type worker struct {
	sim       *Simulator
	sink      PositionSink
	onArrival ArrivalHandler
	interval  time.Duration
	logger    *logger.Logger
	stop      chan struct{}
	done      chan struct{}
}

func newWorker(sim *Simulator, sink PositionSink, onArrival ArrivalHandler, interval time.Duration, log *logger.Logger) *worker {
	return &worker{
		sim:       sim,
		sink:      sink,
		onArrival: onArrival,
		interval:  interval,
		logger:    log,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// run drives the loop until arrival, Stop, or context cancellation. Position
// is derived from wall-clock time, so the loop cadence only bounds how often
// observers hear about it, never where the shipment is.
func (w *worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			snap, arrivedNow := w.sim.Tick()

			// paused snapshots were already pushed synchronously by the
			// transition that paused them; re-broadcasting every tick while
			// frozen is noise.
			if !snap.IsPaused && !snap.HasArrived {
				w.sink.PublishPosition(w.sim.ShipmentID(), snap)
			}

			if arrivedNow {
				w.sink.PublishPosition(w.sim.ShipmentID(), snap)
				if w.onArrival != nil {
					w.onArrival(w.sim.ShipmentID(), snap)
				}
				w.logger.Info(ctx, "shipment_arrived", "Simulator reached destination", map[string]any{
					"shipment_id": w.sim.ShipmentID(),
				})
				return
			}

			// arrival already fired elsewhere (seek past the end): nothing
			// left to emit
			if snap.HasArrived {
				return
			}

		case <-w.stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (w *worker) halt() {
	select {
	case <-w.stop:
	default:
		close(w.stop)
	}
	<-w.done
}
