package service

import (
	"context"
	"sync"
	"time"

	"ship-track/internal/domain/shipment"
	"ship-track/internal/general/logger"
	"ship-track/internal/ports"
	"ship-track/internal/simulator"
)

// HistoryRecorder decorates a PositionSink with database archiving. Snapshots
// pass through to the wrapped sink unchanged; at most one sample per shipment
// per archiveEvery window is persisted, on a separate goroutine so the tick
// loop never waits on the database.
type HistoryRecorder struct {
	next    simulator.PositionSink
	history ports.LocationHistoryRepository
	logger  *logger.Logger

	archiveEvery time.Duration
	mu           sync.Mutex
	lastArchived map[string]time.Time

	samples chan *shipment.LocationSample
}

// NewHistoryRecorder wraps next. archiveEvery <= 0 archives every snapshot.
func NewHistoryRecorder(next simulator.PositionSink, history ports.LocationHistoryRepository, archiveEvery time.Duration, log *logger.Logger) *HistoryRecorder {
	return &HistoryRecorder{
		next:         next,
		history:      history,
		logger:       log,
		archiveEvery: archiveEvery,
		lastArchived: make(map[string]time.Time),
		samples:      make(chan *shipment.LocationSample, 256),
	}
}

// Start launches the archive writer; it drains until ctx is cancelled.
func (rec *HistoryRecorder) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case sample := <-rec.samples:
				if err := rec.history.Archive(ctx, sample); err != nil {
					rec.logger.Error(ctx, "history_archive_failed", "Failed to archive location sample", err, map[string]any{
						"shipment_id": sample.ShipmentID,
					})
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// PublishPosition implements simulator.PositionSink.
func (rec *HistoryRecorder) PublishPosition(shipmentID string, snap simulator.Snapshot) {
	rec.next.PublishPosition(shipmentID, snap)

	if !rec.shouldArchive(shipmentID, snap.ComputedAt) {
		return
	}
	sample, err := shipment.NewLocationSample(shipmentID, snap.Position, snap.SpeedKMH, snap.BearingDegrees, snap.Progress, snap.ComputedAt)
	if err != nil {
		return
	}
	select {
	case rec.samples <- sample:
	default:
		// writer saturated; history is best effort
	}
}

func (rec *HistoryRecorder) shouldArchive(shipmentID string, at time.Time) bool {
	if rec.archiveEvery <= 0 {
		return true
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if last, ok := rec.lastArchived[shipmentID]; ok && at.Sub(last) < rec.archiveEvery {
		return false
	}
	rec.lastArchived[shipmentID] = at
	return true
}

// Forget drops the throttle entry for a finished shipment.
func (rec *HistoryRecorder) Forget(shipmentID string) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	delete(rec.lastArchived, shipmentID)
}
