package postgres

import (
	"context"
	"fmt"

	"ship-track/internal/domain/shipment"
	"ship-track/internal/ports"

	"github.com/jackc/pgx/v5/pgxpool"
)

// LocationHistoryRepo archives transient tracking samples. Samples are
// operational data only; clearHistory purges them without touching the
// shipment record or the audit trail.
type LocationHistoryRepo struct {
	pool *pgxpool.Pool
}

// NewLocationHistoryRepo constructs a new LocationHistoryRepo.
func NewLocationHistoryRepo(pool *pgxpool.Pool) ports.LocationHistoryRepository {
	return &LocationHistoryRepo{pool: pool}
}

// Archive inserts one location_history row.
func (repo *LocationHistoryRepo) Archive(ctx context.Context, sample *shipment.LocationSample) error {
	err := querier(ctx, repo.pool).QueryRow(ctx, `
		INSERT INTO location_history
			(shipment_id, latitude, longitude, speed_kmh, heading_degrees, progress, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`,
		sample.ShipmentID,
		sample.Position.Latitude,
		sample.Position.Longitude,
		sample.SpeedKMH,
		sample.HeadingDegrees,
		sample.Progress,
		sample.RecordedAt,
	).Scan(&sample.ID)
	if err != nil {
		return fmt.Errorf("archive location sample: %w", err)
	}
	return nil
}

// PurgeForShipment deletes all samples for one shipment and reports the
// number of rows removed.
func (repo *LocationHistoryRepo) PurgeForShipment(ctx context.Context, shipmentID string) (int64, error) {
	tag, err := querier(ctx, repo.pool).Exec(ctx, `
		DELETE FROM location_history WHERE shipment_id = $1
	`, shipmentID)
	if err != nil {
		return 0, fmt.Errorf("purge location history: %w", err)
	}
	return tag.RowsAffected(), nil
}
