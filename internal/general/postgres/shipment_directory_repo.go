package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ship-track/internal/domain/geo"
	"ship-track/internal/domain/shipment"
	"ship-track/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrShipmentNotFound = errors.New("shipment not found")

// ShipmentDirectoryRepo is the pgx adapter for the Shipment Directory
// collaborator: route and status reads plus status transition writes against
// the `shipments` and `shipment_waypoints` tables owned by the CRUD service.
type ShipmentDirectoryRepo struct {
	pool *pgxpool.Pool
}

// NewShipmentDirectoryRepo constructs the directory adapter.
func NewShipmentDirectoryRepo(pool *pgxpool.Pool) ports.ShipmentDirectory {
	return &ShipmentDirectoryRepo{pool: pool}
}

// GetRoute loads the ordered waypoint list for a shipment.
func (repo *ShipmentDirectoryRepo) GetRoute(ctx context.Context, shipmentID string) ([]geo.Coordinate, error) {
	rows, err := querier(ctx, repo.pool).Query(ctx, `
		SELECT latitude, longitude
		FROM shipment_waypoints
		WHERE shipment_id = $1
		ORDER BY seq
	`, shipmentID)
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	defer rows.Close()

	var waypoints []geo.Coordinate
	for rows.Next() {
		var c geo.Coordinate
		if err := rows.Scan(&c.Latitude, &c.Longitude); err != nil {
			return nil, fmt.Errorf("scan waypoint: %w", err)
		}
		waypoints = append(waypoints, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(waypoints) == 0 {
		return nil, ErrShipmentNotFound
	}
	return waypoints, nil
}

// GetStatus reads the shipment's current status.
func (repo *ShipmentDirectoryRepo) GetStatus(ctx context.Context, shipmentID string) (shipment.Status, error) {
	var raw string
	err := querier(ctx, repo.pool).QueryRow(ctx, `
		SELECT status FROM shipments WHERE id = $1
	`, shipmentID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrShipmentNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get status: %w", err)
	}
	return shipment.ParseStatus(raw)
}

// SetStatus writes a status transition.
func (repo *ShipmentDirectoryRepo) SetStatus(ctx context.Context, shipmentID string, status shipment.Status, at time.Time) error {
	if !status.Valid() {
		return shipment.ErrInvalidStatus
	}
	tag, err := querier(ctx, repo.pool).Exec(ctx, `
		UPDATE shipments SET status = $2, updated_at = $3 WHERE id = $1
	`, shipmentID, status.String(), at)
	if err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrShipmentNotFound
	}
	return nil
}

// GetAverageSpeedKMH reads the shipment's configured average speed.
func (repo *ShipmentDirectoryRepo) GetAverageSpeedKMH(ctx context.Context, shipmentID string) (float64, error) {
	var speed float64
	err := querier(ctx, repo.pool).QueryRow(ctx, `
		SELECT average_speed_kmh FROM shipments WHERE id = $1
	`, shipmentID).Scan(&speed)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrShipmentNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get average speed: %w", err)
	}
	return speed, nil
}
