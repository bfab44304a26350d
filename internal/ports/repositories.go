package ports

import (
	"context"
	"time"

	"ship-track/internal/domain/geo"
	"ship-track/internal/domain/shipment"
)

// UnitOfWork interface is used to manage transactions across multiple repository operations.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ShipmentDirectory is the narrow read/write surface onto the shipment
// records owned by the CRUD collaborator. This core never touches customer
// or address data, only routes and status transitions.
type ShipmentDirectory interface {
	GetRoute(ctx context.Context, shipmentID string) ([]geo.Coordinate, error)
	GetStatus(ctx context.Context, shipmentID string) (shipment.Status, error)
	SetStatus(ctx context.Context, shipmentID string, status shipment.Status, at time.Time) error
	GetAverageSpeedKMH(ctx context.Context, shipmentID string) (float64, error)
}

// AuditRepository appends movement audit entries.
type AuditRepository interface {
	Append(ctx context.Context, entry *shipment.AuditEntry) error
}

// LocationHistoryRepository archives and purges transient tracking samples.
type LocationHistoryRepository interface {
	Archive(ctx context.Context, sample *shipment.LocationSample) error
	PurgeForShipment(ctx context.Context, shipmentID string) (int64, error)
}
