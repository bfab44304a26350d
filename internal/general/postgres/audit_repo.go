package postgres

import (
	"context"
	"fmt"

	"ship-track/internal/domain/shipment"
	"ship-track/internal/ports"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AuditRepo persists the movement audit trail using pgx and plain SQL.
type AuditRepo struct {
	pool *pgxpool.Pool
}

// NewAuditRepo constructs a new AuditRepo.
func NewAuditRepo(pool *pgxpool.Pool) ports.AuditRepository {
	return &AuditRepo{pool: pool}
}

// Append inserts a new movement_audit row.
func (repo *AuditRepo) Append(ctx context.Context, entry *shipment.AuditEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	err := querier(ctx, repo.pool).QueryRow(ctx, `
		INSERT INTO movement_audit (shipment_id, actor_id, action, reason, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		entry.ShipmentID,
		entry.ActorID,
		entry.Action.String(),
		entry.Reason,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}

	return nil
}
