package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"ship-track/internal/domain/shipment"
	"ship-track/internal/general/contracts"
)

// generateCorrelationID creates a simple correlation ID for tracing requests.
func generateCorrelationID() string {
	var b [3]byte // 6 hex chars
	_, _ = rand.Read(b[:])
	ts := time.Now().UTC().Format("20060102T150405")
	return "req_" + ts + "_" + hex.EncodeToString(b[:])
}

// publishMovementStatus sends a movement status message to the
// shipment_topic exchange using routing key "shipment.status.{status}".
func (service *trackingService) publishMovementStatus(ctx context.Context, msg contracts.MovementStatusMessage) error {
	routingKey := contracts.RouteShipmentStatusPrefix + strings.ToLower(msg.Status)

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := service.pub.Publish(contracts.ExchangeShipmentTopic, routingKey, body); err != nil {
		return err
	}

	service.logger.Info(ctx, "movement_status_published", "Published movement status to RabbitMQ", map[string]any{
		"routing_key": routingKey,
		"shipment_id": msg.ShipmentID,
		"status":      msg.Status,
	})
	return nil
}

// persistTransition writes the status flip and its audit entry in one
// transaction. The in-memory transition is already applied by the caller;
// this is the durable half.
func (service *trackingService) persistTransition(ctx context.Context, shipmentID string, status shipment.Status, entry *shipment.AuditEntry, at time.Time) error {
	return service.uow.WithinTx(ctx, func(ctx context.Context) error {
		if status != "" {
			if err := service.directory.SetStatus(ctx, shipmentID, status, at); err != nil {
				return err
			}
		}
		if entry != nil {
			if err := service.audits.Append(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	})
}
