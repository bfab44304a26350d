package service

import (
	"context"
	"time"

	"ship-track/internal/domain/shipment"
	"ship-track/internal/gateway"
	"ship-track/internal/general/contracts"
	"ship-track/internal/general/logger"
	"ship-track/internal/movement"
	"ship-track/internal/ports"
	"ship-track/internal/simulator"
)

// trackingService holds all dependencies required by the Tracking service.
type trackingService struct {
	appCtx    context.Context
	logger    *logger.Logger
	uow       ports.UnitOfWork
	directory ports.ShipmentDirectory
	audits    ports.AuditRepository
	history   ports.LocationHistoryRepository
	store     *movement.Store
	sims      *simulator.Manager
	gateway   *gateway.Gateway
	recorder  *HistoryRecorder
	pub       ports.EventPublisher

	defaultSpeedKMH float64
}

// NewTrackingService constructs the service with required dependencies and
// registers itself as the simulators' arrival handler. appCtx is the service
// lifetime context: simulator workers outlive the request that started them.
func NewTrackingService(
	appCtx context.Context,
	logger *logger.Logger,
	uow ports.UnitOfWork,
	directory ports.ShipmentDirectory,
	audits ports.AuditRepository,
	history ports.LocationHistoryRepository,
	store *movement.Store,
	sims *simulator.Manager,
	gw *gateway.Gateway,
	recorder *HistoryRecorder,
	pub ports.EventPublisher,
	defaultSpeedKMH float64,
) ports.MovementControlService {
	service := &trackingService{
		appCtx:          appCtx,
		logger:          logger,
		uow:             uow,
		directory:       directory,
		audits:          audits,
		history:         history,
		store:           store,
		sims:            sims,
		gateway:         gw,
		recorder:        recorder,
		pub:             pub,
		defaultSpeedKMH: defaultSpeedKMH,
	}
	sims.OnArrival(service.handleArrival)
	return service
}

// handleArrival runs once per shipment, on the tick that crosses progress=1
// or on a reposition that seeks past the end. The manager has already
// deregistered the worker by the time it fires.
func (service *trackingService) handleArrival(shipmentID string, snap simulator.Snapshot) {
	ctx := service.logger.WithShipmentID(service.appCtx, shipmentID)
	now := time.Now().UTC()

	if err := service.directory.SetStatus(ctx, shipmentID, shipment.StatusDelivered, now); err != nil {
		service.logger.Error(ctx, "delivery_status_write_failed", "Failed to persist DELIVERED status", err, map[string]any{
			"shipment_id": shipmentID,
		})
	}

	service.gateway.PublishStateChange(shipmentID, contracts.WSTypeShipmentDelivered, "", "")
	service.gateway.CloseRoom(shipmentID)
	service.store.Remove(shipmentID)
	if service.recorder != nil {
		service.recorder.Forget(shipmentID)
	}

	service.logger.Info(ctx, "shipment_delivered", "Shipment reached its destination", map[string]any{
		"shipment_id": shipmentID,
		"lat":         snap.Position.Latitude,
		"lng":         snap.Position.Longitude,
		"arrived_at":  snap.ComputedAt,
	})
}
