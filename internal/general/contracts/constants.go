package contracts

// Exchanges
const (
	ExchangeShipmentTopic  = "shipment_topic"
	ExchangeLocationFanout = "location_fanout"
)

// Queues
const (
	QueueShipmentStatus        = "shipment_status"
	QueueLocationNotifications = "location_notifications"
)

// Routing patterns
const (
	RouteShipmentStatusPrefix = "shipment.status." // {status}
)
