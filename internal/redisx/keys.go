package redisx

import "time"

const (
	// Dedup of webhook/event processing: dedup:{service}:{id}
	// (id = payment reference for the reconciler, event_id for the projector)
	KeyDedup = "dedup:%s:%s"

	// Cached order status for confirmation-page polling: order_status:{order_id}
	KeyOrderStatus = "order_status:%s"

	// Cached delivery status for tracking-page polling: tracking_status:{tracking_code}
	KeyTrackingStatus = "tracking_status:%s"
)

var (
	TTLDedup       = 48 * time.Hour
	TTLStatusCache = 5 * time.Minute
)
