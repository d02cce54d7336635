package orders

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPaid             = "OrderPaid"
	EventDeliveryCreated       = "DeliveryCreated"
	EventDeliveryStatusChanged = "DeliveryStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"` // uuid
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"` // e.g. "storefront-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type OrderPaidPayload struct {
	OrderID        string  `json:"order_id"`
	Reference      string  `json:"reference"`
	StoreID        string  `json:"store_id"`
	ProductID      *string `json:"product_id,omitempty"`
	Quantity       int     `json:"quantity"`
	TotalKobo      int64   `json:"total_kobo"`
	DeliveryMethod string  `json:"delivery_method"`
}

type DeliveryCreatedPayload struct {
	DeliveryID            string `json:"delivery_id"`
	OrderID               string `json:"order_id"`
	TrackingCode          string `json:"tracking_code"`
	CourierName           string `json:"courier_name"`
	DeliveryMethod        string `json:"delivery_method"` // motorcycle | van
	EstimatedDeliveryDate string `json:"estimated_delivery_date,omitempty"`
}

type DeliveryStatusChangedPayload struct {
	DeliveryID   string         `json:"delivery_id"`
	OrderID      string         `json:"order_id"`
	TrackingCode string         `json:"tracking_code"`
	Status       DeliveryStatus `json:"status"`
	Description  string         `json:"description,omitempty"`
}
