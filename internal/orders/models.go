package orders

import "time"

const (
	DeliveryMethodPickup   = "pickup"
	DeliveryMethodDelivery = "delivery"
)

// Address is the structured shipping address used for store pickup points and
// customer destinations.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type Variant struct {
	Name    string   `json:"name"`
	Options []string `json:"options"`
}

type Product struct {
	ID      string
	StoreID string
	Name    string
	Price   int64 // kobo
	// Quantity is stock on hand; nil means stock is not tracked.
	Quantity     *int
	Weight       float64 // kg, 0 = unknown
	SizeCategory string  // small | medium | large, may be empty
	Variants     []Variant
	ImageURL     *string
	Description  *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Store struct {
	ID             string
	OwnerID        string
	Name           string
	Slug           string
	Phone          string
	PickupAddress  *Address
	SubaccountCode *string
	BankName       *string
	AccountNumber  *string
	AccountName    *string
	PaymentStatus  *string // pending | submitted | active
	CreatedAt      time.Time
}

type Order struct {
	ID                string
	StoreID           string
	ProductID         *string
	Quantity          int
	VariantSelections map[string]string
	UnitPrice         int64 // kobo
	Subtotal          int64
	DeliveryMethod    string
	DeliveryFee       int64
	Total             int64
	CustomerName      string
	CustomerPhone     string
	CustomerEmail     *string
	CustomerAddress   *Address
	Status            OrderStatus
	PaystackReference *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type StatusUpdate struct {
	Status      DeliveryStatus `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Description string         `json:"description,omitempty"`
}

type Delivery struct {
	ID                    string
	OrderID               string
	ShipmentID            string
	TrackingCode          string
	CourierName           string
	DeliveryMethod        string // motorcycle | van
	OriginAddress         Address
	DestinationAddress    Address
	EstimatedCost         int64 // kobo, 0 when the quote step was not invoked
	ActualCost            *int64
	Status                DeliveryStatus
	StatusHistory         []StatusUpdate
	EstimatedDeliveryDate *string
	DeliveredAt           *time.Time
	CreatedAt             time.Time
}
