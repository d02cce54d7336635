package orders

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderPaid       OrderStatus = "paid"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
)

// Order status only moves forward; a paid order is never reverted to pending.
var orderNext = map[OrderStatus]map[OrderStatus]bool{
	OrderPending:    {OrderPaid: true, OrderProcessing: true, OrderShipped: true, OrderDelivered: true},
	OrderPaid:       {OrderProcessing: true, OrderShipped: true, OrderDelivered: true},
	OrderProcessing: {OrderShipped: true, OrderDelivered: true},
	OrderShipped:    {OrderDelivered: true},
	OrderDelivered:  {},
}

func CanTransition(from, to OrderStatus) bool {
	return orderNext[from][to]
}

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryPickedUp  DeliveryStatus = "picked_up"
	DeliveryInTransit DeliveryStatus = "in_transit"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// Couriers may skip intermediate scans, so any forward jump is allowed.
// failed is terminal and reachable from every non-terminal state.
var deliveryNext = map[DeliveryStatus]map[DeliveryStatus]bool{
	DeliveryPending:   {DeliveryPickedUp: true, DeliveryInTransit: true, DeliveryDelivered: true, DeliveryFailed: true},
	DeliveryPickedUp:  {DeliveryInTransit: true, DeliveryDelivered: true, DeliveryFailed: true},
	DeliveryInTransit: {DeliveryDelivered: true, DeliveryFailed: true},
	DeliveryDelivered: {},
	DeliveryFailed:    {},
}

func CanTransitionDelivery(from, to DeliveryStatus) bool {
	return deliveryNext[from][to]
}

func ValidDeliveryStatus(s DeliveryStatus) bool {
	_, ok := deliveryNext[s]
	return ok
}
