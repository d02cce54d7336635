package orders

const (
	TopicOrderPaid       = "storefront.order.paid"
	TopicDeliveryCreated = "storefront.delivery.created"
	TopicDeliveryStatus  = "storefront.delivery.status"
)

// Partition key = order_id so all events of one order keep their order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
