package shipping

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/kingdavidadedeji10/float-business/internal/kafka"
	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/sendbox"
)

// DefaultOrigin is the fallback pickup point for stores without a configured
// pickup address.
var DefaultOrigin = orders.Address{
	Street:  "1 Obafemi Awolowo Way",
	City:    "Ikeja",
	State:   "Lagos",
	Country: "Nigeria",
}

type CourierClient interface {
	Book(ctx context.Context, req sendbox.BookingRequest) (*sendbox.BookingResult, error)
}

type DeliveryStore interface {
	Create(ctx context.Context, d *orders.Delivery) error
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Dispatcher books courier shipments and persists the resulting delivery
// records.
type Dispatcher struct {
	Deliveries  DeliveryStore
	Courier     CourierClient
	Producer    Publisher
	ServiceName string
	Logger      *zap.Logger
}

type BookingParams struct {
	OrderID         string
	Origin          orders.Address
	Destination     orders.Address
	Weight          float64
	SizeCategory    string
	SenderName      string
	SenderPhone     string
	ReceiverName    string
	ReceiverPhone   string
	ReceiverEmail   string
	ItemDescription string
}

// Book books a shipment and persists a pending delivery. Used by the direct
// booking API; errors propagate to the caller.
func (d *Dispatcher) Book(ctx context.Context, p BookingParams) (*orders.Delivery, error) {
	if p.SizeCategory == "" {
		p.SizeCategory = sendbox.DefaultSizeCategory
	}
	if p.Weight <= 0 {
		p.Weight = sendbox.DefaultWeight
	}
	if p.ItemDescription == "" {
		p.ItemDescription = "Product"
	}
	method := sendbox.DetermineMethod(p.SizeCategory, p.Origin.State, p.Destination.State)

	res, err := d.Courier.Book(ctx, sendbox.BookingRequest{
		Origin: sendbox.Party{
			Street: p.Origin.Street, City: p.Origin.City,
			State: p.Origin.State, Country: p.Origin.Country,
			Name: p.SenderName, Phone: p.SenderPhone,
		},
		Destination: sendbox.Party{
			Street: p.Destination.Street, City: p.Destination.City,
			State: p.Destination.State, Country: p.Destination.Country,
			Name: p.ReceiverName, Phone: p.ReceiverPhone, Email: p.ReceiverEmail,
		},
		Weight:          p.Weight,
		PackageSize:     p.SizeCategory,
		ItemDescription: p.ItemDescription,
	})
	if err != nil {
		return nil, fmt.Errorf("book shipment: %w", err)
	}

	delivery := &orders.Delivery{
		OrderID:            p.OrderID,
		ShipmentID:         res.ShipmentID,
		TrackingCode:       res.TrackingCode,
		CourierName:        res.CourierName,
		DeliveryMethod:     method,
		OriginAddress:      p.Origin,
		DestinationAddress: p.Destination,
		// 0: the booking-only flow never invoked the quote step.
		EstimatedCost: 0,
		Status:        orders.DeliveryPending,
		StatusHistory: []orders.StatusUpdate{},
	}
	if res.EstimatedDeliveryDate != "" {
		delivery.EstimatedDeliveryDate = &res.EstimatedDeliveryDate
	}
	if err := d.Deliveries.Create(ctx, delivery); err != nil {
		return nil, fmt.Errorf("persist delivery: %w", err)
	}
	d.publishCreated(delivery)
	return delivery, nil
}

// BookForOrder is the payment-webhook path. Booking failures are logged and
// swallowed here: a captured payment must never be failed by a courier outage,
// so the caller always acks regardless of the outcome.
func (d *Dispatcher) BookForOrder(ctx context.Context, o *orders.Order, p *orders.Product, st *orders.Store) {
	params := BookingParams{
		OrderID:       o.ID,
		Origin:        DefaultOrigin,
		Destination:   *o.CustomerAddress,
		SenderName:    st.Name,
		SenderPhone:   st.Phone,
		ReceiverName:  o.CustomerName,
		ReceiverPhone: o.CustomerPhone,
	}
	if st.PickupAddress != nil {
		params.Origin = *st.PickupAddress
	}
	if o.CustomerEmail != nil {
		params.ReceiverEmail = *o.CustomerEmail
	}
	if p != nil {
		params.Weight = p.Weight
		params.SizeCategory = p.SizeCategory
		params.ItemDescription = p.Name
	}

	if _, err := d.Book(ctx, params); err != nil {
		if errors.Is(err, orders.ErrDeliveryExists) {
			d.Logger.Info("delivery already booked for order", zap.String("order_id", o.ID))
			return
		}
		d.Logger.Error("shipment booking failed, order stays paid",
			zap.String("order_id", o.ID),
			zap.Error(err))
	}
}

func (d *Dispatcher) publishCreated(delivery *orders.Delivery) {
	if d.Producer == nil {
		return
	}
	estimated := ""
	if delivery.EstimatedDeliveryDate != nil {
		estimated = *delivery.EstimatedDeliveryDate
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventDeliveryCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      d.ServiceName,
		CorrelationID: delivery.OrderID,
		Payload: kafkax.MustMarshal(orders.DeliveryCreatedPayload{
			DeliveryID:            delivery.ID,
			OrderID:               delivery.OrderID,
			TrackingCode:          delivery.TrackingCode,
			CourierName:           delivery.CourierName,
			DeliveryMethod:        delivery.DeliveryMethod,
			EstimatedDeliveryDate: estimated,
		}),
	}
	d.Producer.Publish(orders.PartitionKey(delivery.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventDeliveryCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
