package shipping

import (
	"context"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/sendbox"
)

type fakeCourier struct {
	lastReq sendbox.BookingRequest
	result  *sendbox.BookingResult
	err     error
	calls   int
}

func (f *fakeCourier) Book(ctx context.Context, req sendbox.BookingRequest) (*sendbox.BookingResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeDeliveries struct {
	created []*orders.Delivery
	err     error
}

func (f *fakeDeliveries) Create(ctx context.Context, d *orders.Delivery) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, d)
	return nil
}

type fakePublisher struct {
	values [][]byte
}

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	f.values = append(f.values, value)
}

func newDispatcher() (*Dispatcher, *fakeCourier, *fakeDeliveries, *fakePublisher) {
	fc := &fakeCourier{result: &sendbox.BookingResult{
		ShipmentID:            "shp-1",
		TrackingCode:          "SB-TRACK-1",
		CourierName:           "Sendbox Express",
		EstimatedDeliveryDate: "2026-09-03",
	}}
	fd := &fakeDeliveries{}
	fp := &fakePublisher{}
	d := &Dispatcher{Deliveries: fd, Courier: fc, Producer: fp, ServiceName: "test", Logger: zap.NewNop()}
	return d, fc, fd, fp
}

func TestBook(t *testing.T) {
	d, fc, fd, fp := newDispatcher()

	delivery, err := d.Book(context.Background(), BookingParams{
		OrderID:         "ord-1",
		Origin:          orders.Address{Street: "1 Allen Ave", City: "Ikeja", State: "Lagos", Country: "Nigeria"},
		Destination:     orders.Address{Street: "5 Marina Rd", City: "Lagos Island", State: "Lagos", Country: "Nigeria"},
		Weight:          2.5,
		SizeCategory:    sendbox.SizeSmall,
		SenderName:      "Kicks",
		SenderPhone:     "0802",
		ReceiverName:    "Ada",
		ReceiverPhone:   "0801",
		ItemDescription: "Sneakers",
	})
	require.NoError(t, err)

	require.Equal(t, "shp-1", delivery.ShipmentID)
	require.Equal(t, "SB-TRACK-1", delivery.TrackingCode)
	require.Equal(t, sendbox.MethodMotorcycle, delivery.DeliveryMethod)
	require.Equal(t, orders.DeliveryPending, delivery.Status)
	require.NotNil(t, delivery.EstimatedDeliveryDate)
	require.Equal(t, "2026-09-03", *delivery.EstimatedDeliveryDate)

	require.Len(t, fd.created, 1)
	require.Equal(t, 2.5, fc.lastReq.Weight)
	require.Len(t, fp.values, 1)
}

func TestBook_AppliesDefaults(t *testing.T) {
	d, fc, _, _ := newDispatcher()

	_, err := d.Book(context.Background(), BookingParams{
		OrderID:     "ord-1",
		Origin:      orders.Address{State: "Lagos"},
		Destination: orders.Address{State: "Oyo"},
	})
	require.NoError(t, err)

	require.Equal(t, sendbox.DefaultWeight, fc.lastReq.Weight)
	require.Equal(t, sendbox.DefaultSizeCategory, fc.lastReq.PackageSize)
	require.Equal(t, "Product", fc.lastReq.ItemDescription)
}

func TestBook_InterstateUsesVan(t *testing.T) {
	d, _, fd, _ := newDispatcher()

	delivery, err := d.Book(context.Background(), BookingParams{
		OrderID:      "ord-1",
		Origin:       orders.Address{State: "Lagos"},
		Destination:  orders.Address{State: "Oyo"},
		SizeCategory: sendbox.SizeSmall,
	})
	require.NoError(t, err)
	require.Equal(t, sendbox.MethodVan, delivery.DeliveryMethod)
	require.Equal(t, sendbox.MethodVan, fd.created[0].DeliveryMethod)
}

func TestBook_CourierFailurePropagates(t *testing.T) {
	d, fc, fd, fp := newDispatcher()
	fc.err = errors.New("sendbox 503")

	_, err := d.Book(context.Background(), BookingParams{
		OrderID:     "ord-1",
		Origin:      orders.Address{State: "Lagos"},
		Destination: orders.Address{State: "Lagos"},
	})
	require.Error(t, err)
	require.Empty(t, fd.created)
	require.Empty(t, fp.values)
}

func TestBook_DuplicateOrderPropagates(t *testing.T) {
	d, _, fd, fp := newDispatcher()
	fd.err = orders.ErrDeliveryExists

	_, err := d.Book(context.Background(), BookingParams{
		OrderID:     "ord-1",
		Origin:      orders.Address{State: "Lagos"},
		Destination: orders.Address{State: "Lagos"},
	})
	require.ErrorIs(t, err, orders.ErrDeliveryExists)
	require.Empty(t, fp.values)
}

func orderForWebhook() (*orders.Order, *orders.Product, *orders.Store) {
	email := "ada@example.com"
	pid := "prod-1"
	o := &orders.Order{
		ID:              "ord-1",
		StoreID:         "store-1",
		ProductID:       &pid,
		Quantity:        1,
		CustomerName:    "Ada",
		CustomerPhone:   "0801",
		CustomerEmail:   &email,
		CustomerAddress: &orders.Address{Street: "5 Marina Rd", City: "Lagos Island", State: "Lagos", Country: "Nigeria"},
	}
	p := &orders.Product{ID: pid, Name: "Sneakers", Weight: 1.2, SizeCategory: sendbox.SizeSmall}
	st := &orders.Store{ID: "store-1", Name: "Kicks", Phone: "0802"}
	return o, p, st
}

func TestBookForOrder(t *testing.T) {
	d, fc, fd, _ := newDispatcher()
	o, p, st := orderForWebhook()

	d.BookForOrder(context.Background(), o, p, st)

	require.Len(t, fd.created, 1)
	require.Equal(t, "Sneakers", fc.lastReq.ItemDescription)
	require.Equal(t, 1.2, fc.lastReq.Weight)
	require.Equal(t, "ada@example.com", fc.lastReq.Destination.Email)
	// no pickup address configured, fall back to the default origin
	require.Equal(t, DefaultOrigin, fd.created[0].OriginAddress)
}

func TestBookForOrder_UsesStorePickupAddress(t *testing.T) {
	d, _, fd, _ := newDispatcher()
	o, p, st := orderForWebhook()
	st.PickupAddress = &orders.Address{Street: "12 Bodija Rd", City: "Ibadan", State: "Oyo", Country: "Nigeria"}

	d.BookForOrder(context.Background(), o, p, st)

	require.Len(t, fd.created, 1)
	require.Equal(t, *st.PickupAddress, fd.created[0].OriginAddress)
	require.Equal(t, sendbox.MethodVan, fd.created[0].DeliveryMethod) // Oyo -> Lagos
}

func TestBookForOrder_NilProductUsesDefaults(t *testing.T) {
	d, fc, fd, _ := newDispatcher()
	o, _, st := orderForWebhook()

	d.BookForOrder(context.Background(), o, nil, st)

	require.Len(t, fd.created, 1)
	require.Equal(t, sendbox.DefaultWeight, fc.lastReq.Weight)
	require.Equal(t, sendbox.DefaultSizeCategory, fc.lastReq.PackageSize)
}

func TestBookForOrder_SwallowsCourierFailure(t *testing.T) {
	d, fc, fd, fp := newDispatcher()
	fc.err = errors.New("sendbox 503")
	o, p, st := orderForWebhook()

	// must not panic or propagate; the payment is already captured
	d.BookForOrder(context.Background(), o, p, st)

	require.Empty(t, fd.created)
	require.Empty(t, fp.values)
}

func TestBookForOrder_ExistingDeliveryIsQuietNoOp(t *testing.T) {
	d, _, fd, _ := newDispatcher()
	fd.err = orders.ErrDeliveryExists
	o, p, st := orderForWebhook()

	d.BookForOrder(context.Background(), o, p, st)
	require.Empty(t, fd.created)
}
