// Package reconcile applies verified payment-provider events to order and
// product state. This is the one place where concurrent webhook redelivery
// must be handled exactly once.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/kingdavidadedeji10/float-business/internal/kafka"
	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/paystack"
	"github.com/kingdavidadedeji10/float-business/internal/redisx"
)

type OrderStore interface {
	FindByReference(ctx context.Context, reference string) (*orders.Order, error)
	MarkPaid(ctx context.Context, orderID string) (bool, error)
}

type CatalogStore interface {
	GetProduct(ctx context.Context, productID string) (*orders.Product, error)
	GetStore(ctx context.Context, storeID string) (*orders.Store, error)
	DecrementStock(ctx context.Context, productID string, qty int) (bool, error)
}

type ShipmentDispatcher interface {
	BookForOrder(ctx context.Context, o *orders.Order, p *orders.Product, st *orders.Store)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Service transitions orders to paid exactly once per payment and performs the
// dependent side effects (stock decrement, shipment dispatch, event
// publication). All collaborators are injected at construction.
type Service struct {
	Orders     OrderStore
	Catalog    CatalogStore
	Dispatcher ShipmentDispatcher
	// Redis is an optional dedup fast path; the conditional status write on
	// the order row stays the source of truth.
	Redis       *redis.Client
	Producer    Publisher
	ServiceName string
	Logger      *zap.Logger
}

// HandleEvent applies a verified payment event. A nil return means the webhook
// should be acked; errors are infrastructure failures the provider may retry.
func (s *Service) HandleEvent(ctx context.Context, evt *paystack.Event) error {
	if evt.Event != paystack.EventChargeSuccess {
		return nil
	}
	reference := evt.Data.Reference

	if s.seen(ctx, reference) {
		s.Logger.Info("payment event already processed, skipping",
			zap.String("reference", reference))
		return nil
	}

	order, err := s.Orders.FindByReference(ctx, reference)
	if errors.Is(err, orders.ErrNotFound) {
		// Unknown references and retries for fully processed events are acked
		// so the provider stops redelivering.
		s.Logger.Info("payment event for unknown reference",
			zap.String("reference", reference))
		return nil
	}
	if err != nil {
		return fmt.Errorf("find order by reference: %w", err)
	}

	if evt.Data.Amount > 0 && evt.Data.Amount != order.Total {
		s.Logger.Warn("paid amount differs from order total",
			zap.String("order_id", order.ID),
			zap.Int64("paid_kobo", evt.Data.Amount),
			zap.Int64("total_kobo", order.Total))
	}

	applied, err := s.Orders.MarkPaid(ctx, order.ID)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	if !applied {
		s.Logger.Info("order already paid, redelivery is a no-op",
			zap.String("order_id", order.ID))
		return nil
	}
	order.Status = orders.OrderPaid

	product := s.applyStock(ctx, order)

	if order.DeliveryMethod == orders.DeliveryMethodDelivery && order.CustomerAddress != nil {
		s.dispatch(ctx, order, product)
	}

	s.publishPaid(order, reference)
	s.mark(ctx, reference)
	return nil
}

// applyStock decrements product stock under the conditional-write guard.
// Conflicts (insufficient remaining stock) are observability events, never
// failures: the payment is already captured and cannot be reversed here.
func (s *Service) applyStock(ctx context.Context, order *orders.Order) *orders.Product {
	if order.ProductID == nil {
		return nil
	}
	product, err := s.Catalog.GetProduct(ctx, *order.ProductID)
	if err != nil {
		s.Logger.Warn("product lookup failed, stock decrement skipped",
			zap.String("order_id", order.ID),
			zap.String("product_id", *order.ProductID),
			zap.Error(err))
		return nil
	}
	if product.Quantity == nil {
		return product // untracked stock
	}
	ok, err := s.Catalog.DecrementStock(ctx, product.ID, order.Quantity)
	if err != nil {
		s.Logger.Error("stock decrement failed",
			zap.String("order_id", order.ID),
			zap.String("product_id", product.ID),
			zap.Error(err))
		return product
	}
	if !ok {
		s.Logger.Warn("insufficient stock at decrement time, order oversold",
			zap.String("order_id", order.ID),
			zap.String("product_id", product.ID),
			zap.Int("quantity", order.Quantity),
			zap.Int("stock", *product.Quantity))
	}
	return product
}

// dispatch hands the order to the shipment dispatcher. Lookup failures are
// logged and skipped so the webhook still acks; an unbookable shipment is
// remediated out of band, not by provider retries.
func (s *Service) dispatch(ctx context.Context, order *orders.Order, product *orders.Product) {
	store, err := s.Catalog.GetStore(ctx, order.StoreID)
	if err != nil {
		s.Logger.Warn("store lookup failed, shipment dispatch skipped",
			zap.String("order_id", order.ID),
			zap.String("store_id", order.StoreID),
			zap.Error(err))
		return
	}
	s.Dispatcher.BookForOrder(ctx, order, product, store)
}

func (s *Service) publishPaid(order *orders.Order, reference string) {
	if s.Producer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventOrderPaid,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      s.ServiceName,
		CorrelationID: order.ID,
		Payload: kafkax.MustMarshal(orders.OrderPaidPayload{
			OrderID:        order.ID,
			Reference:      reference,
			StoreID:        order.StoreID,
			ProductID:      order.ProductID,
			Quantity:       order.Quantity,
			TotalKobo:      order.Total,
			DeliveryMethod: order.DeliveryMethod,
		}),
	}
	s.Producer.Publish(orders.PartitionKey(order.ID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventOrderPaid)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (s *Service) seen(ctx context.Context, reference string) bool {
	if s.Redis == nil {
		return false
	}
	key := fmt.Sprintf(redisx.KeyDedup, "paystack", reference)
	exists, err := redisx.Exists(ctx, s.Redis, key)
	if err != nil {
		return false // cache down, fall through to the DB guard
	}
	return exists
}

func (s *Service) mark(ctx context.Context, reference string) {
	if s.Redis == nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyDedup, "paystack", reference)
	_ = s.Redis.Set(ctx, key, "1", redisx.TTLDedup).Err()
}
