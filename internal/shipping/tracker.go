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
)

type TrackerStore interface {
	FindByTrackingCode(ctx context.Context, trackingCode string) (*orders.Delivery, error)
	UpdateStatus(ctx context.Context, deliveryID string, from, to orders.DeliveryStatus, history []orders.StatusUpdate, deliveredAt *time.Time) (bool, error)
}

// Tracker applies courier status webhooks to delivery records. Deliveries are
// mutated by this path only.
type Tracker struct {
	Deliveries  TrackerStore
	Producer    Publisher
	ServiceName string
	Logger      *zap.Logger
}

// ApplyStatusUpdate moves a delivery through its state machine and appends to
// the status history. Unknown tracking codes and invalid transitions are
// logged no-ops so providers do not retry them forever; only infrastructure
// failures return an error.
func (t *Tracker) ApplyStatusUpdate(ctx context.Context, trackingCode string, status orders.DeliveryStatus, description string) error {
	if !orders.ValidDeliveryStatus(status) {
		t.Logger.Warn("courier webhook with unknown status",
			zap.String("tracking_code", trackingCode),
			zap.String("status", string(status)))
		return nil
	}

	d, err := t.Deliveries.FindByTrackingCode(ctx, trackingCode)
	if errors.Is(err, orders.ErrNotFound) {
		t.Logger.Info("courier webhook for unknown tracking code",
			zap.String("tracking_code", trackingCode))
		return nil
	}
	if err != nil {
		return fmt.Errorf("find delivery: %w", err)
	}

	if !orders.CanTransitionDelivery(d.Status, status) {
		t.Logger.Warn("invalid delivery status transition",
			zap.String("tracking_code", trackingCode),
			zap.String("from", string(d.Status)),
			zap.String("to", string(status)))
		return nil
	}

	now := time.Now().UTC()
	history := append(d.StatusHistory, orders.StatusUpdate{
		Status:      status,
		Timestamp:   now,
		Description: description,
	})
	var deliveredAt *time.Time
	if status == orders.DeliveryDelivered {
		deliveredAt = &now
	}

	applied, err := t.Deliveries.UpdateStatus(ctx, d.ID, d.Status, status, history, deliveredAt)
	if err != nil {
		return fmt.Errorf("update delivery status: %w", err)
	}
	if !applied {
		t.Logger.Warn("delivery status changed concurrently, update skipped",
			zap.String("tracking_code", trackingCode),
			zap.String("to", string(status)))
		return nil
	}

	t.publishStatusChanged(d, status, description)
	return nil
}

func (t *Tracker) publishStatusChanged(d *orders.Delivery, status orders.DeliveryStatus, description string) {
	if t.Producer == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventDeliveryStatusChanged,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      t.ServiceName,
		CorrelationID: d.OrderID,
		Payload: kafkax.MustMarshal(orders.DeliveryStatusChangedPayload{
			DeliveryID:   d.ID,
			OrderID:      d.OrderID,
			TrackingCode: d.TrackingCode,
			Status:       status,
			Description:  description,
		}),
	}
	t.Producer.Publish(orders.PartitionKey(d.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventDeliveryStatusChanged)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
