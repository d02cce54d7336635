// Package projector maintains the Redis read caches that the confirmation and
// tracking pages poll, fed from the domain event topics.
package projector

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	kafkax "github.com/kingdavidadedeji10/float-business/internal/kafka"
	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/redisx"
)

type Service struct {
	Redis       *redis.Client
	ServiceName string
	Logger      *zap.Logger
}

// Handle is mounted as the consumer handler for all three domain topics.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		s.Logger.Warn("dropping undecodable event", zap.Error(err))
		return nil
	}

	// dedup by event_id
	dkey := fmt.Sprintf(redisx.KeyDedup, "projector", env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}

	switch env.EventType {
	case orders.EventOrderPaid:
		p, err := kafkax.UnwrapPayload[orders.OrderPaidPayload](env.Payload)
		if err != nil {
			return err
		}
		if err := s.cacheOrderStatus(ctx, p.OrderID, orders.OrderPaid); err != nil {
			return err
		}
	case orders.EventDeliveryCreated:
		p, err := kafkax.UnwrapPayload[orders.DeliveryCreatedPayload](env.Payload)
		if err != nil {
			return err
		}
		if err := s.cacheTrackingStatus(ctx, p.TrackingCode, p.OrderID, orders.DeliveryPending, ""); err != nil {
			return err
		}
	case orders.EventDeliveryStatusChanged:
		p, err := kafkax.UnwrapPayload[orders.DeliveryStatusChangedPayload](env.Payload)
		if err != nil {
			return err
		}
		if err := s.cacheTrackingStatus(ctx, p.TrackingCode, p.OrderID, p.Status, p.Description); err != nil {
			return err
		}
	default:
		return nil // foreign event type, ignore
	}

	return s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()
}

func (s *Service) cacheOrderStatus(ctx context.Context, orderID string, status orders.OrderStatus) error {
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	body := kafkax.MustMarshal(map[string]any{"status": status})
	return s.Redis.Set(ctx, key, body, redisx.TTLStatusCache).Err()
}

func (s *Service) cacheTrackingStatus(ctx context.Context, trackingCode, orderID string, status orders.DeliveryStatus, description string) error {
	if trackingCode == "" {
		return nil
	}
	key := fmt.Sprintf(redisx.KeyTrackingStatus, trackingCode)
	payload := map[string]any{"status": status, "order_id": orderID}
	if description != "" {
		payload["description"] = description
	}
	return s.Redis.Set(ctx, key, kafkax.MustMarshal(payload), redisx.TTLStatusCache).Err()
}
