package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDeliveryExists reports a violated at-most-one-delivery-per-order rule.
var ErrDeliveryExists = errors.New("delivery already exists for order")

type DeliveryRepo struct{ DB *pgxpool.Pool }

const deliveryColumns = `id, order_id, shipment_id, tracking_code, courier_name,
	delivery_method, origin_address, destination_address, estimated_cost,
	actual_cost, status, status_history, estimated_delivery_date, delivered_at,
	created_at`

func (r *DeliveryRepo) Create(ctx context.Context, d *Delivery) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.Status == "" {
		d.Status = DeliveryPending
	}
	if d.StatusHistory == nil {
		d.StatusHistory = []StatusUpdate{}
	}
	origin, err := json.Marshal(d.OriginAddress)
	if err != nil {
		return err
	}
	dest, err := json.Marshal(d.DestinationAddress)
	if err != nil {
		return err
	}
	history, err := json.Marshal(d.StatusHistory)
	if err != nil {
		return err
	}
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO deliveries(id, order_id, shipment_id, tracking_code,
			courier_name, delivery_method, origin_address, destination_address,
			estimated_cost, status, status_history, estimated_delivery_date)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (order_id) DO NOTHING`,
		d.ID, d.OrderID, d.ShipmentID, d.TrackingCode,
		d.CourierName, d.DeliveryMethod, origin, dest,
		d.EstimatedCost, d.Status, history, d.EstimatedDeliveryDate)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrDeliveryExists
	}
	return nil
}

func (r *DeliveryRepo) FindByTrackingCode(ctx context.Context, trackingCode string) (*Delivery, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE tracking_code = $1`, trackingCode)
	return scanDelivery(row)
}

func (r *DeliveryRepo) FindByOrderID(ctx context.Context, orderID string) (*Delivery, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries WHERE order_id = $1`, orderID)
	return scanDelivery(row)
}

// UpdateStatus applies a courier status transition, conditioned on the status
// still being the one read by the caller so racing webhooks cannot interleave
// lost updates. Returns whether the write applied.
func (r *DeliveryRepo) UpdateStatus(ctx context.Context, deliveryID string, from, to DeliveryStatus, history []StatusUpdate, deliveredAt *time.Time) (bool, error) {
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return false, err
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE deliveries SET status = $3, status_history = $4,
			delivered_at = COALESCE($5, delivered_at)
		WHERE id = $1 AND status = $2`,
		deliveryID, from, to, historyJSON, deliveredAt)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func scanDelivery(row pgx.Row) (*Delivery, error) {
	var (
		d           Delivery
		originJSON  []byte
		destJSON    []byte
		historyJSON []byte
	)
	err := row.Scan(&d.ID, &d.OrderID, &d.ShipmentID, &d.TrackingCode,
		&d.CourierName, &d.DeliveryMethod, &originJSON, &destJSON,
		&d.EstimatedCost, &d.ActualCost, &d.Status, &historyJSON,
		&d.EstimatedDeliveryDate, &d.DeliveredAt, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(originJSON) > 0 {
		if err := json.Unmarshal(originJSON, &d.OriginAddress); err != nil {
			return nil, fmt.Errorf("decode origin_address: %w", err)
		}
	}
	if len(destJSON) > 0 {
		if err := json.Unmarshal(destJSON, &d.DestinationAddress); err != nil {
			return nil, fmt.Errorf("decode destination_address: %w", err)
		}
	}
	if len(historyJSON) > 0 {
		if err := json.Unmarshal(historyJSON, &d.StatusHistory); err != nil {
			return nil, fmt.Errorf("decode status_history: %w", err)
		}
	}
	return &d, nil
}
