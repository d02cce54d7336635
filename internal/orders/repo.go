package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type Repo struct{ DB *pgxpool.Pool }

const orderColumns = `id, store_id, product_id, quantity, variant_selections,
	unit_price, subtotal, delivery_method, delivery_fee, total,
	customer_name, customer_phone, customer_email, customer_address,
	status, paystack_reference, created_at, updated_at`

func (r *Repo) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
	variants, err := marshalNullable(o.VariantSelections != nil, o.VariantSelections)
	if err != nil {
		return err
	}
	addr, err := marshalNullable(o.CustomerAddress != nil, o.CustomerAddress)
	if err != nil {
		return err
	}
	row := r.DB.QueryRow(ctx, `
		INSERT INTO orders(id, store_id, product_id, quantity, variant_selections,
			unit_price, subtotal, delivery_method, delivery_fee, total,
			customer_name, customer_phone, customer_email, customer_address, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at, updated_at`,
		o.ID, o.StoreID, o.ProductID, o.Quantity, variants,
		o.UnitPrice, o.Subtotal, o.DeliveryMethod, o.DeliveryFee, o.Total,
		o.CustomerName, o.CustomerPhone, o.CustomerEmail, addr, o.Status,
	)
	return row.Scan(&o.CreatedAt, &o.UpdatedAt)
}

func (r *Repo) SetReference(ctx context.Context, orderID, reference string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET paystack_reference = $2, updated_at = now()
		WHERE id = $1`, orderID, reference)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, orderID string) (*Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	return scanOrder(row)
}

func (r *Repo) FindByReference(ctx context.Context, reference string) (*Order, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE paystack_reference = $1`, reference)
	return scanOrder(row)
}

// FindByReferenceOrID resolves confirmation-page lookups, which may carry
// either the payment reference or the order id.
func (r *Repo) FindByReferenceOrID(ctx context.Context, key string) (*Order, error) {
	o, err := r.FindByReference(ctx, key)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return r.FindByID(ctx, key)
}

// MarkPaid transitions an order from pending to paid. The write is conditioned
// on the status still being pending, so redelivered payment webhooks apply at
// most once. Returns whether this call performed the transition.
func (r *Repo) MarkPaid(ctx context.Context, orderID string) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE orders SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3`,
		orderID, OrderPaid, OrderPending)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o            Order
		variantsJSON []byte
		addrJSON     []byte
	)
	err := row.Scan(
		&o.ID, &o.StoreID, &o.ProductID, &o.Quantity, &variantsJSON,
		&o.UnitPrice, &o.Subtotal, &o.DeliveryMethod, &o.DeliveryFee, &o.Total,
		&o.CustomerName, &o.CustomerPhone, &o.CustomerEmail, &addrJSON,
		&o.Status, &o.PaystackReference, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(variantsJSON) > 0 {
		if err := json.Unmarshal(variantsJSON, &o.VariantSelections); err != nil {
			return nil, fmt.Errorf("decode variant_selections: %w", err)
		}
	}
	if len(addrJSON) > 0 {
		o.CustomerAddress = &Address{}
		if err := json.Unmarshal(addrJSON, o.CustomerAddress); err != nil {
			return nil, fmt.Errorf("decode customer_address: %w", err)
		}
	}
	return &o, nil
}

func marshalNullable(present bool, v any) ([]byte, error) {
	if !present {
		return nil, nil
	}
	return json.Marshal(v)
}
