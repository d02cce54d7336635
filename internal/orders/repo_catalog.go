package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogRepo struct{ DB *pgxpool.Pool }

const productColumns = `id, store_id, name, price, quantity, weight,
	size_category, variants, image_url, description, created_at, updated_at`

func (r *CatalogRepo) GetProduct(ctx context.Context, productID string) (*Product, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID)
	return scanProduct(row)
}

func (r *CatalogRepo) GetProductInStore(ctx context.Context, productID, storeID string) (*Product, error) {
	row := r.DB.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1 AND store_id = $2`,
		productID, storeID)
	return scanProduct(row)
}

// DecrementStock subtracts qty from a product's stock, guarded so the write
// only applies while enough stock remains. Returns whether the decrement
// applied; untracked products (NULL quantity) never match.
func (r *CatalogRepo) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	ct, err := r.DB.Exec(ctx, `
		UPDATE products SET quantity = quantity - $2, updated_at = now()
		WHERE id = $1 AND quantity IS NOT NULL AND quantity >= $2`,
		productID, qty)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

func (r *CatalogRepo) GetStore(ctx context.Context, storeID string) (*Store, error) {
	row := r.DB.QueryRow(ctx, `
		SELECT id, owner_id, name, slug, phone, pickup_address, subaccount_code,
			bank_name, account_number, account_name, payment_status, created_at
		FROM stores WHERE id = $1`, storeID)

	var (
		st       Store
		addrJSON []byte
	)
	err := row.Scan(&st.ID, &st.OwnerID, &st.Name, &st.Slug, &st.Phone, &addrJSON,
		&st.SubaccountCode, &st.BankName, &st.AccountNumber, &st.AccountName,
		&st.PaymentStatus, &st.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(addrJSON) > 0 {
		st.PickupAddress = &Address{}
		if err := json.Unmarshal(addrJSON, st.PickupAddress); err != nil {
			return nil, fmt.Errorf("decode pickup_address: %w", err)
		}
	}
	return &st, nil
}

// UpdateStoreSubaccount records the provider subaccount and bank details after
// a successful split-payment setup and activates payouts for the store.
func (r *CatalogRepo) UpdateStoreSubaccount(ctx context.Context, storeID, subaccountCode, bankName, accountNumber, accountName string) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE stores SET subaccount_code = $2, bank_name = $3,
			account_number = $4, account_name = $5, payment_status = 'active'
		WHERE id = $1`,
		storeID, subaccountCode, bankName, accountNumber, accountName)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	var (
		p            Product
		variantsJSON []byte
	)
	err := row.Scan(&p.ID, &p.StoreID, &p.Name, &p.Price, &p.Quantity, &p.Weight,
		&p.SizeCategory, &variantsJSON, &p.ImageURL, &p.Description,
		&p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if len(variantsJSON) > 0 {
		if err := json.Unmarshal(variantsJSON, &p.Variants); err != nil {
			return nil, fmt.Errorf("decode variants: %w", err)
		}
	}
	return &p, nil
}
