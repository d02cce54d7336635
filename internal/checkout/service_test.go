package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/paystack"
)

type fakeOrderStore struct {
	created   *orders.Order
	reference string
	refErr    error
}

func (f *fakeOrderStore) Create(ctx context.Context, o *orders.Order) error {
	o.ID = "ord-1"
	f.created = o
	return nil
}

func (f *fakeOrderStore) SetReference(ctx context.Context, orderID, reference string) error {
	if f.refErr != nil {
		return f.refErr
	}
	f.reference = reference
	return nil
}

type fakeCatalogStore struct {
	product *orders.Product
	store   *orders.Store
}

func (f *fakeCatalogStore) GetProductInStore(ctx context.Context, productID, storeID string) (*orders.Product, error) {
	if f.product == nil || f.product.ID != productID || f.product.StoreID != storeID {
		return nil, orders.ErrNotFound
	}
	return f.product, nil
}

func (f *fakeCatalogStore) GetStore(ctx context.Context, storeID string) (*orders.Store, error) {
	if f.store == nil || f.store.ID != storeID {
		return nil, orders.ErrNotFound
	}
	return f.store, nil
}

type fakePayments struct {
	lastReq paystack.InitializeRequest
	err     error
}

func (f *fakePayments) InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &paystack.InitializeResult{
		AuthorizationURL: "https://checkout.paystack.com/abc",
		Reference:        "T685312322670591",
	}, nil
}

func newCheckout() (*Service, *fakeOrderStore, *fakeCatalogStore, *fakePayments) {
	fo := &fakeOrderStore{}
	fc := &fakeCatalogStore{
		product: &orders.Product{ID: "prod-1", StoreID: "store-1", Name: "Sneakers", Price: 75000},
		store:   &orders.Store{ID: "store-1", Name: "Kicks"},
	}
	fp := &fakePayments{}
	return &Service{Orders: fo, Catalog: fc, Payments: fp, BaseURL: "https://floatbusiness.com", Logger: zap.NewNop()}, fo, fc, fp
}

func validRequest() Request {
	return Request{
		ProductID:       "prod-1",
		StoreID:         "store-1",
		Quantity:        2,
		DeliveryMethod:  orders.DeliveryMethodDelivery,
		DeliveryFeeKobo: 200000,
		CustomerName:    "Ada",
		CustomerPhone:   "08012345678",
		CustomerAddress: &orders.Address{Street: "5 Marina Rd", City: "Lagos Island", State: "Lagos"},
	}
}

func TestCheckout(t *testing.T) {
	svc, fo, _, fp := newCheckout()

	res, err := svc.Checkout(context.Background(), validRequest())
	require.NoError(t, err)

	// 2 x 75000 + 200000 fee; unit price from the catalog
	require.Equal(t, int64(350000), res.TotalKobo)
	require.Equal(t, "T685312322670591", res.Reference)
	require.Equal(t, "https://checkout.paystack.com/abc", res.AuthorizationURL)

	require.Equal(t, orders.OrderPending, fo.created.Status)
	require.Equal(t, int64(75000), fo.created.UnitPrice)
	require.Equal(t, int64(150000), fo.created.Subtotal)
	require.Equal(t, int64(200000), fo.created.DeliveryFee)
	require.Equal(t, fo.created.Subtotal+fo.created.DeliveryFee, fo.created.Total)
	require.Equal(t, "T685312322670591", fo.reference)

	require.Equal(t, int64(350000), fp.lastReq.AmountKobo)
	require.Equal(t, "ord-1", fp.lastReq.Metadata["order_id"])
	require.Equal(t, "https://floatbusiness.com/order/ord-1", fp.lastReq.CallbackURL)
}

func TestCheckout_PickupHasNoDeliveryFee(t *testing.T) {
	svc, fo, _, _ := newCheckout()
	req := validRequest()
	req.DeliveryMethod = orders.DeliveryMethodPickup

	res, err := svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, int64(150000), res.TotalKobo)
	require.Zero(t, fo.created.DeliveryFee)
}

func TestCheckout_GuestEmailFallback(t *testing.T) {
	svc, _, _, fp := newCheckout()

	_, err := svc.Checkout(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, "08012345678@guest.floatbusiness.com", fp.lastReq.Email)

	req := validRequest()
	req.CustomerEmail = "ada@example.com"
	_, err = svc.Checkout(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", fp.lastReq.Email)
}

func TestCheckout_SplitsToLinkedSubaccount(t *testing.T) {
	svc, _, fc, fp := newCheckout()
	code := "ACCT_abc123"
	fc.store.SubaccountCode = &code

	_, err := svc.Checkout(context.Background(), validRequest())
	require.NoError(t, err)
	require.Equal(t, code, fp.lastReq.Subaccount)
}

func TestCheckout_Validation(t *testing.T) {
	svc, _, _, _ := newCheckout()

	mutate := map[string]func(*Request){
		"missing product": func(r *Request) { r.ProductID = "" },
		"missing store":   func(r *Request) { r.StoreID = "" },
		"zero quantity":   func(r *Request) { r.Quantity = 0 },
		"missing name":    func(r *Request) { r.CustomerName = "" },
		"missing phone":   func(r *Request) { r.CustomerPhone = "" },
		"bad method":      func(r *Request) { r.DeliveryMethod = "drone" },
	}
	for name, fn := range mutate {
		t.Run(name, func(t *testing.T) {
			req := validRequest()
			fn(&req)
			_, err := svc.Checkout(context.Background(), req)
			require.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestCheckout_NotFound(t *testing.T) {
	svc, _, _, _ := newCheckout()

	req := validRequest()
	req.ProductID = "nope"
	_, err := svc.Checkout(context.Background(), req)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestCheckout_PaymentFailurePropagates(t *testing.T) {
	svc, fo, _, fp := newCheckout()
	fp.err = errors.New("paystack 502")

	_, err := svc.Checkout(context.Background(), validRequest())
	require.Error(t, err)
	// the pending order exists but carries no reference
	require.NotNil(t, fo.created)
	require.Empty(t, fo.reference)
}
