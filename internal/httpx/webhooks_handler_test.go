package httpx

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kingdavidadedeji10/float-business/internal/orders"
	"github.com/kingdavidadedeji10/float-business/internal/reconcile"
	"github.com/kingdavidadedeji10/float-business/internal/shipping"
	"github.com/kingdavidadedeji10/float-business/internal/webhook"
)

const (
	testPaystackSecret = "sk_test_paystack"
	testSendboxSecret  = "sb_test_sendbox"
)

type stubOrderStore struct {
	order   *orders.Order
	findErr error
	paid    int
}

func (s *stubOrderStore) FindByReference(ctx context.Context, reference string) (*orders.Order, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.order == nil || s.order.PaystackReference == nil || *s.order.PaystackReference != reference {
		return nil, orders.ErrNotFound
	}
	cp := *s.order
	return &cp, nil
}

func (s *stubOrderStore) MarkPaid(ctx context.Context, orderID string) (bool, error) {
	s.paid++
	return s.paid == 1, nil
}

type stubCatalogStore struct{}

func (stubCatalogStore) GetProduct(ctx context.Context, productID string) (*orders.Product, error) {
	return nil, orders.ErrNotFound
}
func (stubCatalogStore) GetStore(ctx context.Context, storeID string) (*orders.Store, error) {
	return nil, orders.ErrNotFound
}
func (stubCatalogStore) DecrementStock(ctx context.Context, productID string, qty int) (bool, error) {
	return false, nil
}

type stubDispatcher struct{}

func (stubDispatcher) BookForOrder(ctx context.Context, o *orders.Order, p *orders.Product, st *orders.Store) {
}

type stubDeliveryStore struct {
	delivery *orders.Delivery
	updates  int
}

func (s *stubDeliveryStore) FindByTrackingCode(ctx context.Context, trackingCode string) (*orders.Delivery, error) {
	if s.delivery == nil || s.delivery.TrackingCode != trackingCode {
		return nil, orders.ErrNotFound
	}
	cp := *s.delivery
	return &cp, nil
}

func (s *stubDeliveryStore) UpdateStatus(ctx context.Context, deliveryID string, from, to orders.DeliveryStatus, history []orders.StatusUpdate, deliveredAt *time.Time) (bool, error) {
	s.updates++
	s.delivery.Status = to
	return true, nil
}

func newWebhookServer(t *testing.T) (*httptest.Server, *stubOrderStore, *stubDeliveryStore) {
	t.Helper()
	ref := "ref-123"
	os := &stubOrderStore{order: &orders.Order{
		ID:                "ord-1",
		Total:             150000,
		DeliveryMethod:    orders.DeliveryMethodPickup,
		Status:            orders.OrderPending,
		PaystackReference: &ref,
	}}
	ds := &stubDeliveryStore{delivery: &orders.Delivery{
		ID:           "dlv-1",
		OrderID:      "ord-1",
		TrackingCode: "SB-TRACK-1",
		Status:       orders.DeliveryPending,
	}}

	logger := zap.NewNop()
	h := &WebhooksHandler{
		Reconciler: &reconcile.Service{
			Orders:     os,
			Catalog:    stubCatalogStore{},
			Dispatcher: stubDispatcher{},
			Logger:     logger,
		},
		Tracker:        &shipping.Tracker{Deliveries: ds, Logger: logger},
		PaystackSecret: testPaystackSecret,
		SendboxSecret:  testSendboxSecret,
		Logger:         logger,
	}
	r := NewRouter()
	h.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, os, ds
}

func postSigned(t *testing.T, url, header, secret string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	if secret != "" {
		req.Header.Set(header, webhook.Sign(secret, body))
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPaystackWebhook(t *testing.T) {
	srv, os, _ := newWebhookServer(t)
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-123","amount":150000}}`)

	resp := postSigned(t, srv.URL+"/webhooks/paystack", "x-paystack-signature", testPaystackSecret, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, os.paid)
}

func TestPaystackWebhook_BadSignature(t *testing.T) {
	srv, os, _ := newWebhookServer(t)
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-123","amount":150000}}`)

	t.Run("missing", func(t *testing.T) {
		resp := postSigned(t, srv.URL+"/webhooks/paystack", "x-paystack-signature", "", body)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
	t.Run("wrong secret", func(t *testing.T) {
		resp := postSigned(t, srv.URL+"/webhooks/paystack", "x-paystack-signature", "sk_wrong", body)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
	require.Zero(t, os.paid)
}

func TestPaystackWebhook_MalformedPayloadAcked(t *testing.T) {
	srv, os, _ := newWebhookServer(t)
	body := []byte(`{"event":"charge.success","data":{}}`)

	resp := postSigned(t, srv.URL+"/webhooks/paystack", "x-paystack-signature", testPaystackSecret, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Zero(t, os.paid)
}

func TestPaystackWebhook_InfraFailureReturns500(t *testing.T) {
	srv, os, _ := newWebhookServer(t)
	os.findErr = errors.New("pg down")
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-123","amount":150000}}`)

	resp := postSigned(t, srv.URL+"/webhooks/paystack", "x-paystack-signature", testPaystackSecret, body)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestSendboxWebhook(t *testing.T) {
	srv, _, ds := newWebhookServer(t)
	body := []byte(`{"tracking_code":"SB-TRACK-1","status":"picked_up","description":"picked up in Ikeja"}`)

	resp := postSigned(t, srv.URL+"/webhooks/sendbox", "x-sendbox-signature", testSendboxSecret, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, ds.updates)
	require.Equal(t, orders.DeliveryPickedUp, ds.delivery.Status)
}

func TestSendboxWebhook_BadSignature(t *testing.T) {
	srv, _, ds := newWebhookServer(t)
	body := []byte(`{"tracking_code":"SB-TRACK-1","status":"picked_up"}`)

	resp := postSigned(t, srv.URL+"/webhooks/sendbox", "x-sendbox-signature", "sb_wrong", body)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Zero(t, ds.updates)
}

func TestSendboxWebhook_MissingFieldsAcked(t *testing.T) {
	srv, _, ds := newWebhookServer(t)
	body := []byte(`{"status":"picked_up"}`)

	resp := postSigned(t, srv.URL+"/webhooks/sendbox", "x-sendbox-signature", testSendboxSecret, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Zero(t, ds.updates)
}
